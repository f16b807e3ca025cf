// Copyright (c) 2020 Siemens AG
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
//
// Author(s): Jonas Plum

package dtfabric

import (
	"github.com/pkg/errors"
)

// Structural errors stop the decoding of the current file. Content errors
// (ErrInvalidBooleanValue, ErrInvalidEncoding) are recorded as warnings on the
// decoded record and decoding continues with a substitute value.
var (
	ErrTruncatedData            = errors.New("truncated data")
	ErrUnresolvedSizeReference  = errors.New("unresolved size reference")
	ErrUnsupportedFormatVersion = errors.New("unsupported format version")
	ErrInvalidBooleanValue      = errors.New("invalid boolean value")
	ErrInvalidEncoding          = errors.New("invalid encoding")

	ErrUnknownDefinition = errors.New("unknown definition")
	ErrInvalidDefinition = errors.New("invalid definition")
)

// IsStructural reports whether err stops the decoding of a file.
func IsStructural(err error) bool {
	return errors.Is(err, ErrTruncatedData) ||
		errors.Is(err, ErrUnresolvedSizeReference) ||
		errors.Is(err, ErrUnsupportedFormatVersion)
}
