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

package cmd

import (
	"encoding/json"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

const (
	formatJSON = "json"
	formatCBOR = "cbor"
)

// elementWriter writes one element per record: a JSON line or a CBOR data
// item in deterministic core encoding.
type elementWriter struct {
	json *json.Encoder
	cbor *cbor.Encoder
}

func newElementWriter(w io.Writer, format string) (*elementWriter, error) {
	switch format {
	case formatJSON:
		return &elementWriter{json: json.NewEncoder(w)}, nil
	case formatCBOR:
		mode, err := cbor.CoreDetEncOptions().EncMode()
		if err != nil {
			return nil, err
		}
		return &elementWriter{cbor: mode.NewEncoder(w)}, nil
	}
	return nil, errors.Errorf("unknown format %q", format)
}

func (ew *elementWriter) Write(element map[string]interface{}) error {
	if ew.cbor != nil {
		return ew.cbor.Encode(element)
	}
	return ew.json.Encode(element)
}
