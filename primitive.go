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
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// DecodeInteger decodes len(data) bytes (1, 2, 4 or 8) as an integer. Signed
// integers are returned as int64, unsigned ones as uint64.
func DecodeInteger(data []byte, signed bool, order ByteOrder) (interface{}, error) {
	var u uint64
	bo := order.binary()
	switch len(data) {
	case 1:
		if signed {
			return int64(int8(data[0])), nil
		}
		return uint64(data[0]), nil
	case 2:
		v := bo.Uint16(data)
		if signed {
			return int64(int16(v)), nil
		}
		u = uint64(v)
	case 4:
		v := bo.Uint32(data)
		if signed {
			return int64(int32(v)), nil
		}
		u = uint64(v)
	case 8:
		v := bo.Uint64(data)
		if signed {
			return int64(v), nil
		}
		u = v
	default:
		return nil, errors.Wrapf(ErrInvalidDefinition, "unsupported integer size %d", len(data))
	}
	return u, nil
}

// EncodeInteger writes v into data using len(data) bytes.
func EncodeInteger(data []byte, v uint64, order ByteOrder) error {
	bo := order.binary()
	switch len(data) {
	case 1:
		data[0] = byte(v)
	case 2:
		bo.PutUint16(data, uint16(v))
	case 4:
		bo.PutUint32(data, uint32(v))
	case 8:
		bo.PutUint64(data, v)
	default:
		return errors.Wrapf(ErrInvalidDefinition, "unsupported integer size %d", len(data))
	}
	return nil
}

// DecodeBoolean decodes a single byte boolean. A byte that is neither the true
// nor the false value yields BoolUnknown and ErrInvalidBooleanValue.
func DecodeBoolean(b, trueValue, falseValue byte) (Bool, error) {
	switch b {
	case trueValue:
		return BoolTrue, nil
	case falseValue:
		return BoolFalse, nil
	}
	return BoolUnknown, errors.Wrapf(ErrInvalidBooleanValue, "0x%02x", b)
}

// DecodeASCII decodes data as ASCII. Bytes above 0x7f are replaced with
// utf8.RuneError, one rune per byte, and ErrInvalidEncoding is returned along
// with the substituted string.
func DecodeASCII(data []byte) (string, error) {
	invalid := 0
	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		if b >= utf8.RuneSelf {
			invalid++
			sb.WriteRune(utf8.RuneError)
			continue
		}
		sb.WriteByte(b)
	}
	if invalid > 0 {
		return sb.String(), errors.Wrapf(ErrInvalidEncoding, "%d non-ASCII bytes replaced", invalid)
	}
	return sb.String(), nil
}

// EncodeASCII returns the ASCII bytes of s.
func EncodeASCII(s string) ([]byte, error) {
	b := []byte(s)
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return nil, errors.Wrapf(ErrInvalidEncoding, "non-ASCII string %q", s)
		}
	}
	return b, nil
}
