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
	"bytes"

	"github.com/pkg/errors"
)

// Encode serializes a record according to the structure definition name.
// Streams and strings shorter than a literal size are padded with NUL bytes;
// values of referenced sizes must match the referenced member.
func (c *Catalog) Encode(name string, record *Record) ([]byte, error) {
	t, err := c.Lookup(name)
	if err != nil {
		return nil, err
	}
	if t.Kind != KindStructure {
		return nil, errors.Wrapf(ErrInvalidDefinition, "%s is a %s, not a structure", name, t.Kind)
	}
	buf := &bytes.Buffer{}
	if err := encodeStructure(buf, t, t.ByteOrder, record); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeStructure(buf *bytes.Buffer, t *DataType, order ByteOrder, record *Record) error {
	order = t.ByteOrder.resolve(order)
	for _, member := range t.Members {
		value, ok := record.Get(member.Name)
		if !ok {
			return errors.Errorf("%s: missing member %s", t.Name, member.Name)
		}
		if err := encodeValue(buf, member.Type, order, value, record); err != nil {
			return errors.Wrapf(err, "%s.%s", t.Name, member.Name)
		}
	}
	return nil
}

func encodeValue(buf *bytes.Buffer, t *DataType, order ByteOrder, value interface{}, scope *Record) error { // nolint:gocyclo
	order = t.ByteOrder.resolve(order)

	switch t.Kind {
	case KindInteger:
		u, ok := toUint64(value)
		if !ok {
			return errors.Errorf("%T is not an integer", value)
		}
		b := make([]byte, t.Size)
		if err := EncodeInteger(b, u, order); err != nil {
			return err
		}
		buf.Write(b)

	case KindBoolean:
		b, ok := value.(Bool)
		if v, isBool := value.(bool); isBool {
			b, ok = BoolFalse, true
			if v {
				b = BoolTrue
			}
		}
		switch {
		case !ok:
			return errors.Errorf("%T is not a boolean", value)
		case b == BoolTrue:
			buf.WriteByte(t.TrueValue)
		case b == BoolFalse:
			buf.WriteByte(t.FalseValue)
		default:
			return errors.Wrap(ErrInvalidBooleanValue, "cannot encode unknown boolean")
		}

	case KindCharacter:
		s, ok := value.(string)
		if !ok || len(s) != 1 {
			return errors.Errorf("%v is not a single character", value)
		}
		b, err := EncodeASCII(s)
		if err != nil {
			return err
		}
		buf.Write(b)

	case KindStream, KindString:
		var data []byte
		switch v := value.(type) {
		case []byte:
			data = v
		case string:
			b, err := EncodeASCII(v)
			if err != nil {
				return err
			}
			data = b
		default:
			return errors.Errorf("%T is not a %s", value, t.Kind)
		}
		size, err := byteSize(t, scope)
		if err != nil {
			return err
		}
		return writeSized(buf, t, data, size)

	case KindSequence:
		elements, ok := value.([]interface{})
		if !ok {
			return errors.Errorf("%T is not a sequence", value)
		}
		if t.NumberOfElements.IsSet() {
			count, err := resolveSize(t.NumberOfElements, scope)
			if err != nil {
				return err
			}
			if count != len(elements) {
				return errors.Errorf("sequence has %d elements, definition requires %d", len(elements), count)
			}
		}
		for i, element := range elements {
			if err := encodeValue(buf, t.Element, order, element, scope); err != nil {
				return errors.Wrapf(err, "element %d", i)
			}
		}

	case KindStructure:
		sub, ok := value.(*Record)
		if !ok {
			return errors.Errorf("%T is not a structure", value)
		}
		return encodeStructure(buf, t, order, sub)
	}
	return nil
}

func writeSized(buf *bytes.Buffer, t *DataType, data []byte, size int) error {
	referenced := t.ElementsDataSize.IsReference() || t.NumberOfElements.IsReference()
	switch {
	case len(data) > size, referenced && len(data) != size:
		return errors.Errorf("%d bytes do not fit size %d", len(data), size)
	}
	buf.Write(data)
	if pad := size - len(data); pad > 0 {
		buf.Write(make([]byte, pad))
	}
	return nil
}
