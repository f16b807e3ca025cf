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
	"fmt"

	"github.com/pkg/errors"
)

// DecodeStructure decodes the members of a structure definition from the
// cursor. On a structural error the members decoded so far are returned
// together with the error.
func DecodeStructure(t *DataType, cursor *Cursor) (*Record, error) {
	if t.Kind != KindStructure {
		return nil, errors.Wrapf(ErrInvalidDefinition, "%s is a %s, not a structure", t.Name, t.Kind)
	}
	return decodeStructure(t, t.ByteOrder, cursor)
}

func decodeStructure(t *DataType, order ByteOrder, cursor *Cursor) (*Record, error) {
	order = t.ByteOrder.resolve(order)
	record := NewRecord(t.Name)
	for _, member := range t.Members {
		value, err := decodeValue(member.Name, member.Type, order, cursor, record)
		if err != nil {
			if value != nil {
				record.Set(member.Name, value)
			}
			return record, errors.Wrapf(err, "%s.%s", t.Name, member.Name)
		}
		record.Set(member.Name, value)
	}
	return record, nil
}

// decodeValue decodes one value of type t. scope is the in-progress record
// of the enclosing structure, used to resolve sibling size references and
// to collect warnings.
func decodeValue(name string, t *DataType, order ByteOrder, cursor *Cursor, scope *Record) (interface{}, error) { // nolint:gocyclo
	order = t.ByteOrder.resolve(order)

	switch t.Kind {
	case KindInteger:
		b, err := cursor.Read(t.Size)
		if err != nil {
			return nil, err
		}
		return DecodeInteger(b, t.Signed, order)

	case KindBoolean:
		b, err := cursor.Read(t.Size)
		if err != nil {
			return nil, err
		}
		v, err := DecodeBoolean(b[0], t.TrueValue, t.FalseValue)
		if err != nil {
			scope.AddWarning(errors.Wrapf(err, "%s at offset %d", name, cursor.Offset()-t.Size))
		}
		return v, nil

	case KindCharacter:
		b, err := cursor.Read(t.Size)
		if err != nil {
			return nil, err
		}
		return decodeText(name, b, scope, cursor.Offset()-len(b)), nil

	case KindStream:
		size, err := byteSize(t, scope)
		if err != nil {
			return nil, err
		}
		b, err := cursor.Read(size)
		if err != nil {
			return nil, err
		}
		stream := make([]byte, len(b))
		copy(stream, b)
		return stream, nil

	case KindString:
		size, err := byteSize(t, scope)
		if err != nil {
			return nil, err
		}
		b, err := cursor.Read(size)
		if err != nil {
			return nil, err
		}
		return decodeText(name, b, scope, cursor.Offset()-len(b)), nil

	case KindSequence:
		return decodeSequence(name, t, order, cursor, scope)

	case KindStructure:
		return decodeStructure(t, order, cursor)
	}
	return nil, errors.Wrapf(ErrInvalidDefinition, "%s has unsupported kind %s", name, t.Kind)
}

func decodeText(name string, b []byte, scope *Record, offset int) string {
	s, err := DecodeASCII(b)
	if err != nil {
		scope.AddWarning(errors.Wrapf(err, "%s at offset %d", name, offset))
	}
	return s
}

func decodeSequence(name string, t *DataType, order ByteOrder, cursor *Cursor, scope *Record) (interface{}, error) {
	var count int
	if t.NumberOfElements.IsSet() {
		n, err := resolveSize(t.NumberOfElements, scope)
		if err != nil {
			return nil, err
		}
		count = n
	} else {
		size, err := resolveSize(t.ElementsDataSize, scope)
		if err != nil {
			return nil, err
		}
		// elements_data_size on a sequence requires fixed-size elements,
		// enforced when the catalog is built
		count = size / t.Element.FixedSize()
	}

	if elementSize := t.Element.FixedSize(); elementSize > 0 && count*elementSize > cursor.Remaining() {
		return nil, errors.Wrapf(ErrTruncatedData, "%d elements of %d bytes at offset %d, %d remaining",
			count, elementSize, cursor.Offset(), cursor.Remaining())
	}

	capacity := count
	if capacity > cursor.Remaining() {
		capacity = cursor.Remaining()
	}
	elements := make([]interface{}, 0, capacity)
	for i := 0; i < count; i++ {
		element, err := decodeValue(fmt.Sprintf("%s[%d]", name, i), t.Element, order, cursor, scope)
		if err != nil {
			if element != nil {
				elements = append(elements, element)
			}
			return elements, errors.Wrapf(err, "element %d", i)
		}
		elements = append(elements, element)
	}
	return elements, nil
}

// byteSize returns the number of bytes of a stream or string.
func byteSize(t *DataType, scope *Record) (int, error) {
	if t.ElementsDataSize.IsSet() {
		return resolveSize(t.ElementsDataSize, scope)
	}
	n, err := resolveSize(t.NumberOfElements, scope)
	if err != nil {
		return 0, err
	}
	return n * t.Element.FixedSize(), nil
}

func resolveSize(source SizeSource, scope *Record) (int, error) {
	if !source.IsReference() {
		return source.Literal, nil
	}
	v, ok := scope.Get(source.Reference)
	if !ok {
		return 0, errors.Wrapf(ErrUnresolvedSizeReference, "%s is not decoded before use", source.Reference)
	}
	n, ok := toInt64(v)
	if !ok {
		return 0, errors.Wrapf(ErrUnresolvedSizeReference, "%s is %T, not an integer", source.Reference, v)
	}
	if n < 0 {
		return 0, errors.Wrapf(ErrTruncatedData, "negative size %d in %s", n, source.Reference)
	}
	return int(n), nil
}
