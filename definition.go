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
	"encoding/binary"
	"fmt"
)

// Kind is the kind of a data type definition.
type Kind int

// Supported kinds.
const (
	KindInteger Kind = iota + 1
	KindBoolean
	KindCharacter
	KindStream
	KindSequence
	KindString
	KindStructure
)

var kindNames = map[string]Kind{ // nolint:gochecknoglobals
	"integer":   KindInteger,
	"boolean":   KindBoolean,
	"character": KindCharacter,
	"stream":    KindStream,
	"sequence":  KindSequence,
	"string":    KindString,
	"structure": KindStructure,
}

func (k Kind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ByteOrder of multi-byte integers.
type ByteOrder int

// Byte orders. ByteOrderUnset inherits the byte order of the enclosing
// structure and decodes as little-endian at the top level.
const (
	ByteOrderUnset ByteOrder = iota
	LittleEndian
	BigEndian
)

func parseByteOrder(s string) (ByteOrder, error) {
	switch s {
	case "":
		return ByteOrderUnset, nil
	case "little-endian":
		return LittleEndian, nil
	case "big-endian":
		return BigEndian, nil
	}
	return ByteOrderUnset, fmt.Errorf("unknown byte order %q", s)
}

func (o ByteOrder) String() string {
	switch o {
	case LittleEndian:
		return "little-endian"
	case BigEndian:
		return "big-endian"
	}
	return "unset"
}

func (o ByteOrder) binary() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// resolve returns o, or parent if o is unset.
func (o ByteOrder) resolve(parent ByteOrder) ByteOrder {
	if o == ByteOrderUnset {
		return parent
	}
	return o
}

// SizeSource is the size or element count of a variable member: either a
// literal value or the name of a sibling member decoded earlier.
type SizeSource struct {
	Literal   int
	Reference string
	set       bool
}

// Literal returns a literal size source.
func Literal(n int) SizeSource {
	return SizeSource{Literal: n, set: true}
}

// Reference returns a size source read from the sibling member name.
func Reference(name string) SizeSource {
	return SizeSource{Reference: name, set: true}
}

// IsSet reports whether the size source was declared.
func (s SizeSource) IsSet() bool { return s.set }

// IsReference reports whether the size is read from a sibling member.
func (s SizeSource) IsReference() bool { return s.set && s.Reference != "" }

func (s SizeSource) String() string {
	if s.IsReference() {
		return s.Reference
	}
	return fmt.Sprint(s.Literal)
}

// DataType is a compiled data type definition.
type DataType struct {
	Name        string
	Description string
	Kind        Kind
	ByteOrder   ByteOrder

	// integer, boolean and character
	Size   int
	Signed bool

	// boolean
	TrueValue  byte
	FalseValue byte

	// stream, sequence and string
	Element          *DataType
	ElementsDataSize SizeSource
	NumberOfElements SizeSource
	Encoding         string

	// structure
	Members []*Member
}

// Member is a named member of a structure.
type Member struct {
	Name string
	Type *DataType
}

// FixedSize returns the byte size of the type, or -1 if the size depends
// on decoded data.
func (t *DataType) FixedSize() int {
	switch t.Kind {
	case KindInteger, KindBoolean, KindCharacter:
		return t.Size
	case KindStream, KindSequence, KindString:
		if t.ElementsDataSize.IsSet() {
			if t.ElementsDataSize.IsReference() {
				return -1
			}
			return t.ElementsDataSize.Literal
		}
		if t.NumberOfElements.IsReference() {
			return -1
		}
		elementSize := t.Element.FixedSize()
		if elementSize < 0 {
			return -1
		}
		return t.NumberOfElements.Literal * elementSize
	case KindStructure:
		total := 0
		for _, member := range t.Members {
			size := member.Type.FixedSize()
			if size < 0 {
				return -1
			}
			total += size
		}
		return total
	}
	return -1
}

// Member returns the structure member with the given name.
func (t *DataType) Member(name string) (*Member, bool) {
	for _, member := range t.Members {
		if member.Name == name {
			return member, true
		}
	}
	return nil, false
}
