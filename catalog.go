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
	_ "embed" // base type definitions
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed base.yaml
var baseDefinitions []byte

// Catalog holds compiled data type definitions by name. A catalog is
// read-only after NewCatalog returns and may be shared between goroutines.
type Catalog struct {
	types map[string]*DataType
}

type yamlDefinition struct {
	Name             string           `yaml:"name"`
	Type             string           `yaml:"type"`
	DataType         string           `yaml:"data_type"`
	Description      string           `yaml:"description"`
	Attributes       yamlAttributes   `yaml:"attributes"`
	ElementDataType  string           `yaml:"element_data_type"`
	ElementsDataSize yamlSize         `yaml:"elements_data_size"`
	NumberOfElements yamlSize         `yaml:"number_of_elements"`
	Encoding         string           `yaml:"encoding"`
	Members          []yamlDefinition `yaml:"members"`
}

type yamlAttributes struct {
	ByteOrder  string `yaml:"byte_order"`
	Format     string `yaml:"format"`
	Size       int    `yaml:"size"`
	Units      string `yaml:"units"`
	TrueValue  *int   `yaml:"true_value"`
	FalseValue *int   `yaml:"false_value"`
}

// yamlSize is either an integer or a member name.
type yamlSize struct {
	SizeSource
}

func (s *yamlSize) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return errors.Errorf("line %d: size must be a scalar", value.Line)
	}
	if value.ShortTag() == "!!int" {
		n, err := strconv.Atoi(value.Value)
		if err != nil {
			return errors.Wrapf(err, "line %d", value.Line)
		}
		s.SizeSource = Literal(n)
		return nil
	}
	s.SizeSource = Reference(value.Value)
	return nil
}

// NewCatalog compiles the multi-document YAML sources. The base integer,
// boolean and character types are always available.
func NewCatalog(sources ...[]byte) (*Catalog, error) {
	definitions := map[string]*yamlDefinition{}
	for _, source := range append([][]byte{baseDefinitions}, sources...) {
		decoder := yaml.NewDecoder(bytes.NewReader(source))
		for {
			definition := &yamlDefinition{}
			err := decoder.Decode(definition)
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, errors.Wrap(err, "could not parse definitions")
			}
			if definition.Name == "" && definition.Type == "" {
				continue
			}
			if definition.Name == "" {
				return nil, errors.Wrapf(ErrInvalidDefinition, "%s definition without name", definition.Type)
			}
			if _, ok := definitions[definition.Name]; ok {
				return nil, errors.Wrapf(ErrInvalidDefinition, "duplicate definition %s", definition.Name)
			}
			definitions[definition.Name] = definition
		}
	}

	c := &compiler{definitions: definitions, types: map[string]*DataType{}, active: map[string]bool{}}
	for name := range definitions {
		if _, err := c.named(name); err != nil {
			return nil, err
		}
	}
	return &Catalog{types: c.types}, nil
}

// MustCatalog is like NewCatalog but panics if the definitions are invalid.
// It is meant for package-level catalogs built from embedded definitions.
func MustCatalog(sources ...[]byte) *Catalog {
	c, err := NewCatalog(sources...)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the definition with the given name.
func (c *Catalog) Lookup(name string) (*DataType, error) {
	t, ok := c.types[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownDefinition, name)
	}
	return t, nil
}

// Names returns the sorted names of all definitions.
func (c *Catalog) Names() []string {
	var names []string
	for name := range c.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the fixed byte size of a definition.
func (c *Catalog) Size(name string) (int, error) {
	t, err := c.Lookup(name)
	if err != nil {
		return 0, err
	}
	size := t.FixedSize()
	if size < 0 {
		return 0, errors.Errorf("%s has a variable size", name)
	}
	return size, nil
}

// Decode decodes the structure name at the cursor position.
func (c *Catalog) Decode(name string, cursor *Cursor) (*Record, error) {
	t, err := c.Lookup(name)
	if err != nil {
		return nil, err
	}
	return DecodeStructure(t, cursor)
}

// DecodeBytes decodes the structure name from the start of data.
func (c *Catalog) DecodeBytes(name string, data []byte) (*Record, error) {
	return c.Decode(name, NewCursor(data))
}

type compiler struct {
	definitions map[string]*yamlDefinition
	types       map[string]*DataType
	active      map[string]bool
}

func (c *compiler) named(name string) (*DataType, error) {
	if t, ok := c.types[name]; ok {
		return t, nil
	}
	definition, ok := c.definitions[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownDefinition, name)
	}
	if c.active[name] {
		return nil, errors.Wrapf(ErrInvalidDefinition, "%s refers to itself", name)
	}
	c.active[name] = true
	defer delete(c.active, name)

	t, err := c.compile(definition)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	c.types[name] = t
	return t, nil
}

func (c *compiler) compile(definition *yamlDefinition) (*DataType, error) { // nolint:gocyclo,funlen
	kind, ok := kindNames[definition.Type]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidDefinition, "unknown type %q", definition.Type)
	}
	order, err := parseByteOrder(definition.Attributes.ByteOrder)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidDefinition, err.Error())
	}
	t := &DataType{
		Name:        definition.Name,
		Description: definition.Description,
		Kind:        kind,
		ByteOrder:   order,
		Size:        definition.Attributes.Size,
	}

	switch kind {
	case KindInteger:
		switch t.Size {
		case 1, 2, 4, 8:
		default:
			return nil, errors.Wrapf(ErrInvalidDefinition, "integer size %d", t.Size)
		}
		switch definition.Attributes.Format {
		case "", "signed":
			t.Signed = true
		case "unsigned":
		default:
			return nil, errors.Wrapf(ErrInvalidDefinition, "integer format %q", definition.Attributes.Format)
		}

	case KindBoolean:
		if t.Size != 1 {
			return nil, errors.Wrapf(ErrInvalidDefinition, "boolean size %d", t.Size)
		}
		t.TrueValue, t.FalseValue = 1, 0
		if definition.Attributes.TrueValue != nil {
			t.TrueValue = byte(*definition.Attributes.TrueValue)
		}
		if definition.Attributes.FalseValue != nil {
			t.FalseValue = byte(*definition.Attributes.FalseValue)
		}
		if t.TrueValue == t.FalseValue {
			return nil, errors.Wrap(ErrInvalidDefinition, "boolean true and false values are equal")
		}

	case KindCharacter:
		if t.Size != 1 {
			return nil, errors.Wrapf(ErrInvalidDefinition, "character size %d", t.Size)
		}

	case KindStream, KindSequence, KindString:
		if err := c.compileElements(definition, t); err != nil {
			return nil, err
		}

	case KindStructure:
		if err := c.compileMembers(definition, t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (c *compiler) compileElements(definition *yamlDefinition, t *DataType) error {
	element, err := c.named(definition.ElementDataType)
	if err != nil {
		return errors.Wrap(err, "element data type")
	}
	t.Element = element
	t.ElementsDataSize = definition.ElementsDataSize.SizeSource
	t.NumberOfElements = definition.NumberOfElements.SizeSource

	if t.ElementsDataSize.IsSet() == t.NumberOfElements.IsSet() {
		return errors.Wrap(ErrInvalidDefinition, "requires exactly one of elements_data_size and number_of_elements")
	}
	if t.Kind != KindSequence && element.FixedSize() < 0 {
		return errors.Wrapf(ErrInvalidDefinition, "%s elements must have a fixed size", t.Kind)
	}
	if t.Kind == KindSequence && t.ElementsDataSize.IsSet() && element.FixedSize() <= 0 {
		return errors.Wrap(ErrInvalidDefinition, "elements_data_size requires fixed-size elements")
	}

	switch t.Kind {
	case KindString:
		if element.Kind != KindCharacter && element.Kind != KindInteger {
			return errors.Wrapf(ErrInvalidDefinition, "string of %s", element.Kind)
		}
		switch definition.Encoding {
		case "", "ascii":
			t.Encoding = "ascii"
		default:
			return errors.Wrapf(ErrInvalidDefinition, "unsupported encoding %q", definition.Encoding)
		}
	case KindStream:
		if element.Kind != KindInteger || element.Size != 1 {
			return errors.Wrap(ErrInvalidDefinition, "stream elements must be bytes")
		}
	}
	return nil
}

func (c *compiler) compileMembers(definition *yamlDefinition, t *DataType) error {
	if len(definition.Members) == 0 {
		return errors.Wrap(ErrInvalidDefinition, "structure without members")
	}
	seen := map[string]*DataType{}
	for i := range definition.Members {
		memberDefinition := &definition.Members[i]
		if memberDefinition.Name == "" {
			return errors.Wrapf(ErrInvalidDefinition, "member %d without name", i)
		}
		if _, ok := seen[memberDefinition.Name]; ok {
			return errors.Wrapf(ErrInvalidDefinition, "duplicate member %s", memberDefinition.Name)
		}

		var memberType *DataType
		var err error
		if memberDefinition.DataType != "" {
			memberType, err = c.named(memberDefinition.DataType)
		} else {
			memberType, err = c.compile(memberDefinition)
		}
		if err != nil {
			return errors.Wrap(err, memberDefinition.Name)
		}

		// size references must point to an integer member declared before
		for _, source := range []*SizeSource{&memberType.ElementsDataSize, &memberType.NumberOfElements} {
			if !source.IsReference() {
				continue
			}
			if memberDefinition.DataType != "" {
				return errors.Wrapf(ErrInvalidDefinition, "%s: named type %s refers to sibling %s",
					memberDefinition.Name, memberDefinition.DataType, source.Reference)
			}
			source.Reference = strings.TrimPrefix(source.Reference, t.Name+".")
			sibling, ok := seen[source.Reference]
			if !ok {
				return errors.Wrapf(ErrInvalidDefinition, "%s: size reference %s is not a preceding member",
					memberDefinition.Name, source.Reference)
			}
			if sibling.Kind != KindInteger {
				return errors.Wrapf(ErrInvalidDefinition, "%s: size reference %s is a %s",
					memberDefinition.Name, source.Reference, sibling.Kind)
			}
		}

		seen[memberDefinition.Name] = memberType
		t.Members = append(t.Members, &Member{Name: memberDefinition.Name, Type: memberType})
	}
	return nil
}
