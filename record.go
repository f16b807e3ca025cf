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
	"encoding/json"
	"fmt"
	"log"

	"github.com/pkg/errors"
)

// Bool is a decoded boolean. BoolUnknown substitutes a byte that matched
// neither the true nor the false value.
type Bool int8

// Boolean values.
const (
	BoolUnknown Bool = -1
	BoolFalse   Bool = 0
	BoolTrue    Bool = 1
)

func (b Bool) String() string {
	switch b {
	case BoolTrue:
		return "true"
	case BoolFalse:
		return "false"
	}
	return "unknown"
}

// MarshalJSON encodes BoolUnknown as null.
func (b Bool) MarshalJSON() ([]byte, error) {
	switch b {
	case BoolTrue:
		return []byte("true"), nil
	case BoolFalse:
		return []byte("false"), nil
	}
	return []byte("null"), nil
}

// Record is the result of decoding a structure: member names mapped to
// values in definition order. Values are int64, uint64, Bool, string,
// []byte, *Record or []interface{}.
type Record struct {
	name     string
	names    []string
	values   map[string]interface{}
	warnings []string
}

// NewRecord creates an empty record for the structure name.
func NewRecord(name string) *Record {
	return &Record{name: name, values: map[string]interface{}{}}
}

// Name returns the name of the structure definition.
func (r *Record) Name() string {
	return r.name
}

// Set adds or replaces a member value and returns the record.
func (r *Record) Set(name string, value interface{}) *Record {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = value
	return r
}

// Get returns the value of a member.
func (r *Record) Get(name string) (interface{}, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Names returns the member names in decoding order.
func (r *Record) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Len returns the number of decoded members.
func (r *Record) Len() int {
	return len(r.names)
}

// AddWarning logs a non-fatal decoding problem and keeps it on the record.
func (r *Record) AddWarning(err error) *Record {
	log.Print(err)
	r.warnings = append(r.warnings, err.Error())
	return r
}

// Warnings returns the non-fatal problems found while decoding.
func (r *Record) Warnings() []string {
	return r.warnings
}

func (r *Record) lookup(name string) (interface{}, error) {
	v, ok := r.values[name]
	if !ok {
		return nil, errors.Errorf("%s has no member %s", r.name, name)
	}
	return v, nil
}

// Int returns an integer member as int64.
func (r *Record) Int(name string) (int64, error) {
	v, err := r.lookup(name)
	if err != nil {
		return 0, err
	}
	i, ok := toInt64(v)
	if !ok {
		return 0, errors.Errorf("%s.%s is %T, not an integer", r.name, name, v)
	}
	return i, nil
}

// Uint returns an integer member as uint64.
func (r *Record) Uint(name string) (uint64, error) {
	v, err := r.lookup(name)
	if err != nil {
		return 0, err
	}
	u, ok := toUint64(v)
	if !ok {
		return 0, errors.Errorf("%s.%s is %T, not an unsigned integer", r.name, name, v)
	}
	return u, nil
}

// Bool returns a boolean member.
func (r *Record) Bool(name string) (Bool, error) {
	v, err := r.lookup(name)
	if err != nil {
		return BoolUnknown, err
	}
	switch b := v.(type) {
	case Bool:
		return b, nil
	case bool:
		if b {
			return BoolTrue, nil
		}
		return BoolFalse, nil
	}
	return BoolUnknown, errors.Errorf("%s.%s is %T, not a boolean", r.name, name, v)
}

// Bytes returns a stream member.
func (r *Record) Bytes(name string) ([]byte, error) {
	v, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, errors.Errorf("%s.%s is %T, not a stream", r.name, name, v)
	}
	return b, nil
}

// String returns a string or character member.
func (r *Record) String(name string) (string, error) {
	v, err := r.lookup(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Errorf("%s.%s is %T, not a string", r.name, name, v)
	}
	return s, nil
}

// Record returns a nested structure member.
func (r *Record) Record(name string) (*Record, error) {
	v, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	sub, ok := v.(*Record)
	if !ok {
		return nil, errors.Errorf("%s.%s is %T, not a structure", r.name, name, v)
	}
	return sub, nil
}

// Sequence returns a sequence member.
func (r *Record) Sequence(name string) ([]interface{}, error) {
	v, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	seq, ok := v.([]interface{})
	if !ok {
		return nil, errors.Errorf("%s.%s is %T, not a sequence", r.name, name, v)
	}
	return seq, nil
}

// Map converts the record into nested maps. Nested records become
// map[string]interface{} values.
func (r *Record) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r.names))
	for _, name := range r.names {
		m[name] = plain(r.values[name])
	}
	return m
}

func plain(v interface{}) interface{} {
	switch v := v.(type) {
	case *Record:
		return v.Map()
	case []interface{}:
		l := make([]interface{}, len(v))
		for i := range v {
			l[i] = plain(v[i])
		}
		return l
	case Bool:
		if v == BoolUnknown {
			return nil
		}
		return v == BoolTrue
	}
	return v
}

// MarshalJSON encodes the record as a JSON object keeping the member order.
func (r *Record) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(r.values[name])
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("could not marshal %s", name))
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func toInt64(v interface{}) (int64, bool) {
	switch i := v.(type) {
	case int64:
		return i, true
	case uint64:
		return int64(i), true
	case int:
		return int64(i), true
	case int8:
		return int64(i), true
	case int16:
		return int64(i), true
	case int32:
		return int64(i), true
	case uint:
		return int64(i), true
	case uint8:
		return int64(i), true
	case uint16:
		return int64(i), true
	case uint32:
		return int64(i), true
	}
	return 0, false
}

func toUint64(v interface{}) (uint64, bool) {
	if u, ok := v.(uint64); ok {
		return u, true
	}
	i, ok := toInt64(v)
	return uint64(i), ok
}
