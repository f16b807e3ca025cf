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

package store

import (
	"sort"
)

// typeMap records the fields seen per element type. It backs the views
// created on Close. It is owned by a single Store and not safe for
// concurrent use.
type typeMap struct {
	changed bool
	types   map[string]map[string]bool
}

func newTypeMap() *typeMap {
	return &typeMap{types: map[string]map[string]bool{}}
}

func (rm *typeMap) all() map[string][]string {
	all := make(map[string][]string, len(rm.types))
	for name, fields := range rm.types {
		for field := range fields {
			all[name] = append(all[name], field)
		}
		sort.Strings(all[name])
	}
	return all
}

func (rm *typeMap) has(name, field string) bool {
	return rm.types[name][field]
}

// restore adds fields read from an existing view without marking the map
// as changed.
func (rm *typeMap) restore(name, field string) {
	if _, ok := rm.types[name]; !ok {
		rm.types[name] = map[string]bool{}
	}
	rm.types[name][field] = true
}

func (rm *typeMap) addAll(name string, fields []string) {
	if _, ok := rm.types[name]; !ok {
		rm.types[name] = map[string]bool{}
	}
	for _, field := range fields {
		if !rm.types[name][field] {
			rm.types[name][field] = true
			rm.changed = true
		}
	}
}
