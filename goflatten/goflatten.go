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

// Package goflatten flattens nested JSON objects into one level maps with
// dotted keys.
package goflatten

import (
	"sort"
)

// Delimiter separates the keys of nested objects.
const Delimiter = "."

// Flatten returns a map one level deep regardless of how nested the object
// was. Lists are kept as values, nil values and empty objects are dropped.
func Flatten(nested map[string]interface{}) map[string]interface{} {
	flat := map[string]interface{}{}
	flatten(flat, "", nested)
	return flat
}

func flatten(flat map[string]interface{}, prefix string, nested map[string]interface{}) {
	for key, value := range nested {
		if prefix != "" {
			key = prefix + Delimiter + key
		}
		switch value := value.(type) {
		case nil:
		case map[string]interface{}:
			flatten(flat, key, value)
		case map[string]string:
			for k, v := range value {
				flat[key+Delimiter+k] = v
			}
		default:
			flat[key] = value
		}
	}
}

// Keys returns the sorted keys of the flattened object.
func Keys(nested map[string]interface{}) []string {
	flat := Flatten(nested)
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
