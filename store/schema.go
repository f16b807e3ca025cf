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
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/qri-io/jsonschema"
	"github.com/tidwall/gjson"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema // nolint:gochecknoglobals
	schemasErr  error                         // nolint:gochecknoglobals
)

// elementSchemas parses the embedded element schemas once. Schemas are
// keyed by element type, which is the file name without extension.
func elementSchemas() (map[string]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		schemas = map[string]*jsonschema.Schema{}
		entries, err := schemaFS.ReadDir("schemas")
		if err != nil {
			schemasErr = err
			return
		}
		for _, entry := range entries {
			content, err := schemaFS.ReadFile(path.Join("schemas", entry.Name()))
			if err != nil {
				schemasErr = err
				return
			}
			schema := &jsonschema.Schema{}
			if err := json.Unmarshal(content, schema); err != nil {
				schemasErr = errors.Wrapf(err, "unmarshal error %s", entry.Name())
				return
			}
			schemas[strings.TrimSuffix(entry.Name(), ".json")] = schema
		}
	})
	return schemas, schemasErr
}

// validateSchema returns the schema violations of an element. Elements of
// types without a schema only need a type.
func validateSchema(element JSONElement) (flaws []string, err error) {
	elementType := gjson.GetBytes(element, discriminator)
	if !elementType.Exists() {
		return []string{"element needs to have a type"}, nil
	}

	all, err := elementSchemas()
	if err != nil {
		return nil, err
	}
	schema, ok := all[elementType.String()]
	if !ok {
		return nil, nil
	}

	errs, err := schema.ValidateBytes(context.Background(), element)
	if err != nil {
		return nil, err
	}
	for _, verr := range errs {
		flaws = append(flaws, fmt.Sprintf("failed to validate element: %s", verr))
	}
	return flaws, nil
}
