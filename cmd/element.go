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
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/forensicanalysis/dtfabric/store"
)

func withStore(url string, fn func(*store.Store) (interface{}, error)) (interface{}, error) {
	if err := requireStore(url); err != nil {
		return nil, err
	}
	s, err := store.Open(url)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return fn(s)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", b)
	return nil
}

func getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id> <store>",
		Short: "Retrieve a single element",
		Args:  cobra.ExactArgs(2), //nolint:gomnd
		RunE: func(cmd *cobra.Command, args []string) error {
			element, err := withStore(args[1], func(s *store.Store) (interface{}, error) {
				element, err := s.Get(args[0])
				return json.RawMessage(element), err
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, element)
		},
	}
}

func parseFilters(filters []string) ([]map[string]string, error) {
	if len(filters) == 0 {
		return nil, nil
	}
	condition := map[string]string{}
	for _, filter := range filters {
		parts := strings.SplitN(filter, "=", 2) //nolint:gomnd
		if len(parts) != 2 || parts[0] == "" {
			return nil, errors.Errorf("filter %q is not field=pattern", filter)
		}
		condition[parts[0]] = parts[1]
	}
	return []map[string]string{condition}, nil
}

func selectCommand() *cobra.Command {
	var filters []string
	selectCommand := &cobra.Command{
		Use:   "select <type> <store>",
		Short: "Retrieve a list of all elements of a specific type",
		Args:  cobra.ExactArgs(2), //nolint:gomnd
		RunE: func(cmd *cobra.Command, args []string) error {
			conditions, err := parseFilters(filters)
			if err != nil {
				return err
			}
			elements, err := withStore(args[1], func(s *store.Store) (interface{}, error) {
				elements, err := s.Select(args[0], conditions)
				return rawElements(elements), err
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, elements)
		},
	}
	selectCommand.Flags().StringArrayVar(&filters, "filter", nil, "field=pattern, SQL LIKE patterns")
	return selectCommand
}

func allCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "all <store>",
		Short: "Retrieve all elements",
		Args:  cobra.ExactArgs(1), //nolint:gomnd
		RunE: func(cmd *cobra.Command, args []string) error {
			elements, err := withStore(args[0], func(s *store.Store) (interface{}, error) {
				elements, err := s.All()
				return rawElements(elements), err
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, elements)
		},
	}
}

func validateCommand() *cobra.Command {
	var noFail bool
	validateCommand := &cobra.Command{
		Use:   "validate <store>",
		Short: "Validate all elements",
		Args:  cobra.ExactArgs(1), //nolint:gomnd
		RunE: func(cmd *cobra.Command, args []string) error {
			flaws, err := withStore(args[0], func(s *store.Store) (interface{}, error) {
				return s.Validate()
			})
			if err != nil {
				return err
			}
			if err := printJSON(cmd, flaws); err != nil {
				return err
			}
			if n := len(flaws.([]string)); n > 0 && !noFail {
				return errors.Errorf("%d flaws found", n)
			}
			return nil
		},
	}
	validateCommand.Flags().BoolVar(&noFail, "no-fail", false, "return exit code 0")
	return validateCommand
}

func rawElements(elements []store.JSONElement) []json.RawMessage {
	raw := make([]json.RawMessage, len(elements))
	for i, element := range elements {
		raw[i] = json.RawMessage(element)
	}
	return raw
}
