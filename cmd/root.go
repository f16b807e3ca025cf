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

// Package cmd implements the dtfabric subcommands.
package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Root creates the dtfabric command with all subcommands.
func Root() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dtfabric",
		Short:         "Decode utmp and Java IDX artifacts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(Utmp(), JavaIDX(), Element())
	return rootCmd
}

// Element is the element store commandline subcommand.
func Element() *cobra.Command {
	elementCommand := &cobra.Command{
		Use:   "element",
		Short: "Read elements from a store",
	}
	elementCommand.AddCommand(getCommand(), selectCommand(), allCommand(), validateCommand())
	return elementCommand
}

func requireStore(url string) error {
	if _, err := os.Stat(url); os.IsNotExist(err) {
		return errors.Wrap(os.ErrNotExist, url)
	}
	return nil
}
