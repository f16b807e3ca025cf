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
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/forensicanalysis/dtfabric/javaidx"
	"github.com/forensicanalysis/dtfabric/store"
	"github.com/forensicanalysis/dtfabric/utmp"
)

// inputFS is the file system artifacts and config files are read from.
var inputFS = afero.NewOsFs() // nolint:gochecknoglobals

// decodeFunc decodes one input into store elements. On error the elements
// decoded so far are returned as well.
type decodeFunc func(config Config, name string, r io.Reader) ([]interface{}, error)

// Utmp is the utmp decoding subcommand.
func Utmp() *cobra.Command {
	utmpCommand := &cobra.Command{
		Use:   "utmp <file-or-glob>...",
		Short: "Decode utmp, wtmp, btmp and utmpx files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, args, decodeUtmp)
		},
	}
	utmpCommand.Flags().String("variant", "", "entry layout (linux or macosx, default linux)")
	addConfigFlags(utmpCommand)
	return utmpCommand
}

// JavaIDX is the Java cache index decoding subcommand.
func JavaIDX() *cobra.Command {
	javaIDXCommand := &cobra.Command{
		Use:   "javaidx <file-or-glob>...",
		Short: "Decode Java WebStart and applet cache index files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, args, decodeJavaIDX)
		},
	}
	addConfigFlags(javaIDXCommand)
	return javaIDXCommand
}

func decodeUtmp(config Config, name string, r io.Reader) ([]interface{}, error) {
	variant, err := utmp.ParseVariant(config.Variant)
	if err != nil {
		return nil, err
	}
	decoder, err := utmp.NewDecoder(variant)
	if err != nil {
		return nil, err
	}
	var elements []interface{}
	err = decoder.Each(r, func(entry *utmp.Entry) error {
		elements = append(elements, store.UtmpElement(name, variant, entry))
		return nil
	})
	return elements, err
}

func decodeJavaIDX(_ Config, name string, r io.Reader) ([]interface{}, error) {
	f, err := javaidx.Decode(r)
	if f == nil {
		return nil, err
	}
	element := store.JavaIDXElement(name, f)
	if err != nil {
		element.AddError(err.Error())
	}
	return []interface{}{element}, err
}

func runDecode(cmd *cobra.Command, args []string, decode decodeFunc) (err error) { // nolint:gocyclo
	config, err := loadConfig(cmd, inputFS)
	if err != nil {
		return err
	}
	writer, err := newElementWriter(cmd.OutOrStdout(), config.Format)
	if err != nil {
		return err
	}

	var elementStore *store.Store
	if config.Store != "" {
		elementStore, err = openOrCreate(config.Store)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := elementStore.Close(); cerr != nil && err == nil {
				err = errors.Wrap(cerr, "could not close store")
			}
		}()
	}

	inputs, err := expandInputs(inputFS, args)
	if err != nil {
		return err
	}

	failed := 0
	for _, name := range inputs {
		elements, err := decodeInput(inputFS, config, name, decode)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", name, err)
		}
		for _, element := range elements {
			if err := writer.Write(store.StructMap(element)); err != nil {
				return err
			}
		}
		if elementStore != nil && len(elements) > 0 {
			if _, err := elementStore.InsertStructBatch(elements); err != nil {
				return errors.Wrapf(err, "could not store elements of %s", name)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be decoded", failed, len(inputs))
	}
	return nil
}

func decodeInput(fs afero.Fs, config Config, name string, decode decodeFunc) ([]interface{}, error) {
	r, err := openInput(fs, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return decode(config, name, r)
}

func openOrCreate(url string) (*store.Store, error) {
	if _, err := os.Stat(url); err == nil {
		return store.Open(url)
	}
	return store.New(url)
}
