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
	"io"
	"path"
	"sort"
	"strings"

	"github.com/forensicanalysis/fsdoublestar"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// expandInputs resolves glob patterns, including "**", against fs. Plain
// paths are passed through so that missing files are reported when they
// are opened.
func expandInputs(fs afero.Fs, args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		arg = path.Clean(strings.ReplaceAll(arg, "\\", "/"))
		if !strings.ContainsAny(arg, "*?[{") {
			inputs = append(inputs, arg)
			continue
		}

		fsys, pattern, prefix := afero.NewIOFS(fs), arg, ""
		if strings.HasPrefix(arg, "/") {
			fsys = afero.NewIOFS(afero.NewBasePathFs(fs, "/"))
			pattern, prefix = strings.TrimLeft(arg, "/"), "/"
		}
		matches, err := fsdoublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid pattern %s", arg)
		}
		sort.Strings(matches)
		for _, match := range matches {
			info, err := fs.Stat(prefix + match)
			if err != nil || info.IsDir() {
				continue
			}
			inputs = append(inputs, prefix+match)
		}
	}
	return inputs, nil
}

type gzipFile struct {
	*gzip.Reader
	file afero.File
}

func (f *gzipFile) Close() error {
	if err := f.Reader.Close(); err != nil {
		f.file.Close() // nolint:errcheck
		return err
	}
	return f.file.Close()
}

// openInput opens a file and transparently decompresses rotated logs like
// wtmp.1.gz.
func openInput(fs afero.Fs, name string) (io.ReadCloser, error) {
	file, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(strings.ToLower(name), ".gz") {
		return file, nil
	}
	r, err := gzip.NewReader(file)
	if err != nil {
		file.Close() // nolint:errcheck
		return nil, errors.Wrapf(err, "could not decompress %s", name)
	}
	return &gzipFile{Reader: r, file: file}, nil
}
