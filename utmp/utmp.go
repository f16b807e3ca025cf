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

// Package utmp decodes utmp and utmpx login record files such as
// /var/run/utmp, /var/log/wtmp and /var/log/btmp on Linux and
// /var/run/utmpx on Mac OS X.
package utmp

import (
	_ "embed" // utmp definitions
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/forensicanalysis/dtfabric"
)

//go:embed utmp.yaml
var definitions []byte

var catalog = dtfabric.MustCatalog(definitions) // nolint:gochecknoglobals

// Variant is the platform specific entry layout. The variant is not
// detected from the data and must be chosen by the caller.
type Variant string

// Supported variants.
const (
	Linux  Variant = "linux_libc6_utmp_entry"
	MacOSX Variant = "macosx_utmpx_entry"
)

// ParseVariant accepts a variant by short name ("linux", "macosx") or by
// definition name.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(s) {
	case "linux", string(Linux):
		return Linux, nil
	case "macosx", "macos", "darwin", string(MacOSX):
		return MacOSX, nil
	}
	return "", errors.Errorf("unknown utmp variant %q", s)
}

// Size returns the byte size of one entry, or 0 for an unknown variant.
// NewDecoder reports unknown variants as an error.
func (v Variant) Size() int {
	size, err := catalog.Size(string(v))
	if err != nil {
		return 0
	}
	return size
}

// Decoder reads consecutive fixed-size entries of one variant.
type Decoder struct {
	variant Variant
	size    int
}

// NewDecoder creates a decoder for the variant.
func NewDecoder(variant Variant) (*Decoder, error) {
	size, err := catalog.Size(string(variant))
	if err != nil {
		return nil, errors.Wrapf(err, "unknown utmp variant %q", variant)
	}
	return &Decoder{variant: variant, size: size}, nil
}

// Variant returns the entry layout of the decoder.
func (d *Decoder) Variant() Variant {
	return d.variant
}

// Decode reads all entries. Trailing bytes shorter than one entry are
// ignored. On error the entries decoded before the failure are returned.
func (d *Decoder) Decode(r io.Reader) ([]*Entry, error) {
	var entries []*Entry
	err := d.Each(r, func(entry *Entry) error {
		entries = append(entries, entry)
		return nil
	})
	return entries, err
}

// DecodeBytes decodes all entries in data.
func (d *Decoder) DecodeBytes(data []byte) ([]*Entry, error) {
	var entries []*Entry
	for offset := 0; offset+d.size <= len(data); offset += d.size {
		entry, err := d.decodeEntry(data[offset:offset+d.size], int64(offset))
		if err != nil {
			return entries, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Each calls fn for every entry read from r. Iteration stops at the first
// error returned by fn, which is returned by Each.
func (d *Decoder) Each(r io.Reader, fn func(*Entry) error) error {
	buf := make([]byte, d.size)
	var offset int64
	for {
		_, err := io.ReadFull(r, buf)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "could not read entry at offset %d", offset)
		}

		entry, err := d.decodeEntry(buf, offset)
		if err != nil {
			return err
		}
		if err := fn(entry); err != nil {
			return err
		}
		offset += int64(d.size)
	}
}

func (d *Decoder) decodeEntry(data []byte, offset int64) (*Entry, error) {
	record, err := catalog.DecodeBytes(string(d.variant), data)
	if err != nil {
		return nil, errors.Wrapf(err, "entry at offset %d", offset)
	}
	return newEntry(d.variant, record, offset)
}
