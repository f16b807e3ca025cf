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

// Package javaidx decodes Java WebStart and applet cache index (IDX) files.
//
// An IDX file starts with a header holding the format version, followed by
// version specific sections with the timestamps, the URL of the cached
// resource and the HTTP response headers it was downloaded with. Format
// versions 6.02, 6.03 and 6.05 are supported.
package javaidx

import (
	_ "embed" // java idx definitions
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/forensicanalysis/dtfabric"
)

//go:embed java_idx.yaml
var definitions []byte

var catalog = dtfabric.MustCatalog(definitions) // nolint:gochecknoglobals

type layout struct {
	section1 string
	section2 string
	// section2Offset is the absolute offset of section 2, 0 if it follows
	// section 1 directly
	section2Offset int
	// trailing sections 3 and 4 are declared in section 1
	trailing bool
}

var layouts = map[uint32]layout{ // nolint:gochecknoglobals
	602: {section1: "java_idx_602_section1", section2: "java_idx_602_section2"},
	603: {section1: "java_idx_603_section1", section2: "java_idx_603_section2", section2Offset: 128, trailing: true},
	605: {section1: "java_idx_605_section1", section2: "java_idx_603_section2", section2Offset: 128, trailing: true},
}

// SupportedVersions lists the decodable format versions.
func SupportedVersions() []uint32 {
	return []uint32{602, 603, 605}
}

// Header is one HTTP response header stored in the file.
type Header struct {
	Name   string           `json:"name"`
	Value  string           `json:"value"`
	Record *dtfabric.Record `json:"-"`
}

// File is a decoded IDX file.
type File struct {
	BusyFlag       uint64 `json:"busy_flag"`
	IncompleteFlag uint64 `json:"incomplete_flag"`
	FormatVersion  uint32 `json:"format_version"`

	ContentSize      uint64    `json:"content_size"`
	ModificationTime time.Time `json:"modification_time"`
	ExpirationTime   time.Time `json:"expiration_time"`
	ValidationTime   time.Time `json:"validation_time"`

	Version   string `json:"version"`
	URL       string `json:"url"`
	Namespace string `json:"namespace"`
	IPAddress string `json:"ip_address,omitempty"`

	Headers      []Header  `json:"http_headers"`
	DownloadTime time.Time `json:"download_time"`

	// EndOffset is the offset after the last decoded or skipped section.
	EndOffset int      `json:"end_offset"`
	Warnings  []string `json:"warnings,omitempty"`

	FileHeader *dtfabric.Record `json:"-"`
	Section1   *dtfabric.Record `json:"-"`
	Section2   *dtfabric.Record `json:"-"`
}

// Header returns the value of the first HTTP header with the given name,
// compared case-insensitively.
func (f *File) Header(name string) (string, bool) {
	for _, header := range f.Headers {
		if strings.EqualFold(header.Name, name) {
			return header.Value, true
		}
	}
	return "", false
}

// Decode reads and decodes an IDX file.
func Decode(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not read idx file")
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes an IDX file held in memory.
func DecodeBytes(data []byte) (*File, error) {
	return DecodeCursor(dtfabric.NewCursor(data))
}

// DecodeCursor decodes an IDX file starting at the cursor. For an
// unsupported format version no file is returned. On truncated data the
// sections decoded so far are returned together with the error.
func DecodeCursor(cursor *dtfabric.Cursor) (*File, error) { // nolint:gocyclo,funlen
	header, err := catalog.Decode("java_idx_file_header", cursor)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode file header")
	}
	version, err := header.Uint("format_version")
	if err != nil {
		return nil, err
	}
	layout, ok := layouts[uint32(version)]
	if !ok {
		return nil, errors.Wrapf(dtfabric.ErrUnsupportedFormatVersion, "%d", version)
	}

	f := &File{FormatVersion: uint32(version), FileHeader: header}
	if f.BusyFlag, err = header.Uint("busy_flag"); err != nil {
		return nil, err
	}
	if f.IncompleteFlag, err = header.Uint("incomplete_flag"); err != nil {
		return nil, err
	}
	defer func() {
		f.EndOffset = cursor.Offset()
		f.Warnings = collectWarnings(f)
	}()

	f.Section1, err = catalog.Decode(layout.section1, cursor)
	if serr := f.setSection1(); err == nil && serr != nil {
		return f, serr
	}
	if err != nil {
		return f, errors.Wrap(err, "could not decode section 1")
	}

	if layout.section2Offset > 0 {
		if err := cursor.SkipTo(layout.section2Offset); err != nil {
			return f, errors.Wrap(err, "could not seek to section 2")
		}
	}
	f.Section2, err = catalog.Decode(layout.section2, cursor)
	if serr := f.setSection2(); err == nil && serr != nil {
		return f, serr
	}
	if err != nil {
		return f, errors.Wrap(err, "could not decode section 2")
	}

	count, err := f.Section2.Uint("number_of_http_headers")
	if err != nil {
		return f, err
	}
	f.Headers = []Header{}
	for i := uint64(0); i < count; i++ {
		record, err := catalog.Decode("java_idx_http_header", cursor)
		if err != nil {
			f.setDownloadTime()
			return f, errors.Wrapf(err, "could not decode http header %d of %d", i+1, count)
		}
		h := Header{Record: record}
		if h.Name, err = record.String("name"); err != nil {
			return f, err
		}
		if h.Value, err = record.String("value"); err != nil {
			return f, err
		}
		f.Headers = append(f.Headers, h)
	}
	f.setDownloadTime()

	if layout.trailing {
		for _, name := range []string{"section3_size", "section4_size"} {
			size, err := f.Section1.Uint(name)
			if err != nil {
				return f, err
			}
			if err := cursor.Skip(int(size)); err != nil {
				return f, errors.Wrapf(err, "could not skip %d bytes of %s", size, strings.TrimSuffix(name, "_size"))
			}
		}
	}
	return f, nil
}

// setSection1 copies the members of section 1 that were decoded. Members
// missing from a truncated section are left at their zero value.
func (f *File) setSection1() error {
	if f.Section1 == nil {
		return nil
	}
	if _, ok := f.Section1.Get("content_size"); ok {
		contentSize, err := f.Section1.Uint("content_size")
		if err != nil {
			return err
		}
		f.ContentSize = contentSize
	}
	times := []struct {
		name   string
		target *time.Time
	}{
		{"modification_time", &f.ModificationTime},
		{"expiration_time", &f.ExpirationTime},
		{"validation_time", &f.ValidationTime},
	}
	for _, field := range times {
		if _, ok := f.Section1.Get(field.name); !ok {
			continue
		}
		ms, err := f.Section1.Int(field.name)
		if err != nil {
			return err
		}
		*field.target = javaTime(ms)
	}
	return nil
}

// setSection2 copies the strings of section 2 that were decoded.
func (f *File) setSection2() error {
	if f.Section2 == nil {
		return nil
	}
	texts := []struct {
		name   string
		target *string
	}{
		{"version", &f.Version},
		{"url", &f.URL},
		{"namespace", &f.Namespace},
		{"ip_address", &f.IPAddress},
	}
	for _, field := range texts {
		if _, ok := f.Section2.Get(field.name); !ok {
			continue
		}
		s, err := f.Section2.String(field.name)
		if err != nil {
			return err
		}
		*field.target = s
	}
	return nil
}

// setDownloadTime parses the date header, or last-modified if the server
// sent no date.
func (f *File) setDownloadTime() {
	for _, name := range []string{"date", "last-modified"} {
		value, ok := f.Header(name)
		if !ok {
			continue
		}
		t, err := http.ParseTime(value)
		if err != nil {
			f.Section2.AddWarning(errors.Wrapf(err, "could not parse %s header %q", name, value))
			return
		}
		f.DownloadTime = t.UTC()
		return
	}
}

// javaTime converts milliseconds since the epoch. Zero stays the zero time.
func javaTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.Unix(0, ms*int64(time.Millisecond)).UTC()
}

func collectWarnings(f *File) []string {
	var warnings []string
	for _, record := range []*dtfabric.Record{f.FileHeader, f.Section1, f.Section2} {
		if record != nil {
			warnings = append(warnings, record.Warnings()...)
		}
	}
	for _, header := range f.Headers {
		warnings = append(warnings, header.Record.Warnings()...)
	}
	return warnings
}
