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

package javaidx

import (
	"bytes"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forensicanalysis/dtfabric"
)

const (
	testURL       = "http://localhost/applet.jar"
	testDate      = "Tue, 07 May 2013 11:37:54 GMT"
	testTimestamp = int64(1367926674432)
)

type builder struct {
	t   *testing.T
	buf bytes.Buffer
}

func (b *builder) encode(name string, record *dtfabric.Record) *builder {
	data, err := catalog.Encode(name, record)
	require.NoError(b.t, err)
	b.buf.Write(data)
	return b
}

func (b *builder) padTo(offset int) *builder {
	require.LessOrEqual(b.t, b.buf.Len(), offset)
	b.buf.Write(make([]byte, offset-b.buf.Len()))
	return b
}

func (b *builder) raw(data []byte) *builder {
	b.buf.Write(data)
	return b
}

func (b *builder) header(version uint64) *builder {
	return b.encode("java_idx_file_header", dtfabric.NewRecord("java_idx_file_header").
		Set("busy_flag", uint64(0)).
		Set("incomplete_flag", uint64(1)).
		Set("format_version", version))
}

func (b *builder) httpHeaders(headers ...string) *builder {
	for i := 0; i+1 < len(headers); i += 2 {
		b.encode("java_idx_http_header", dtfabric.NewRecord("java_idx_http_header").
			Set("name_size", uint64(len(headers[i]))).
			Set("name", headers[i]).
			Set("value_size", uint64(len(headers[i+1]))).
			Set("value", headers[i+1]))
	}
	return b
}

func section2(name string, count uint64, ip *string) *dtfabric.Record {
	r := dtfabric.NewRecord(name).
		Set("version_size", uint64(0)).
		Set("version", "").
		Set("url_size", uint64(len(testURL))).
		Set("url", testURL).
		Set("namespace_size", uint64(2)).
		Set("namespace", "ns")
	if ip != nil {
		r.Set("ip_address_size", uint64(len(*ip))).Set("ip_address", *ip)
	}
	return r.Set("number_of_http_headers", count)
}

func file602(t *testing.T, count uint64, headers ...string) []byte {
	b := &builder{t: t}
	b.header(602).
		encode("java_idx_602_section1", dtfabric.NewRecord("java_idx_602_section1").
			Set("unknown1", uint64(0)).
			Set("is_shortcut_image", false).
			Set("content_size", uint64(1024)).
			Set("modification_time", testTimestamp).
			Set("expiration_time", int64(0))).
		encode("java_idx_602_section2", section2("java_idx_602_section2", count, nil)).
		httpHeaders(headers...)
	return b.buf.Bytes()
}

func section1(name string, section3, section4 uint64) *dtfabric.Record {
	r := dtfabric.NewRecord(name)
	if name == "java_idx_603_section1" {
		r.Set("unknown1", []byte{0, 0})
	}
	return r.Set("is_shortcut_image", false).
		Set("content_size", uint64(2048)).
		Set("modification_time", testTimestamp).
		Set("expiration_time", int64(0)).
		Set("validation_time", testTimestamp+1000).
		Set("is_signed", true).
		Set("section2_size", uint64(0)).
		Set("section3_size", section3).
		Set("section4_size", section4)
}

func TestDecode602(t *testing.T) {
	data := file602(t, 2, "content-length", "1024", "date", testDate)

	f, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, uint32(602), f.FormatVersion)
	assert.Equal(t, uint64(1), f.IncompleteFlag)
	assert.Equal(t, uint64(1024), f.ContentSize)
	assert.Equal(t, time.Date(2013, 5, 7, 11, 37, 54, 432000000, time.UTC), f.ModificationTime)
	assert.True(t, f.ExpirationTime.IsZero())
	assert.True(t, f.ValidationTime.IsZero())
	assert.Equal(t, testURL, f.URL)
	assert.Equal(t, "ns", f.Namespace)
	assert.Equal(t, "", f.Version)
	assert.Equal(t, "", f.IPAddress)
	require.Len(t, f.Headers, 2)
	assert.Equal(t, "content-length", f.Headers[0].Name)
	assert.Equal(t, time.Date(2013, 5, 7, 11, 37, 54, 0, time.UTC), f.DownloadTime)
	assert.Equal(t, len(data), f.EndOffset)
	assert.Empty(t, f.Warnings)

	value, ok := f.Header("Content-Length")
	assert.True(t, ok)
	assert.Equal(t, "1024", value)
	_, ok = f.Header("server")
	assert.False(t, ok)
}

func TestDecode602NoHeaders(t *testing.T) {
	f, err := DecodeBytes(file602(t, 0))
	require.NoError(t, err)
	assert.NotNil(t, f.Headers)
	assert.Len(t, f.Headers, 0)
	assert.True(t, f.DownloadTime.IsZero())
}

func TestDecodeTrailingSections(t *testing.T) {
	ip := "127.0.0.1"
	tests := []struct {
		name     string
		version  uint64
		section1 string
	}{
		{"603", 603, "java_idx_603_section1"},
		{"605", 605, "java_idx_605_section1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &builder{t: t}
			b.header(tt.version).
				encode(tt.section1, section1(tt.section1, 5, 3)).
				padTo(128).
				encode("java_idx_603_section2", section2("java_idx_603_section2", 1, &ip)).
				httpHeaders("date", testDate).
				raw(make([]byte, 8)).
				raw([]byte{0xff, 0xff})
			data := b.buf.Bytes()

			f, err := DecodeBytes(data)
			require.NoError(t, err)
			assert.Equal(t, uint32(tt.version), f.FormatVersion)
			assert.Equal(t, uint64(2048), f.ContentSize)
			assert.Equal(t, time.Date(2013, 5, 7, 11, 37, 55, 432000000, time.UTC), f.ValidationTime)
			assert.Equal(t, testURL, f.URL)
			assert.Equal(t, ip, f.IPAddress)
			require.Len(t, f.Headers, 1)
			assert.False(t, f.DownloadTime.IsZero())
			assert.Equal(t, len(data)-2, f.EndOffset)
		})
	}
}

func TestDecodeUnsupportedVersion(t *testing.T) {
	b := &builder{t: t}
	b.header(600).raw(make([]byte, 64))

	f, err := DecodeBytes(b.buf.Bytes())
	assert.Nil(t, f)
	assert.True(t, errors.Is(err, dtfabric.ErrUnsupportedFormatVersion))
}

func TestDecodeTruncated(t *testing.T) {
	tests := []struct {
		name            string
		data            []byte
		wantFile        bool
		wantContentSize uint64
		wantURL         string
		wantNamespace   string
		wantHeaders     int
		wantDownload    bool
	}{
		{"header", []byte{0, 0, 0}, false, 0, "", "", 0, false},
		{"section 1", file602(t, 0)[:20], true, 1024, "", "", 0, false},
		{"namespace", file602(t, 0)[:63], true, 1024, testURL, "", 0, false},
		{"http headers", file602(t, 2, "date", testDate), true, 1024, testURL, "ns", 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := DecodeBytes(tt.data)
			assert.True(t, errors.Is(err, dtfabric.ErrTruncatedData), "got %v", err)
			if !tt.wantFile {
				assert.Nil(t, f)
				return
			}
			require.NotNil(t, f)
			assert.Equal(t, uint32(602), f.FormatVersion)
			assert.Equal(t, tt.wantContentSize, f.ContentSize)
			assert.Equal(t, tt.wantURL, f.URL)
			assert.Equal(t, tt.wantNamespace, f.Namespace)
			assert.Len(t, f.Headers, tt.wantHeaders)
			assert.Equal(t, tt.wantDownload, !f.DownloadTime.IsZero())
		})
	}
}

func TestDecodeLastModified(t *testing.T) {
	f, err := DecodeBytes(file602(t, 1, "Last-Modified", testDate))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2013, 5, 7, 11, 37, 54, 0, time.UTC), f.DownloadTime)

	f, err = DecodeBytes(file602(t, 2, "last-modified", "Mon, 06 May 2013 10:00:00 GMT", "date", testDate))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2013, 5, 7, 11, 37, 54, 0, time.UTC), f.DownloadTime)
}

func TestDecodeInvalidDate(t *testing.T) {
	f, err := DecodeBytes(file602(t, 1, "date", "yesterday"))
	require.NoError(t, err)
	assert.True(t, f.DownloadTime.IsZero())
	assert.Len(t, f.Warnings, 1)
}
