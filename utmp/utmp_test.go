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

package utmp

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forensicanalysis/dtfabric"
)

func padded(s string, size int) []byte {
	b := make([]byte, size)
	copy(b, s)
	return b
}

func linuxEntry(t *testing.T, typ int64, username, hostname string, ip []byte) []byte {
	record := dtfabric.NewRecord(string(Linux)).
		Set("type", typ).
		Set("pid", int64(1234)).
		Set("terminal", padded("pts/0", 32)).
		Set("terminal_identifier", int64(0x302f7374)).
		Set("username", padded(username, 32)).
		Set("hostname", padded(hostname, 256)).
		Set("termination_status", int64(0)).
		Set("exit_status", int64(0)).
		Set("session", int64(42)).
		Set("timestamp", int64(1367926674)).
		Set("microseconds", int64(500000)).
		Set("ip_address", padded(string(ip), 16)).
		Set("padding", make([]byte, 20))
	b, err := catalog.Encode(string(Linux), record)
	require.NoError(t, err)
	require.Len(t, b, 384)
	return b
}

func macOSXEntry(t *testing.T, typ int64, username, hostname string) []byte {
	record := dtfabric.NewRecord(string(MacOSX)).
		Set("username", padded(username, 256)).
		Set("terminal_identifier", int64(0x2f30)).
		Set("terminal", padded("console", 32)).
		Set("pid", int64(88)).
		Set("type", typ).
		Set("padding1", make([]byte, 2)).
		Set("timestamp", int64(1367926674)).
		Set("microseconds", int64(0)).
		Set("hostname", padded(hostname, 256)).
		Set("padding2", make([]byte, 64))
	b, err := catalog.Encode(string(MacOSX), record)
	require.NoError(t, err)
	require.Len(t, b, 628)
	return b
}

func TestVariant_Size(t *testing.T) {
	assert.Equal(t, 384, Linux.Size())
	assert.Equal(t, 628, MacOSX.Size())
	assert.Equal(t, 0, Variant("solaris").Size())
}

func TestParseVariant(t *testing.T) {
	tests := []struct {
		name    string
		want    Variant
		wantErr bool
	}{
		{"linux", Linux, false},
		{"Linux", Linux, false},
		{"linux_libc6_utmp_entry", Linux, false},
		{"macosx", MacOSX, false},
		{"darwin", MacOSX, false},
		{"solaris", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVariant(tt.name)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseVariant() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecoder_DecodeLinux(t *testing.T) {
	data := bytes.Join([][]byte{
		linuxEntry(t, 7, "root", "10.0.0.1", []byte{10, 0, 0, 1}),
		linuxEntry(t, 2, "reboot", "", nil),
		linuxEntry(t, 8, "user", "host", net.ParseIP("2001:db8::1")),
		linuxEntry(t, 42, "a\x00b", "", nil),
	}, nil)

	d, err := NewDecoder(Linux)
	require.NoError(t, err)
	entries, err := d.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, entries, 4)

	root := entries[0]
	assert.Equal(t, int64(0), root.Offset)
	assert.Equal(t, "USER_PROCESS", root.TypeName)
	assert.Equal(t, int64(1234), root.PID)
	assert.Equal(t, "pts/0", root.Terminal)
	assert.Equal(t, "root", root.Username)
	assert.Equal(t, "10.0.0.1", root.Hostname)
	assert.Equal(t, int64(42), root.Session)
	assert.Equal(t, time.Date(2013, 5, 7, 11, 37, 54, 500000000, time.UTC), root.Timestamp)
	assert.Equal(t, "10.0.0.1", root.IPAddress.String())
	assert.Empty(t, root.Warnings)

	assert.Equal(t, int64(384), entries[1].Offset)
	assert.Equal(t, "BOOT_TIME", entries[1].TypeName)
	assert.Equal(t, "", entries[1].Hostname)
	assert.Nil(t, entries[1].IPAddress)

	assert.Equal(t, "2001:db8::1", entries[2].IPAddress.String())

	assert.Equal(t, "UNKNOWN_42", entries[3].TypeName)
	assert.Equal(t, "a\x00b", entries[3].Username)
}

func TestDecoder_DecodeMacOSX(t *testing.T) {
	data := append(macOSXEntry(t, 3, "admin", "localhost"), macOSXEntry(t, 4, "admin", "")...)

	d, err := NewDecoder(MacOSX)
	require.NoError(t, err)
	entries, err := d.DecodeBytes(data)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "OLD_TIME", entries[0].TypeName)
	assert.Equal(t, "NEW_TIME", entries[1].TypeName)
	assert.Equal(t, "admin", entries[0].Username)
	assert.Equal(t, "console", entries[0].Terminal)
	assert.Equal(t, "localhost", entries[0].Hostname)
	assert.Equal(t, int64(88), entries[0].PID)
	assert.Equal(t, int64(628), entries[1].Offset)
	assert.Equal(t, time.Unix(1367926674, 0).UTC(), entries[0].Timestamp)
	assert.Nil(t, entries[0].IPAddress)
}

func TestDecoder_PartialTail(t *testing.T) {
	entry := linuxEntry(t, 7, "root", "", nil)
	tests := []struct {
		name string
		data []byte
		want int
	}{
		{"empty", nil, 0},
		{"short", entry[:100], 0},
		{"one and a half", append(append([]byte{}, entry...), entry[:192]...), 1},
		{"two", append(append([]byte{}, entry...), entry...), 2},
	}
	d, err := NewDecoder(Linux)
	require.NoError(t, err)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := d.Decode(bytes.NewReader(tt.data))
			require.NoError(t, err)
			assert.Len(t, entries, tt.want)

			entries, err = d.DecodeBytes(tt.data)
			require.NoError(t, err)
			assert.Len(t, entries, tt.want)
		})
	}
}

func TestDecoder_NonASCII(t *testing.T) {
	data := linuxEntry(t, 7, "j\xf6rg", "h\x80st", nil)

	d, err := NewDecoder(Linux)
	require.NoError(t, err)
	entries, err := d.DecodeBytes(data)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "j�rg", entries[0].Username)
	assert.Equal(t, "h�st", entries[0].Hostname)
	require.Len(t, entries[0].Warnings, 2)
	assert.Contains(t, entries[0].Warnings[0], "username")
	assert.Contains(t, entries[0].Warnings[1], "hostname")
}

func TestDecoder_Each(t *testing.T) {
	data := bytes.Repeat(linuxEntry(t, 7, "root", "", nil), 3)
	stop := errors.New("stop")

	d, err := NewDecoder(Linux)
	require.NoError(t, err)
	count := 0
	err = d.Each(bytes.NewReader(data), func(entry *Entry) error {
		count++
		if count == 2 {
			return stop
		}
		return nil
	})
	assert.Equal(t, stop, err)
	assert.Equal(t, 2, count)
}

func TestNewDecoder_Unknown(t *testing.T) {
	_, err := NewDecoder(Variant("solaris"))
	assert.Error(t, err)
}
