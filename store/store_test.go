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
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/forensicanalysis/dtfabric/javaidx"
	"github.com/forensicanalysis/dtfabric/utmp"
)

func testEntry(username string) *utmp.Entry {
	return &utmp.Entry{
		Offset:    384,
		Type:      7,
		TypeName:  "USER_PROCESS",
		PID:       1234,
		Terminal:  "pts/0",
		Username:  username,
		Hostname:  "10.0.0.1",
		Timestamp: time.Date(2013, 5, 7, 11, 37, 54, 0, time.UTC),
		IPAddress: net.IPv4(10, 0, 0, 1),
	}
}

func testIDX() *javaidx.File {
	return &javaidx.File{
		FormatVersion:    605,
		ContentSize:      2048,
		ModificationTime: time.Date(2013, 5, 7, 11, 37, 54, 432000000, time.UTC),
		URL:              "http://localhost/applet.jar",
		Headers: []javaidx.Header{
			{Name: "content-length", Value: "2048"},
		},
	}
}

func setup(t *testing.T) string {
	return filepath.Join(t.TempDir(), "test.db")
}

func TestNew(t *testing.T) {
	url := setup(t)

	tests := []struct {
		name    string
		open    func(string) (*Store, error)
		url     string
		wantErr error
	}{
		{"New", New, url, nil},
		{"New existing", New, url, ErrStoreExists},
		{"Open", Open, url, nil},
		{"Open missing", Open, filepath.Join(t.TempDir(), "missing.db"), ErrStoreNotExists},
		{"Memory", New, ":memory:", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := tt.open(tt.url)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			require.NoError(t, store.Close())
		})
	}
}

func TestStore_Insert(t *testing.T) {
	store, err := New(":memory:")
	require.NoError(t, err)
	defer store.Close()

	tests := []struct {
		name    string
		element JSONElement
		want    string
		wantErr bool
	}{
		{"Insert", JSONElement(`{"type": "foo", "name": "foo"}`), "foo--", false},
		{"Insert with id", JSONElement(`{"type": "foo", "id": "foo--1"}`), "foo--1", false},
		{"Insert utmp entry", JSONElement(`{"type": "utmp-entry", "origin": "wtmp", "variant": "linux_libc6_utmp_entry", "offset": 0, "entry_type_name": "EMPTY"}`), "utmp-entry--", false},
		{"Missing type", JSONElement(`{"name": "foo"}`), "", true},
		{"Type field", JSONElement(`{"type": "foo", "foo": 1}`), "", true},
		{"Missing origin", JSONElement(`{"type": "utmp-entry", "variant": "linux_libc6_utmp_entry", "offset": 0, "entry_type_name": "EMPTY"}`), "", true},
		{"Wrong version", JSONElement(`{"type": "java-idx", "origin": "x.idx", "format_version": 604}`), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Insert(tt.element)
			if (err != nil) != tt.wantErr {
				t.Errorf("Insert() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assert.Equal(t, tt.want, got[:len(tt.want)])
		})
	}
}

func TestStore_InsertStruct(t *testing.T) {
	store, err := New(":memory:")
	require.NoError(t, err)
	defer store.Close()

	id, err := store.InsertStruct(UtmpElement("var/log/wtmp", utmp.Linux, testEntry("root")))
	require.NoError(t, err)

	element, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "utmp-entry", gjson.GetBytes(element, "type").String())
	assert.Equal(t, "root", gjson.GetBytes(element, "username").String())
	assert.Equal(t, "USER_PROCESS", gjson.GetBytes(element, "entry_type_name").String())
	assert.Equal(t, "10.0.0.1", gjson.GetBytes(element, "ip_address").String())
	assert.Equal(t, "2013-05-07T11:37:54Z", gjson.GetBytes(element, "timestamp").String())
	assert.Equal(t, int64(1234), gjson.GetBytes(element, "pid").Int())
	assert.False(t, gjson.GetBytes(element, "errors").Exists())

	id, err = store.InsertStruct(JavaIDXElement("cache/6.0/1/abc.idx", testIDX()))
	require.NoError(t, err)
	element, err = store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, int64(605), gjson.GetBytes(element, "format_version").Int())
	assert.Equal(t, "content-length: 2048", gjson.GetBytes(element, "http_headers.0").String())
	assert.Equal(t, "2013-05-07T11:37:54.432Z", gjson.GetBytes(element, "modification_time").String())
	assert.False(t, gjson.GetBytes(element, "download_time").Exists())

	_, err = store.Get("java-idx--16b02a2b-d1a1-4e79-aad6-2f2c1c286818")
	assert.True(t, errors.Is(err, ErrElementNotExists))

	_, err = store.InsertStruct(struct{ Type, Origin string }{"utmp-entry", "wtmp"})
	assert.Error(t, err)
}

func TestStore_Select(t *testing.T) {
	store, err := New(":memory:")
	require.NoError(t, err)
	defer store.Close()

	var elements []interface{}
	for _, username := range []string{"root", "reboot", "admin"} {
		elements = append(elements, UtmpElement("wtmp", utmp.Linux, testEntry(username)))
	}
	elements = append(elements, JavaIDXElement("1.idx", testIDX()))
	ids, err := store.InsertStructBatch(elements)
	require.NoError(t, err)
	require.Len(t, ids, 4)

	tests := []struct {
		name        string
		elementType string
		conditions  []map[string]string
		want        int
	}{
		{"all entries", "utmp-entry", nil, 3},
		{"one user", "utmp-entry", []map[string]string{{"username": "root"}}, 1},
		{"like", "utmp-entry", []map[string]string{{"username": "r%"}}, 2},
		{"or", "utmp-entry", []map[string]string{{"username": "root"}, {"username": "admin"}}, 2},
		{"and", "utmp-entry", []map[string]string{{"username": "root", "terminal": "tty1"}}, 0},
		{"idx", "java-idx", []map[string]string{{"url": "%applet.jar"}}, 1},
		{"unknown type", "file", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Select(tt.elementType, tt.conditions)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}

	all, err := store.All()
	require.NoError(t, err)
	assert.Len(t, all, 4)

	found, err := store.Search("reboot")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	flaws, err := store.Validate()
	require.NoError(t, err)
	assert.Empty(t, flaws)
}

func TestStore_Views(t *testing.T) {
	url := setup(t)

	store, err := New(url)
	require.NoError(t, err)
	_, err = store.InsertStruct(UtmpElement("wtmp", utmp.Linux, testEntry("root")))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(url)
	require.NoError(t, err)
	defer store.Close()

	assert.True(t, store.types.has("utmp-entry", "username"))
	assert.False(t, store.types.changed)

	stmt, err := store.conn.Prepare("SELECT username, pid FROM 'utmp-entry'")
	require.NoError(t, err)
	hasRow, err := stmt.Step()
	require.NoError(t, err)
	require.True(t, hasRow)
	assert.Equal(t, "root", stmt.GetText("username"))
	assert.Equal(t, int64(1234), stmt.GetInt64("pid"))
	require.NoError(t, stmt.Finalize())
}
