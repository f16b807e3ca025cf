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
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/forensicanalysis/dtfabric/javaidx"
	"github.com/forensicanalysis/dtfabric/utmp"
)

// Element types.
const (
	UtmpEntryType = "utmp-entry"
	JavaIDXType   = "java-idx"
)

// JSONElement is a single entry in the database.
type JSONElement []byte

// UtmpEntry is the element stored for one login record.
type UtmpEntry struct {
	ID                 string
	Type               string
	Origin             string
	Variant            string
	Offset             int64
	EntryType          int64
	EntryTypeName      string
	PID                int64
	Terminal           string
	TerminalIdentifier int64
	Username           string
	Hostname           string
	Timestamp          string
	TerminationStatus  int64
	ExitStatus         int64
	Session            int64
	IPAddress          string
	Errors             []interface{}
}

// UtmpElement converts a decoded entry read from origin.
func UtmpElement(origin string, variant utmp.Variant, entry *utmp.Entry) *UtmpEntry {
	e := &UtmpEntry{
		ID:                 UtmpEntryType + "--" + uuid.New().String(),
		Type:               UtmpEntryType,
		Origin:             origin,
		Variant:            string(variant),
		Offset:             entry.Offset,
		EntryType:          entry.Type,
		EntryTypeName:      entry.TypeName,
		PID:                entry.PID,
		Terminal:           entry.Terminal,
		TerminalIdentifier: entry.TerminalIdentifier,
		Username:           entry.Username,
		Hostname:           entry.Hostname,
		Timestamp:          formatTime(entry.Timestamp),
		TerminationStatus:  entry.TerminationStatus,
		ExitStatus:         entry.ExitStatus,
		Session:            entry.Session,
	}
	if entry.IPAddress != nil {
		e.IPAddress = entry.IPAddress.String()
	}
	for _, warning := range entry.Warnings {
		e.Errors = append(e.Errors, warning)
	}
	return e
}

// AddError adds an error string to a UtmpEntry and returns this UtmpEntry.
func (i *UtmpEntry) AddError(err string) *UtmpEntry {
	log.Print(err)
	i.Errors = append(i.Errors, err)
	return i
}

// JavaIDX is the element stored for one Java cache index file.
type JavaIDX struct {
	ID               string
	Type             string
	Origin           string
	FormatVersion    int64
	BusyFlag         int64
	IncompleteFlag   int64
	ContentSize      int64
	ModificationTime string
	ExpirationTime   string
	ValidationTime   string
	DownloadTime     string
	Version          string
	URL              string
	Namespace        string
	IPAddress        string
	HTTPHeaders      []string
	Errors           []interface{}
}

// JavaIDXElement converts a decoded IDX file read from origin. A file that
// was only partially decoded is converted as far as it was read.
func JavaIDXElement(origin string, f *javaidx.File) *JavaIDX {
	e := &JavaIDX{
		ID:               JavaIDXType + "--" + uuid.New().String(),
		Type:             JavaIDXType,
		Origin:           origin,
		FormatVersion:    int64(f.FormatVersion),
		BusyFlag:         int64(f.BusyFlag),
		IncompleteFlag:   int64(f.IncompleteFlag),
		ContentSize:      int64(f.ContentSize),
		ModificationTime: formatTime(f.ModificationTime),
		ExpirationTime:   formatTime(f.ExpirationTime),
		ValidationTime:   formatTime(f.ValidationTime),
		DownloadTime:     formatTime(f.DownloadTime),
		Version:          f.Version,
		URL:              f.URL,
		Namespace:        f.Namespace,
		IPAddress:        f.IPAddress,
	}
	for _, header := range f.Headers {
		e.HTTPHeaders = append(e.HTTPHeaders, header.Name+": "+header.Value)
	}
	for _, warning := range f.Warnings {
		e.Errors = append(e.Errors, warning)
	}
	return e
}

// AddError adds an error string to a JavaIDX and returns this JavaIDX.
func (i *JavaIDX) AddError(err string) *JavaIDX {
	log.Print(err)
	i.Errors = append(i.Errors, err)
	return i
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
