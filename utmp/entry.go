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
	"fmt"
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/forensicanalysis/dtfabric"
)

var linuxTypes = map[int64]string{ // nolint:gochecknoglobals
	0: "EMPTY",
	1: "RUN_LVL",
	2: "BOOT_TIME",
	3: "NEW_TIME",
	4: "OLD_TIME",
	5: "INIT_PROCESS",
	6: "LOGIN_PROCESS",
	7: "USER_PROCESS",
	8: "DEAD_PROCESS",
	9: "ACCOUNTING",
}

var macOSXTypes = map[int64]string{ // nolint:gochecknoglobals
	0:  "EMPTY",
	1:  "RUN_LVL",
	2:  "BOOT_TIME",
	3:  "OLD_TIME",
	4:  "NEW_TIME",
	5:  "INIT_PROCESS",
	6:  "LOGIN_PROCESS",
	7:  "USER_PROCESS",
	8:  "DEAD_PROCESS",
	9:  "ACCOUNTING",
	10: "SIGNATURE",
	11: "SHUTDOWN_TIME",
}

// Entry is one decoded login record.
type Entry struct {
	Offset             int64     `json:"offset"`
	Type               int64     `json:"type"`
	TypeName           string    `json:"type_name"`
	PID                int64     `json:"pid"`
	Terminal           string    `json:"terminal"`
	TerminalIdentifier int64     `json:"terminal_identifier"`
	Username           string    `json:"username"`
	Hostname           string    `json:"hostname"`
	Timestamp          time.Time `json:"timestamp"`

	// Linux only
	TerminationStatus int64  `json:"termination_status,omitempty"`
	ExitStatus        int64  `json:"exit_status,omitempty"`
	Session           int64  `json:"session,omitempty"`
	IPAddress         net.IP `json:"ip_address,omitempty"`

	Warnings []string         `json:"warnings,omitempty"`
	Record   *dtfabric.Record `json:"-"`
}

// intField binds a record member to the Entry field it is copied to.
type intField struct {
	name   string
	target *int64
}

func newEntry(variant Variant, record *dtfabric.Record, offset int64) (*Entry, error) {
	e := &Entry{Offset: offset, Record: record}
	var timestamp, microseconds int64
	ints := []intField{
		{"type", &e.Type},
		{"pid", &e.PID},
		{"terminal_identifier", &e.TerminalIdentifier},
		{"timestamp", &timestamp},
		{"microseconds", &microseconds},
	}
	if variant == Linux {
		ints = append(ints,
			intField{"termination_status", &e.TerminationStatus},
			intField{"exit_status", &e.ExitStatus},
			intField{"session", &e.Session},
		)
	}
	for _, field := range ints {
		v, err := record.Int(field.name)
		if err != nil {
			return nil, err
		}
		*field.target = v
	}
	e.Timestamp = time.Unix(timestamp, microseconds*int64(time.Microsecond)).UTC()

	texts := []struct {
		name   string
		target *string
	}{
		{"terminal", &e.Terminal},
		{"username", &e.Username},
		{"hostname", &e.Hostname},
	}
	for _, field := range texts {
		s, err := text(record, field.name)
		if err != nil {
			return nil, err
		}
		*field.target = s
	}

	names := macOSXTypes
	if variant == Linux {
		names = linuxTypes
		address, err := record.Bytes("ip_address")
		if err != nil {
			return nil, err
		}
		e.IPAddress = ipAddress(address)
	}
	e.TypeName = names[e.Type]
	if e.TypeName == "" {
		e.TypeName = fmt.Sprintf("UNKNOWN_%d", e.Type)
	}

	e.Warnings = record.Warnings()
	return e, nil
}

// text trims the trailing NUL bytes of a fixed-size stream and decodes the
// rest as ASCII. NUL bytes before the last non-NUL byte are kept.
func text(record *dtfabric.Record, name string) (string, error) {
	b, err := record.Bytes(name)
	if err != nil {
		return "", err
	}
	s, err := dtfabric.DecodeASCII(bytes.TrimRight(b, "\x00"))
	if err != nil {
		record.AddWarning(errors.Wrap(err, name))
	}
	return s, nil
}

// ipAddress interprets the 16 byte ut_addr_v6 field. IPv4 addresses only use
// the first four bytes.
func ipAddress(b []byte) net.IP {
	if len(b) != net.IPv6len {
		return nil
	}
	if isZero(b) {
		return nil
	}
	if isZero(b[net.IPv4len:]) {
		return net.IPv4(b[0], b[1], b[2], b[3])
	}
	ip := make(net.IP, net.IPv6len)
	copy(ip, b)
	return ip
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
