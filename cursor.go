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

package dtfabric

import (
	"github.com/pkg/errors"
)

// Cursor is a read position in an immutable byte buffer. It only moves
// forward.
type Cursor struct {
	data   []byte
	offset int
}

// NewCursor creates a cursor at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Offset returns the number of bytes consumed so far.
func (c *Cursor) Offset() int {
	return c.offset
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.offset
}

// Read consumes exactly n bytes. The returned slice aliases the buffer.
func (c *Cursor) Read(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrTruncatedData, "invalid size %d at offset %d", n, c.offset)
	}
	if n > c.Remaining() {
		return nil, errors.Wrapf(ErrTruncatedData, "need %d bytes at offset %d, %d remaining", n, c.offset, c.Remaining())
	}
	b := c.data[c.offset : c.offset+n]
	c.offset += n
	return b, nil
}

// Skip advances the cursor over n bytes of data that is not decoded.
func (c *Cursor) Skip(n int) error {
	_, err := c.Read(n)
	return err
}

// SkipTo advances the cursor to the absolute offset.
func (c *Cursor) SkipTo(offset int) error {
	if offset < c.offset {
		return errors.Errorf("cannot rewind cursor from %d to %d", c.offset, offset)
	}
	return c.Skip(offset - c.offset)
}
