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

// Package dtfabric decodes binary data with declarative data type
// definitions.
//
// Definitions
//
// Data types are described in multi-document YAML and compiled into a
// Catalog once, usually into a package-level variable:
//     name: java_idx_http_header
//     type: structure
//     attributes:
//       byte_order: big-endian
//     members:
//     - name: name_size
//       data_type: uint16
//     - name: name
//       type: string
//       encoding: ascii
//       element_data_type: char
//       elements_data_size: name_size
//
// Supported kinds are integer, boolean, character, stream, sequence, string
// and structure. The size of a stream, sequence or string is either a literal
// or the value of a preceding member of the same structure.
//
// Decoding
//
// Catalog.Decode walks a Cursor through the members of a structure and
// returns a Record with the decoded values in definition order. Truncated
// data and unresolvable size references stop decoding and are returned
// together with the members decoded so far. Invalid boolean values and
// non-ASCII characters are replaced and kept as warnings on the record.
//
// The utmp and javaidx subpackages decode login records and Java WebStart
// cache index files with this package.
package dtfabric
