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

// Package main implements the dtfabric command line tool that decodes
// utmp and Java IDX artifacts and optionally keeps them in an element
// store.
//     utmp      Decode utmp, wtmp, btmp and utmpx files
//     javaidx   Decode Java WebStart and applet cache index files
//     element   Read elements from a store (get, select, all, validate)
//
// Usage
//
// Decode login records
//     dtfabric utmp /var/log/wtmp /var/log/wtmp.1.gz
//     dtfabric utmp --variant macosx --format cbor /var/run/utmpx > utmpx.cbor
// Decode a Java cache and keep the results
//     dtfabric javaidx --store cache.db 'deployment/cache/**/*.idx'
//     dtfabric element select java-idx --filter url=%.jar cache.db
package main

import (
	"fmt"
	"os"

	"github.com/forensicanalysis/dtfabric/cmd"
)

func main() {
	if err := cmd.Root().Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
