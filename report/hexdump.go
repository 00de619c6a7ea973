// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package report

import (
	"fmt"
	"strings"
)

// BytesPerLine is the number of values rendered on each hex dump row.
const BytesPerLine = 16

const separator = "-------------------------"

// HexDump renders data as a labeled dump of 0xHH values, BytesPerLine per
// row.
func HexDump(label string, data []byte) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "%s (%d bytes):\n", label, len(data))
	buf.WriteString(separator + "\n")

	for i, b := range data {
		fmt.Fprintf(&buf, "0x%02X", b)

		switch {
		case (i+1)%BytesPerLine == 0 || i == len(data)-1:
			buf.WriteByte('\n')
		default:
			buf.WriteByte(' ')
		}
	}

	return buf.String()
}
