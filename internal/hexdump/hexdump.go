// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package hexdump formats raw module memory as blocks of hex digits.
package hexdump

import (
	"fmt"
	"strings"
)

const (
	indent        = "       "
	bytesPerGroup = 4
	bytesPerLine  = 16
)

// Lines renders data as lines of 16 bytes in groups of 4, each line indented.
func Lines(data []byte) []string {
	lines := make([]string, 0, (len(data)+bytesPerLine-1)/bytesPerLine)
	for start := 0; start < len(data); start += bytesPerLine {
		end := min(start+bytesPerLine, len(data))
		var sb strings.Builder
		sb.WriteString(indent)
		for i := start; i < end; i++ {
			fmt.Fprintf(&sb, "%02x", data[i])
			if (i-start)%bytesPerGroup == bytesPerGroup-1 || i == end-1 {
				sb.WriteByte(' ')
			}
		}
		lines = append(lines, sb.String())
	}
	return lines
}

// String renders data like Lines, joined with newlines.
func String(data []byte) string {
	lines := Lines(data)
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
