/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package report

import "strings"

// Chunk splits text into pieces of at most max runes, breaking on line boundaries where possible.
// Lines longer than max are hard-split. max <= 0 returns the text unchanged.
func Chunk(s string, max int) []string {
	if max <= 0 {
		return []string{s}
	}
	var chunks []string
	var cur []string
	curlen := 0
	flush := func() {
		chunks = append(chunks, strings.Join(cur, "\n"))
		cur = cur[:0]
		curlen = 0
	}
	for _, ln := range strings.Split(s, "\n") {
		r := []rune(ln)
		if len(r) > max {
			if len(cur) > 0 {
				flush()
			}
			for i := 0; i < len(r); i += max {
				j := min(i+max, len(r))
				chunks = append(chunks, string(r[i:j]))
			}
			continue
		}
		if len(cur) > 0 && curlen+1+len(r) > max {
			flush()
		}
		if len(cur) > 0 {
			curlen++
		}
		cur = append(cur, ln)
		curlen += len(r)
	}
	if len(cur) > 0 {
		flush()
	}
	return chunks
}
