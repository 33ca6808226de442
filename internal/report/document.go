/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package report

import "strings"

type section struct {
	title string
	lines []string
}

// document collects sections in order and serializes them once.
// Sections are separated by a blank line; lines within a section by a single newline.
type document struct {
	sections []section
}

func (d *document) add(title string, lines ...string) {
	d.sections = append(d.sections, section{title: title, lines: lines})
}

func (d *document) String() string {
	parts := make([]string, 0, len(d.sections))
	for _, s := range d.sections {
		rows := make([]string, 0, len(s.lines)+1)
		if s.title != "" {
			rows = append(rows, s.title)
		}
		rows = append(rows, s.lines...)
		parts = append(parts, strings.Join(rows, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

// words joins the non-empty parts with single spaces.
func words(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
