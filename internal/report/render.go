/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/HamedShams/linear-pulse/internal/domain"
)

// MentionFunc maps an assignee email to a chat mention. ok=false means no mention is known.
type MentionFunc func(email string) (mention string, ok bool)

// MentionsFromMap builds a MentionFunc over pre-resolved mentions.
func MentionsFromMap(m map[string]string) MentionFunc {
	return func(email string) (string, bool) {
		v, ok := m[email]
		return v, ok && v != ""
	}
}

type Renderer struct {
	opts Options
}

func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Render builds the full report text. Output depends only on the arguments.
func (r *Renderer) Render(issues []domain.Issue, completions map[string]int, inProgress map[string]domain.Load, now time.Time, mention MentionFunc) string {
	doc := &document{}
	g := r.opts.Glyphs
	who := func(email string) string {
		if mention != nil {
			if m, ok := mention(email); ok {
				return m
			}
		}
		return email
	}

	doc.add("", words(g.Banner, fmt.Sprintf("*%s: %s*", r.opts.Title, now.Format("2006-01-02")), g.Banner))
	doc.add(fmt.Sprintf("*%s*", words(g.Done, "Completed in the last 24 hours")), r.completionLines(completions, who)...)
	doc.add(fmt.Sprintf("*%s*", words(g.Waiting, "In progress (least loaded first)")), r.loadLines(inProgress, who)...)

	blocks := r.engineerBlocks(issues, completions, inProgress, now, who)
	if len(blocks) == 0 {
		doc.add("*Per-engineer breakdown*", r.opts.NoActivity)
	} else {
		doc.add("*Per-engineer breakdown*")
		doc.sections = append(doc.sections, blocks...)
	}
	return doc.String()
}

// completionLines orders by count descending, then email ascending.
func (r *Renderer) completionLines(completions map[string]int, who func(string) string) []string {
	if len(completions) == 0 {
		return []string{r.opts.NoCompletions}
	}
	pairs := make([]Pair, 0, len(completions))
	for email, n := range completions {
		pairs = append(pairs, Pair{Key: email, Value: float64(n)})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Value != pairs[j].Value {
			return pairs[i].Value > pairs[j].Value
		}
		return pairs[i].Key < pairs[j].Key
	})
	g := r.opts.Glyphs
	lines := make([]string, 0, len(pairs))
	for _, p := range Rank(pairs) {
		lines = append(lines, words(g.Bullet, g.medal(p.Medal), who(p.Key), repeatGlyph(g.Done, completions[p.Key])))
	}
	return lines
}

// loadLines orders by cumulative open time ascending, then email ascending.
func (r *Renderer) loadLines(inProgress map[string]domain.Load, who func(string) string) []string {
	if len(inProgress) == 0 {
		return []string{r.opts.NoInProgress}
	}
	pairs := make([]Pair, 0, len(inProgress))
	for email, l := range inProgress {
		pairs = append(pairs, Pair{Key: email, Value: l.TotalDays})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Value != pairs[j].Value {
			return pairs[i].Value < pairs[j].Value
		}
		return pairs[i].Key < pairs[j].Key
	})
	g := r.opts.Glyphs
	lines := make([]string, 0, len(pairs))
	for _, p := range Rank(pairs) {
		l := inProgress[p.Key]
		lines = append(lines, words(
			g.Bullet,
			g.medal(p.Medal),
			who(p.Key)+":",
			fmt.Sprintf("%s, %.1f days", issueCount(l.Count), l.TotalDays),
			glyphBar(g.Waiting, l.TotalDays, r.opts.LoadGlyphDivisor),
		))
	}
	return lines
}

// engineerBlocks orders assignees by cumulative open time descending, then recent completions
// descending, then email ascending.
func (r *Renderer) engineerBlocks(issues []domain.Issue, completions map[string]int, inProgress map[string]domain.Load, now time.Time, who func(string) string) []section {
	emails := make([]string, 0, len(completions)+len(inProgress))
	seen := map[string]bool{}
	for e := range completions {
		if !seen[e] {
			seen[e] = true
			emails = append(emails, e)
		}
	}
	for e := range inProgress {
		if !seen[e] {
			seen[e] = true
			emails = append(emails, e)
		}
	}
	sort.Slice(emails, func(i, j int) bool {
		a, b := emails[i], emails[j]
		if inProgress[a].TotalDays != inProgress[b].TotalDays {
			return inProgress[a].TotalDays > inProgress[b].TotalDays
		}
		if completions[a] != completions[b] {
			return completions[a] > completions[b]
		}
		return a < b
	})

	done := map[string][]domain.Issue{}
	open := map[string][]domain.Issue{}
	for _, iss := range issues {
		switch {
		case iss.IsOpen():
			open[iss.AssigneeEmail] = append(open[iss.AssigneeEmail], iss)
		case inWindow(iss, now):
			done[iss.AssigneeEmail] = append(done[iss.AssigneeEmail], iss)
		}
	}

	g := r.opts.Glyphs
	blocks := make([]section, 0, len(emails))
	for _, email := range emails {
		var lines []string
		if d := done[email]; len(d) > 0 {
			sort.SliceStable(d, func(i, j int) bool {
				if !d[i].CompletedAt.Equal(*d[j].CompletedAt) {
					return d[i].CompletedAt.After(*d[j].CompletedAt)
				}
				return d[i].Identifier < d[j].Identifier
			})
			lines = append(lines, "_Completed_")
			for _, iss := range d {
				lines = append(lines, words(g.Bullet,
					fmt.Sprintf("%s: %s (took %s)", escape(iss.Identifier), escape(iss.Title), FormatDuration(iss.Duration(now))),
					g.Done))
			}
		}
		if o := open[email]; len(o) > 0 {
			sort.SliceStable(o, func(i, j int) bool {
				di, dj := o[i].Duration(now), o[j].Duration(now)
				if di != dj {
					return di > dj
				}
				return o[i].Identifier < o[j].Identifier
			})
			lines = append(lines, "_In progress_")
			for _, iss := range o {
				days := iss.Duration(now)
				lines = append(lines, words(g.Bullet,
					fmt.Sprintf("%s: %s (open %s)", escape(iss.Identifier), escape(iss.Title), FormatDuration(days)),
					glyphBar(g.Waiting, days, r.opts.IssueGlyphDivisor)))
			}
		}
		blocks = append(blocks, section{title: fmt.Sprintf("*%s*", who(email)), lines: lines})
	}
	return blocks
}

// FormatDuration renders days as "N.N days" when at least one day, otherwise as hours.
func FormatDuration(days float64) string {
	if days >= 1 {
		return fmt.Sprintf("%.1f days", days)
	}
	return fmt.Sprintf("%.1f hours", days*24)
}

// glyphBar repeats glyph floor(value/divisor) times, capped at MaxGlyphs; non-positive counts
// give "".
func glyphBar(glyph string, value, divisor float64) string {
	if divisor <= 0 {
		return ""
	}
	n := math.Floor(value / divisor)
	if n <= 0 || math.IsNaN(n) {
		return ""
	}
	return repeatGlyph(glyph, int(math.Min(n, MaxGlyphs)))
}

func repeatGlyph(glyph string, n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(glyph, min(n, MaxGlyphs))
}

var mrkdwn = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escape makes issue text safe for Slack mrkdwn. Mentions are built elsewhere and never pass
// through here.
func escape(s string) string { return mrkdwn.Replace(s) }

func issueCount(n int) string {
	if n == 1 {
		return "1 issue"
	}
	return fmt.Sprintf("%d issues", n)
}
