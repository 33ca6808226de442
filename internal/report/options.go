/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package report

// Glyph divisors. The snapshot shows one waiting glyph per LoadGlyphDivisor days of cumulative
// open time; each open issue shows one per IssueGlyphDivisor days it has been open.
const (
	DefaultLoadGlyphDivisor  = 3.0
	DefaultIssueGlyphDivisor = 2.0
)

// MaxGlyphs caps every repeated glyph run in the report.
const MaxGlyphs = 30

// Glyphs are Slack emoji shortcodes and markup used in the report.
type Glyphs struct {
	First   string `yaml:"first"`
	Second  string `yaml:"second"`
	Third   string `yaml:"third"`
	Done    string `yaml:"done"`
	Waiting string `yaml:"waiting"`
	Bullet  string `yaml:"bullet"`
	Banner  string `yaml:"banner"`
}

// Options control the renderer's text. Divisors <= 0 disable the matching glyph bars.
type Options struct {
	Title             string  `yaml:"title"`
	Glyphs            Glyphs  `yaml:"glyphs"`
	LoadGlyphDivisor  float64 `yaml:"load_glyph_divisor"`
	IssueGlyphDivisor float64 `yaml:"issue_glyph_divisor"`
	NoCompletions     string  `yaml:"no_completions"`
	NoInProgress      string  `yaml:"no_in_progress"`
	NoActivity        string  `yaml:"no_activity"`
}

func DefaultOptions() Options {
	return Options{
		Title: "Engineering Status Report",
		Glyphs: Glyphs{
			First:   ":first_place_medal:",
			Second:  ":second_place_medal:",
			Third:   ":third_place_medal:",
			Done:    ":white_check_mark:",
			Waiting: ":hourglass_flowing_sand:",
			Bullet:  "•",
			Banner:  ":newspaper:",
		},
		LoadGlyphDivisor:  DefaultLoadGlyphDivisor,
		IssueGlyphDivisor: DefaultIssueGlyphDivisor,
		NoCompletions:     "_No issues completed in the last 24 hours._",
		NoInProgress:      "_No issues in progress._",
		NoActivity:        "_No engineer activity to report._",
	}
}

func (g Glyphs) medal(m Medal) string {
	switch m {
	case MedalFirst:
		return g.First
	case MedalSecond:
		return g.Second
	case MedalThird:
		return g.Third
	default:
		return ""
	}
}
