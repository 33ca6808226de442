/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package report

import (
	"strings"
	"time"

	"github.com/HamedShams/linear-pulse/internal/domain"
	"github.com/rs/zerolog"
)

// Normalizer turns decoded query results into Issue values.
type Normalizer struct {
	log zerolog.Logger
}

func NewNormalizer(log zerolog.Logger) *Normalizer {
	return &Normalizer{log: log}
}

// Normalize returns the valid started issues followed by the valid completed issues, each half in
// input order. It never fails: a result without a node collection yields no issues and a warning.
func (n *Normalizer) Normalize(started, completed map[string]any) []domain.Issue {
	out := make([]domain.Issue, 0)
	out = append(out, n.half("started", started, false)...)
	out = append(out, n.half("completed", completed, true)...)
	return out
}

func (n *Normalizer) half(name string, result map[string]any, needCompleted bool) []domain.Issue {
	nodes, ok := resultNodes(result)
	if !ok {
		n.log.Warn().Str("set", name).Msg("normalize: result has no issue nodes")
		return nil
	}
	out := make([]domain.Issue, 0, len(nodes))
	for _, raw := range nodes {
		node, _ := raw.(map[string]any)
		if node == nil {
			continue
		}
		iss, ok := nodeIssue(node, needCompleted)
		if !ok {
			continue
		}
		if InvertedSpan(iss) {
			n.log.Warn().Str("identifier", iss.Identifier).
				Time("started_at", iss.StartedAt).Time("completed_at", *iss.CompletedAt).
				Msg("normalize: completed before started, skipped")
			continue
		}
		out = append(out, iss)
	}
	return out
}

// InvertedSpan reports an issue completed before it was started. Such issues are dropped by the
// normalizer rather than clamped to a zero duration.
func InvertedSpan(iss domain.Issue) bool {
	return iss.CompletedAt != nil && iss.CompletedAt.Before(iss.StartedAt)
}

// resultNodes accepts either {"issues": {"nodes": [...]}} or {"nodes": [...]}.
func resultNodes(result map[string]any) ([]any, bool) {
	if result == nil {
		return nil, false
	}
	if conn, ok := result["issues"].(map[string]any); ok {
		nodes, ok := conn["nodes"].([]any)
		return nodes, ok
	}
	nodes, ok := result["nodes"].([]any)
	return nodes, ok
}

func nodeIssue(node map[string]any, needCompleted bool) (domain.Issue, bool) {
	title, _ := node["title"].(string)
	ident, _ := node["identifier"].(string)
	email := ""
	if as, ok := node["assignee"].(map[string]any); ok {
		email = str(as["email"])
	}
	startedAt := ParseTimestamp(node["startedAt"])
	if blank(title) || blank(ident) || email == "" || startedAt == nil {
		return domain.Issue{}, false
	}
	completedAt := ParseTimestamp(node["completedAt"])
	if needCompleted && completedAt == nil {
		return domain.Issue{}, false
	}
	return domain.NewIssue(title, ident, email, *startedAt, completedAt), true
}

// ParseTimestamp parses an ISO-8601 string, rewriting a trailing Z to +00:00 first.
// Anything else (nil, non-string, bad layout) is treated as absent.
func ParseTimestamp(v any) *time.Time {
	s, _ := v.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "z") {
		s = s[:len(s)-1] + "+00:00"
	}
	layouts := []string{time.RFC3339Nano, "2006-01-02T15:04:05.000-0700", "2006-01-02T15:04:05-0700"}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			tt := t.UTC()
			return &tt
		}
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
