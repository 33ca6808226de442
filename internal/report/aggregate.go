/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package report

import (
	"time"

	"github.com/HamedShams/linear-pulse/internal/domain"
)

// Window is the trailing period, measured back from now, in which a completion counts as recent.
const Window = 24 * time.Hour

// Aggregates holds the per-assignee summaries for one run, keyed by assignee email.
type Aggregates struct {
	Completions map[string]int
	InProgress  map[string]domain.Load
}

// Aggregate counts recent completions and sums open-issue load per assignee.
// now is supplied by the caller; nothing here reads the clock.
func Aggregate(issues []domain.Issue, now time.Time) Aggregates {
	agg := Aggregates{
		Completions: map[string]int{},
		InProgress:  map[string]domain.Load{},
	}
	for _, iss := range issues {
		if iss.CompletedAt != nil {
			if inWindow(iss, now) {
				agg.Completions[iss.AssigneeEmail]++
			}
			continue
		}
		l := agg.InProgress[iss.AssigneeEmail]
		l.Count++
		l.TotalDays += iss.Duration(now)
		agg.InProgress[iss.AssigneeEmail] = l
	}
	return agg
}

func inWindow(iss domain.Issue, now time.Time) bool {
	return iss.CompletedAt != nil && now.Sub(*iss.CompletedAt) <= Window
}
