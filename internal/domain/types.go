/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package domain

import "time"

// Issue is one tracker issue as it appears in a single report run.
// Values are built by NewIssue and passed by value; nothing mutates them afterwards.
type Issue struct {
	Title         string
	Identifier    string
	AssigneeEmail string
	StartedAt     time.Time
	CompletedAt   *time.Time // nil while the issue is still open
}

// NewIssue copies completedAt so the caller cannot change the issue later through the pointer.
func NewIssue(title, identifier, assigneeEmail string, startedAt time.Time, completedAt *time.Time) Issue {
	var done *time.Time
	if completedAt != nil {
		t := *completedAt
		done = &t
	}
	return Issue{
		Title:         title,
		Identifier:    identifier,
		AssigneeEmail: assigneeEmail,
		StartedAt:     startedAt,
		CompletedAt:   done,
	}
}

func (i Issue) IsOpen() bool { return i.CompletedAt == nil }

// Duration is the elapsed time in days from StartedAt to CompletedAt, or to now for open issues.
// Negative values are returned as-is.
func (i Issue) Duration(now time.Time) float64 {
	end := now
	if i.CompletedAt != nil {
		end = *i.CompletedAt
	}
	return DaysBetween(i.StartedAt, end)
}

// DaysBetween returns (to - from) in fractional days.
func DaysBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24.0
}

// Load is the open-work summary for one assignee.
type Load struct {
	Count     int
	TotalDays float64
}

// Run records one report execution.
type Run struct {
	ID            int64      `json:"id"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
	Channel       string     `json:"channel"`
	IssuesScanned int        `json:"issues_scanned"`
	ChunksPosted  int        `json:"chunks_posted"`
	DryRun        bool       `json:"dry_run"`
	Success       bool       `json:"success"`
	Error         string     `json:"error"`
}
