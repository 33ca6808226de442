/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/HamedShams/linear-pulse/internal/config"
	"github.com/HamedShams/linear-pulse/internal/domain"
	"github.com/HamedShams/linear-pulse/internal/report"
	"github.com/HamedShams/linear-pulse/internal/repo"
)

var ErrRunInProgress = errors.New("report run already in progress")

type IssueSource interface {
	StartedIssues(ctx context.Context) (map[string]any, error)
	RecentCompletions(ctx context.Context, since time.Time) (map[string]any, error)
}

type Notifier interface {
	PostMessage(ctx context.Context, channel, text string) error
}

type MentionResolver interface {
	Resolve(ctx context.Context, emails []string) map[string]string
}

// RunLedger records report runs and serializes them across processes. *repo.Repository
// satisfies it.
type RunLedger interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(context.Context) error, ok bool, err error)
	StartJobRun(ctx context.Context, channel string, dryRun bool) (int64, error)
	FinishJobRun(ctx context.Context, id int64, issuesScanned, chunksPosted int, success bool, errStr string) error
	GetLastRun(ctx context.Context) (*domain.Run, error)
}

type RunOptions struct {
	DryRun  bool
	Channel string
}

type Service struct {
	cfg      config.Config
	log      zerolog.Logger
	linear   IssueSource
	slack    Notifier
	mentions MentionResolver
	ledger   RunLedger

	normalizer *report.Normalizer
	renderer   *report.Renderer
	now        func() time.Time

	running sync.Mutex
	mu      sync.Mutex
	last    *domain.Run
}

// New wires a Service. mentions and ledger may be nil.
func New(cfg config.Config, log zerolog.Logger, opts report.Options, linear IssueSource, slack Notifier, mentions MentionResolver, ledger RunLedger) *Service {
	return &Service{
		cfg:        cfg,
		log:        log,
		linear:     linear,
		slack:      slack,
		mentions:   mentions,
		ledger:     ledger,
		normalizer: report.NewNormalizer(log),
		renderer:   report.NewRenderer(opts),
		now:        time.Now,
	}
}

// RunReport builds the report and posts it to the channel in chunks. With DryRun set nothing is
// posted. The rendered report is returned either way.
func (s *Service) RunReport(ctx context.Context, opts RunOptions) (string, error) {
	channel := strings.TrimSpace(opts.Channel)
	if channel == "" {
		channel = s.cfg.SlackChannel
	}
	if !s.running.TryLock() {
		return "", ErrRunInProgress
	}
	defer s.running.Unlock()

	if s.ledger != nil {
		unlock, ok, err := s.ledger.TryAdvisoryLock(ctx, repo.ReportLockKey)
		if err != nil {
			return "", fmt.Errorf("report: lock: %w", err)
		}
		if !ok {
			s.log.Info().Msg("report: already running elsewhere")
			return "", ErrRunInProgress
		}
		defer func() {
			if err := unlock(context.Background()); err != nil {
				s.log.Error().Err(err).Msg("report: unlock failed")
			}
		}()
	}

	run := &domain.Run{StartedAt: s.now().UTC(), Channel: channel, DryRun: opts.DryRun}
	if s.ledger != nil {
		id, err := s.ledger.StartJobRun(ctx, channel, opts.DryRun)
		if err != nil {
			s.log.Error().Err(err).Msg("start job run failed")
		}
		run.ID = id
	}

	s.log.Info().Str("channel", channel).Bool("dry_run", opts.DryRun).Msg("report: start")
	text, scanned, err := s.build(ctx)
	run.IssuesScanned = scanned
	if err == nil {
		run.ChunksPosted, err = s.deliver(ctx, channel, text, opts.DryRun)
	}
	s.finish(run, err)
	if err != nil {
		s.log.Error().Err(err).Msg("report: failed")
		return text, err
	}
	s.log.Info().Int("issues", scanned).Int("chunks", run.ChunksPosted).Msg("report: done")
	return text, nil
}

// Preview renders the current report without posting or recording a run.
func (s *Service) Preview(ctx context.Context) (string, error) {
	text, _, err := s.build(ctx)
	return text, err
}

// LastRun returns the newest recorded run, or nil when there is none.
func (s *Service) LastRun(ctx context.Context) (*domain.Run, error) {
	if s.ledger != nil {
		return s.ledger.GetLastRun(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil, nil
	}
	cp := *s.last
	return &cp, nil
}

func (s *Service) build(ctx context.Context) (string, int, error) {
	now := s.now().In(s.cfg.Location())
	started, err := s.linear.StartedIssues(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("fetch started issues: %w", err)
	}
	completed, err := s.linear.RecentCompletions(ctx, now.Add(-report.Window))
	if err != nil {
		return "", 0, fmt.Errorf("fetch recent completions: %w", err)
	}
	issues := s.normalizer.Normalize(started, completed)
	agg := report.Aggregate(issues, now)

	var mentions map[string]string
	if s.mentions != nil {
		mentions = s.mentions.Resolve(ctx, assignees(issues))
	}
	text := s.renderer.Render(issues, agg.Completions, agg.InProgress, now, report.MentionsFromMap(mentions))
	return text, len(issues), nil
}

func (s *Service) deliver(ctx context.Context, channel, text string, dryRun bool) (int, error) {
	if dryRun {
		return 0, nil
	}
	posted := 0
	for _, part := range report.Chunk(text, s.cfg.ChunkSize) {
		if err := s.slack.PostMessage(ctx, channel, part); err != nil {
			return posted, err
		}
		posted++
	}
	return posted, nil
}

func (s *Service) finish(run *domain.Run, err error) {
	fin := s.now().UTC()
	run.FinishedAt = &fin
	run.Success = err == nil
	if err != nil {
		run.Error = err.Error()
	}
	if s.ledger != nil && run.ID != 0 {
		if ferr := s.ledger.FinishJobRun(context.Background(), run.ID, run.IssuesScanned, run.ChunksPosted, run.Success, run.Error); ferr != nil {
			s.log.Error().Err(ferr).Int64("run", run.ID).Msg("finish job run failed")
		}
	}
	s.mu.Lock()
	s.last = run
	s.mu.Unlock()
}

func assignees(issues []domain.Issue) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(issues))
	for _, iss := range issues {
		if !seen[iss.AssigneeEmail] {
			seen[iss.AssigneeEmail] = true
			out = append(out, iss.AssigneeEmail)
		}
	}
	sort.Strings(out)
	return out
}
