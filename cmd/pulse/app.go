/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/HamedShams/linear-pulse/internal/adapters/linear"
	"github.com/HamedShams/linear-pulse/internal/adapters/slack"
	"github.com/HamedShams/linear-pulse/internal/config"
	"github.com/HamedShams/linear-pulse/internal/credentials"
	"github.com/HamedShams/linear-pulse/internal/logger"
	"github.com/HamedShams/linear-pulse/internal/mentions"
	"github.com/HamedShams/linear-pulse/internal/repo"
	"github.com/HamedShams/linear-pulse/internal/services"
)

// app holds the wired service and whatever must be closed on exit.
type app struct {
	cfg     config.Config
	log     zerolog.Logger
	svc     *services.Service
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp loads configuration and wires adapters into a Service. A Slack token is only
// required when the report will be posted.
func newApp(ctx context.Context, needSlack bool) (*app, error) {
	cfg := config.Load()
	log := logger.New(cfg)
	a := &app{cfg: cfg, log: log}

	opts, err := cfg.ReportOptions()
	if err != nil {
		return nil, err
	}

	creds := credentials.NewAWSResolver(log)
	cfg.LinearAPIKey, err = creds.Token(ctx, cfg.LinearAPIKey, cfg.LinearSecretID, cfg.LinearSecretKey)
	if err != nil {
		return nil, fmt.Errorf("linear api key: %w", err)
	}
	lc := linear.NewClient(cfg, log)

	var (
		notifier services.Notifier
		resolver services.MentionResolver
	)
	token, err := creds.Token(ctx, cfg.SlackToken, cfg.SlackSecretID, cfg.SlackSecretKey)
	switch {
	case err == nil:
		sc := slack.NewClient(token, cfg, log)
		notifier = sc
		resolver = mentions.NewResolver(sc, a.mentionCache(ctx), log)
	case needSlack:
		a.Close()
		return nil, fmt.Errorf("slack bot token: %w", err)
	default:
		log.Warn().Err(err).Msg("no slack token, mentions disabled")
	}

	var ledger services.RunLedger
	if cfg.DBDSN != "" {
		db, err := repo.Open(ctx, cfg.DBDSN, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		r := repo.NewRepository(db, log)
		if err := r.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		ledger = r
	}

	a.cfg = cfg
	a.svc = services.New(cfg, log, opts, lc, notifier, resolver, ledger)
	return a, nil
}

func (a *app) mentionCache(ctx context.Context) mentions.Cache {
	if a.cfg.RedisURL == "" {
		return mentions.NewMemoryCache(a.cfg.MentionCacheTTL)
	}
	rc, err := mentions.NewRedisCache(ctx, a.cfg.RedisURL, a.cfg.MentionCacheTTL)
	if err != nil {
		a.log.Error().Err(err).Msg("redis unavailable, using in-memory mention cache")
		return mentions.NewMemoryCache(a.cfg.MentionCacheTTL)
	}
	a.closers = append(a.closers, func() { _ = rc.Close() })
	return rc
}
