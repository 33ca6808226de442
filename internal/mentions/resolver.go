/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package mentions

import (
	"context"

	"github.com/rs/zerolog"
)

// Directory turns an email into a chat mention.
type Directory interface {
	MentionFor(ctx context.Context, email string) (string, error)
}

// Resolver resolves assignee emails through a Cache backed by a Directory.
type Resolver struct {
	dir   Directory
	cache Cache
	log   zerolog.Logger
}

func NewResolver(dir Directory, cache Cache, log zerolog.Logger) *Resolver {
	return &Resolver{dir: dir, cache: cache, log: log}
}

// Resolve returns a mention for every email it could resolve. Emails that fail lookup are left
// out so the report falls back to printing the raw address.
func (r *Resolver) Resolve(ctx context.Context, emails []string) map[string]string {
	out := make(map[string]string, len(emails))
	for _, email := range emails {
		if email == "" {
			continue
		}
		if _, done := out[email]; done {
			continue
		}
		if r.cache != nil {
			m, ok, err := r.cache.Get(ctx, email)
			if err != nil {
				r.log.Warn().Err(err).Str("email", email).Msg("mentions: cache get failed")
			} else if ok {
				out[email] = m
				continue
			}
		}
		if r.dir == nil {
			continue
		}
		m, err := r.dir.MentionFor(ctx, email)
		if err != nil {
			r.log.Warn().Err(err).Str("email", email).Msg("mentions: lookup failed, using email")
			continue
		}
		out[email] = m
		if r.cache != nil {
			if err := r.cache.Set(ctx, email, m); err != nil {
				r.log.Warn().Err(err).Str("email", email).Msg("mentions: cache set failed")
			}
		}
	}
	return out
}
