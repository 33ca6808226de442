/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/HamedShams/linear-pulse/internal/domain"
)

// ReportLockKey is the advisory lock held while a report run is in flight.
const ReportLockKey int64 = 0x6c70756c7365 // "lpulse"

type DB struct {
	Pool *pgxpool.Pool
	log  zerolog.Logger
}

// Open connects to dsn and pings the server.
func Open(ctx context.Context, dsn string, log zerolog.Logger) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	ctx2, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(ctx2); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return &DB{Pool: pool, log: log}, nil
}

func (d *DB) Close() { d.Pool.Close() }

type Repository struct {
	db  *DB
	log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

const schema = `
CREATE TABLE IF NOT EXISTS job_runs (
	id             BIGSERIAL PRIMARY KEY,
	started_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at    TIMESTAMPTZ,
	channel        TEXT NOT NULL DEFAULT '',
	dry_run        BOOLEAN NOT NULL DEFAULT false,
	issues_scanned INT,
	chunks_posted  INT,
	success        BOOLEAN NOT NULL DEFAULT false,
	error          TEXT
)`

// EnsureSchema creates the job_runs table when it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx, schema)
	return err
}

// TryAdvisoryLock takes a session-level advisory lock on a dedicated pooled connection. The
// connection is held until unlock is called, so the unlock runs in the same session as the lock.
// When ok is false the connection has already been released and unlock is nil.
func (r *Repository) TryAdvisoryLock(ctx context.Context, key int64) (unlock func(context.Context) error, ok bool, err error) {
	conn, err := r.db.Pool.Acquire(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok); err != nil {
		conn.Release()
		return nil, false, err
	}
	if !ok {
		conn.Release()
		return nil, false, nil
	}
	unlock = func(ctx context.Context) error {
		var released bool
		err := conn.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&released)
		if err != nil {
			// Closing the session is the only other way to drop the lock.
			_ = conn.Conn().Close(ctx)
		}
		conn.Release()
		if !released && err == nil {
			return errors.New("advisory unlock returned false")
		}
		return err
	}
	return unlock, true, nil
}

// Job runs
func (r *Repository) StartJobRun(ctx context.Context, channel string, dryRun bool) (int64, error) {
	const q = `INSERT INTO job_runs(started_at, channel, dry_run, success) VALUES(now(), $1, $2, false) RETURNING id`
	var id int64
	if err := r.db.Pool.QueryRow(ctx, q, channel, dryRun).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *Repository) FinishJobRun(ctx context.Context, id int64, issuesScanned, chunksPosted int, success bool, errStr string) error {
	const q = `UPDATE job_runs SET finished_at=now(), issues_scanned=$2, chunks_posted=$3, success=$4, error=$5 WHERE id=$1`
	_, err := r.db.Pool.Exec(ctx, q, id, issuesScanned, chunksPosted, success, errStr)
	return err
}

// GetLastRun returns the newest job run, or nil when none has been recorded.
func (r *Repository) GetLastRun(ctx context.Context) (*domain.Run, error) {
	const q = `SELECT id, started_at, finished_at, channel, dry_run,
		coalesce(issues_scanned,0), coalesce(chunks_posted,0),
		coalesce(success,false), coalesce(error,'')
		FROM job_runs ORDER BY id DESC LIMIT 1`
	lr := &domain.Run{}
	err := r.db.Pool.QueryRow(ctx, q).Scan(&lr.ID, &lr.StartedAt, &lr.FinishedAt, &lr.Channel, &lr.DryRun,
		&lr.IssuesScanned, &lr.ChunksPosted, &lr.Success, &lr.Error)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return lr, nil
}
