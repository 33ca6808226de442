/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package linear

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/HamedShams/linear-pulse/internal/config"
)

const (
	QueryStartedIssues     = "started_issues"
	QueryRecentCompletions = "recent_completions"
)

var (
	ErrUnknownQuery      = errors.New("linear: unknown query")
	ErrMalformedResponse = errors.New("linear: malformed response")
)

//go:embed queries/*.graphql
var queryFS embed.FS

// Client runs named GraphQL queries against the Linear API.
type Client struct {
	url      string
	key      string
	pageSize int
	http     *http.Client
	log      zerolog.Logger
	queries  map[string]string
	backoff  time.Duration
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
	pageSize := cfg.LinearPageSize
	if pageSize <= 0 || pageSize > 250 {
		pageSize = 250
	}
	return &Client{
		url:      cfg.LinearAPIURL,
		key:      cfg.LinearAPIKey,
		pageSize: pageSize,
		http:     &http.Client{Timeout: cfg.HTTPTimeout},
		log:      log,
		queries:  loadQueries(),
		backoff:  300 * time.Millisecond,
	}
}

func loadQueries() map[string]string {
	out := map[string]string{}
	entries, _ := queryFS.ReadDir("queries")
	for _, e := range entries {
		b, err := queryFS.ReadFile("queries/" + e.Name())
		if err != nil {
			continue
		}
		out[strings.TrimSuffix(e.Name(), path.Ext(e.Name()))] = string(b)
	}
	return out
}

// Query returns the text of a named query.
func (c *Client) Query(name string) (string, error) {
	q, ok := c.queries[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownQuery, name)
	}
	return q, nil
}

// StartedIssues returns the data object of the started-issues query.
func (c *Client) StartedIssues(ctx context.Context) (map[string]any, error) {
	return c.Execute(ctx, QueryStartedIssues, map[string]any{"first": c.pageSize})
}

// RecentCompletions returns the data object of the completions query for issues completed at or after since.
func (c *Client) RecentCompletions(ctx context.Context, since time.Time) (map[string]any, error) {
	return c.Execute(ctx, QueryRecentCompletions, map[string]any{
		"first": c.pageSize,
		"since": since.UTC().Format(time.RFC3339),
	})
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   map[string]any `json:"data"`
	Errors []gqlError     `json:"errors"`
}

// Execute runs a named query and returns its "data" object. 429 and 5xx responses are retried
// up to three times with exponential backoff.
func (c *Client) Execute(ctx context.Context, name string, vars map[string]any) (map[string]any, error) {
	if c.url == "" {
		return nil, errors.New("linear: empty api url")
	}
	q, err := c.Query(name)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(map[string]any{"query": q, "variables": vars})
	if err != nil {
		return nil, err
	}
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		out, retry, err := c.do(ctx, name, body)
		if err == nil {
			return out, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		c.log.Warn().Err(err).Str("query", name).Int("attempt", attempt+1).Msg("linear: retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.backoff * time.Duration(1<<attempt)):
		}
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, name string, body []byte) (map[string]any, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		req.Header.Set("Authorization", c.key)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("linear: %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("linear: %s: status=%d body=%s", name, resp.StatusCode, strings.TrimSpace(string(b)))
		return nil, resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500, err
	}
	var out gqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, name, err)
	}
	if len(out.Errors) > 0 {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, false, fmt.Errorf("linear: %s: %s", name, strings.Join(msgs, "; "))
	}
	if out.Data == nil {
		return nil, false, fmt.Errorf("%w: %s: no data", ErrMalformedResponse, name)
	}
	c.log.Debug().Str("query", name).Msg("linear: query ok")
	return out.Data, false, nil
}
