/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package slack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/HamedShams/linear-pulse/internal/config"
)

// Client posts reports to a channel and resolves assignee emails to Slack mentions.
type Client struct {
	api *slack.Client
	log zerolog.Logger
}

func NewClient(token string, cfg config.Config, log zerolog.Logger) *Client {
	opts := []slack.Option{slack.OptionHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout})}
	if u := strings.TrimSpace(cfg.SlackAPIURL); u != "" {
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		opts = append(opts, slack.OptionAPIURL(u))
	}
	return &Client{api: slack.New(token, opts...), log: log}
}

// PostMessage sends text to channel as a plain mrkdwn message.
func (c *Client) PostMessage(ctx context.Context, channel, text string) error {
	if channel == "" {
		return errors.New("slack: missing channel")
	}
	_, ts, err := c.api.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	if err != nil {
		c.log.Error().Err(err).Str("channel", channel).Msg("slack: post failed")
		return fmt.Errorf("slack: post to %s: %w", channel, err)
	}
	c.log.Info().Str("channel", channel).Str("ts", ts).Msg("slack: message sent")
	return nil
}

// MentionFor looks up a workspace user by email and returns a <@ID> mention.
func (c *Client) MentionFor(ctx context.Context, email string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", errors.New("slack: empty email")
	}
	u, err := c.api.GetUserByEmailContext(ctx, email)
	if err != nil {
		return "", fmt.Errorf("slack: lookup %s: %w", email, err)
	}
	if u == nil || u.ID == "" {
		return "", fmt.Errorf("slack: lookup %s: no user id", email)
	}
	return "<@" + u.ID + ">", nil
}
