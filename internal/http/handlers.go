/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/HamedShams/linear-pulse/internal/config"
	"github.com/HamedShams/linear-pulse/internal/domain"
	"github.com/HamedShams/linear-pulse/internal/services"
)

type Service interface {
	RunReport(ctx context.Context, opts services.RunOptions) (string, error)
	Preview(ctx context.Context) (string, error)
	LastRun(ctx context.Context) (*domain.Run, error)
}

type Handlers struct {
	cfg config.Config
	log zerolog.Logger
	svc Service
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc Service) *Handlers {
	return &Handlers{cfg: cfg, log: log, svc: svc}
}

func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) LastRun(c *gin.Context) {
	lr, err := h.svc.LastRun(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if lr == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no runs recorded"})
		return
	}
	c.JSON(http.StatusOK, lr)
}

// Preview renders the report as plain text without posting it.
func (h *Handlers) Preview(c *gin.Context) {
	text, err := h.svc.Preview(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("preview failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.String(http.StatusOK, text)
}

// RunNow queues a report run. Optional query params: channel, dry_run.
func (h *Handlers) RunNow(c *gin.Context) {
	opts := services.RunOptions{Channel: c.Query("channel")}
	if v := c.Query("dry_run"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dry_run must be a boolean"})
			return
		}
		opts.DryRun = b
	}
	// Detached from the request so the run outlives the response.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.cfg.RunTimeout)
		defer cancel()
		if _, err := h.svc.RunReport(ctx, opts); err != nil {
			h.log.Error().Err(err).Msg("admin run failed")
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
