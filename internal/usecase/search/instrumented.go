package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/esmodel/internal/domain"
	"github.com/kailas-cloud/esmodel/internal/domain/search/result"
	"github.com/kailas-cloud/esmodel/internal/metrics"
)

// Operation labels.
const (
	opSearch      = "search"
	opScroll      = "scroll"
	opClearScroll = "clear_scroll"
)

// InstrumentedClient wraps a Client with metrics and logging.
// Errors from the inner client are returned unchanged.
type InstrumentedClient struct {
	inner   Client
	backend string
	logger  *zap.Logger
}

// NewInstrumentedClient wraps inner. backend labels metrics (elasticsearch, opensearch).
func NewInstrumentedClient(inner Client, backend string, logger *zap.Logger) *InstrumentedClient {
	return &InstrumentedClient{inner: inner, backend: backend, logger: logger}
}

// Search delegates to the inner client.
func (c *InstrumentedClient) Search(ctx context.Context, params map[string]any) (result.Raw, error) {
	return c.observe(ctx, opSearch, params, c.inner.Search)
}

// Scroll delegates to the inner client.
func (c *InstrumentedClient) Scroll(ctx context.Context, params map[string]any) (result.Raw, error) {
	return c.observe(ctx, opScroll, params, c.inner.Scroll)
}

// ClearScroll delegates to the inner client when it supports clearing scroll contexts.
func (c *InstrumentedClient) ClearScroll(ctx context.Context, scrollIDs ...string) error {
	sc, ok := c.inner.(ScrollClearer)
	if !ok {
		return fmt.Errorf("%s: %w", opClearScroll, domain.ErrNotSupported)
	}

	start := time.Now()
	err := sc.ClearScroll(ctx, scrollIDs...)
	c.record(opClearScroll, time.Since(start), err)
	if err != nil {
		c.logger.Error("Clear scroll failed",
			zap.String("backend", c.backend),
			zap.Int("scroll_ids", len(scrollIDs)),
			zap.Error(err),
		)
	}
	return err
}

// Ping delegates to the inner client when it supports health checks.
func (c *InstrumentedClient) Ping(ctx context.Context) error {
	p, ok := c.inner.(Pinger)
	if !ok {
		return fmt.Errorf("ping: %w", domain.ErrNotSupported)
	}
	return p.Ping(ctx)
}

func (c *InstrumentedClient) observe(
	ctx context.Context, op string, params map[string]any,
	call func(context.Context, map[string]any) (result.Raw, error),
) (result.Raw, error) {
	start := time.Now()
	raw, err := call(ctx, params)
	duration := time.Since(start)

	c.record(op, duration, err)

	if err != nil {
		c.logger.Error("Engine request failed",
			zap.String("backend", c.backend),
			zap.String("operation", op),
			zap.Any("index", params["index"]),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	hits := len(raw.Hits())
	metrics.SearchHitsTotal.WithLabelValues(c.backend, op).Add(float64(hits))

	c.logger.Debug("Engine request completed",
		zap.String("backend", c.backend),
		zap.String("operation", op),
		zap.Any("index", params["index"]),
		zap.Duration("duration", duration),
		zap.Int64("took_ms", raw.Took()),
		zap.Int64("total", raw.Total().Value),
		zap.Int("hits", hits),
	)

	return raw, nil
}

func (c *InstrumentedClient) record(op string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(c.backend, op, status).Inc()
	metrics.SearchRequestDuration.WithLabelValues(c.backend, op).Observe(duration.Seconds())
}
