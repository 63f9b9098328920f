// Package realtime turns Postgres rating notifications into place rating
// patches and fans them out to editor sessions and SSE clients.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/backpackor/planner/internal/domain"
)

// Channel is the notification channel the place rating trigger publishes on.
const Channel = "place_rating_changed"

// PatchHandler receives decoded rating patches.
type PatchHandler interface {
	HandlePatch(ctx context.Context, patch domain.PlaceRatingPatch)
}

// PatchHandlerFunc adapts a function to PatchHandler.
type PatchHandlerFunc func(ctx context.Context, patch domain.PlaceRatingPatch)

// HandlePatch calls f.
func (f PatchHandlerFunc) HandlePatch(ctx context.Context, patch domain.PlaceRatingPatch) {
	f(ctx, patch)
}

// Listener holds one pooled connection in LISTEN mode and dispatches every
// notification to its handlers.
type Listener struct {
	pool     *pgxpool.Pool
	handlers []PatchHandler
	logger   *slog.Logger
	backoff  time.Duration
}

// NewListener creates a Listener. Reconnect attempts are spaced by backoff.
func NewListener(pool *pgxpool.Pool, logger *slog.Logger, backoff time.Duration, handlers ...PatchHandler) *Listener {
	return &Listener{pool: pool, handlers: handlers, logger: logger, backoff: backoff}
}

// Run listens until ctx is done, reconnecting after connection errors.
func (l *Listener) Run(ctx context.Context) {
	l.logger.Info("realtime listener starting", "channel", Channel)
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			l.logger.Info("realtime listener stopping")
			return
		}
		l.logger.Warn("realtime listener disconnected", "error", err, "retry_in", l.backoff)

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.backoff):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("realtime.Listener.listen: acquire: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{Channel}.Sanitize()); err != nil {
		return fmt.Errorf("realtime.Listener.listen: listen: %w", err)
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("realtime.Listener.listen: wait: %w", err)
		}
		l.Dispatch(ctx, n.Payload)
	}
}

// Dispatch decodes payload and hands the patch to every handler.
// Malformed payloads are logged and skipped.
func (l *Listener) Dispatch(ctx context.Context, payload string) {
	patch, err := DecodePatch(payload)
	if err != nil {
		l.logger.WarnContext(ctx, "skipping malformed rating notification", "error", err)
		return
	}
	for _, h := range l.handlers {
		h.HandlePatch(ctx, patch)
	}
}

// DecodePatch parses a trigger payload.
func DecodePatch(payload string) (domain.PlaceRatingPatch, error) {
	var p domain.PlaceRatingPatch
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return domain.PlaceRatingPatch{}, fmt.Errorf("realtime.DecodePatch: %w", err)
	}
	if strings.TrimSpace(p.PlaceID) == "" {
		return domain.PlaceRatingPatch{}, errors.New("realtime.DecodePatch: missing place_id")
	}
	return p, nil
}
