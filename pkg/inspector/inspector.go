package inspector

import (
	"context"
	"log/slog"
	"time"

	"github.com/troop127/portal/pkg/model"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewInspector(logger *slog.Logger, imageService imageService, sessionService sessionService, interval, grace time.Duration) *inspector {
	return &inspector{
		logger:         logger,
		imageService:   imageService,
		sessionService: sessionService,
		interval:       interval,
		grace:          grace,
	}
}

type imageService interface {
	PurgeStale(ctx context.Context, tag string, cutoff time.Time) (int64, error)
}

type sessionService interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type inspector struct {
	logger         *slog.Logger
	imageService   imageService
	sessionService sessionService
	interval       time.Duration
	grace          time.Duration
}

// Inspect runs the background sweep until ctx is cancelled. Each pass reclaims
// images still carrying the provisional tag past the grace period, covering
// uploads whose event creation failed halfway, and purges expired sessions.
func (i inspector) Inspect(ctx context.Context) {
	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		i.sweep(ctx)
	}
}

func (i inspector) sweep(ctx context.Context) {
	i.logger.Info("Starting sweep...")

	cutoff := time.Now().Add(-i.grace)
	purgedImages, err := i.imageService.PurgeStale(ctx, model.ProvisionalImageTag, cutoff)
	if err != nil {
		i.logger.ErrorContext(ctx, "Failed to purge orphaned images", "error", err)
	} else if purgedImages > 0 {
		i.logger.Info("Purged orphaned images", "count", purgedImages)
	}

	purgedSessions, err := i.sessionService.PurgeExpired(ctx)
	if err != nil {
		i.logger.ErrorContext(ctx, "Failed to purge expired sessions", "error", err)
	} else if purgedSessions > 0 {
		i.logger.Info("Purged expired sessions", "count", purgedSessions)
	}

	i.logger.Info("Sweep ended")
}
