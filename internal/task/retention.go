// Package task manages background jobs that run outside the HTTP request
// path. The only current job is the retention sweeper, which moves
// long-corrected sessions into the archived state on a fixed interval.
package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ssl2010/englishlearn-api/internal/domain"
	"github.com/ssl2010/englishlearn-api/internal/store"
)

// sweepBatchSize bounds how many sessions one sweep will archive. A busy
// backlog drains over successive sweeps instead of one long transaction.
const sweepBatchSize = 100

// RetentionConfig holds configuration for the retention sweeper.
type RetentionConfig struct {
	// ArchiveAfter is how long a corrected session stays active before
	// archival.
	ArchiveAfter time.Duration

	// SweepInterval is how often the sweeper runs.
	SweepInterval time.Duration
}

// RetentionSweeper periodically archives sessions whose corrected state has
// outlived the retention window. Archival is the only path into the
// ARCHIVED status; grading never archives.
type RetentionSweeper struct {
	sessions   store.SessionStore
	config     RetentionConfig
	logger     *slog.Logger
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewRetentionSweeper creates a RetentionSweeper.
func NewRetentionSweeper(
	sessions store.SessionStore,
	config RetentionConfig,
	logger *slog.Logger,
) (*RetentionSweeper, error) {
	if sessions == nil {
		return nil, errors.New("session store cannot be nil")
	}
	if config.ArchiveAfter <= 0 || config.SweepInterval <= 0 {
		return nil, errors.New("retention durations must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &RetentionSweeper{
		sessions:   sessions,
		config:     config,
		logger:     logger.With(slog.String("component", "retention_sweeper")),
		ctx:        ctx,
		cancelFunc: cancel,
	}, nil
}

// Start launches the sweep loop. The first sweep runs immediately so a
// restart does not delay overdue archival by a full interval.
func (r *RetentionSweeper) Start() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		r.sweep(r.ctx)

		ticker := time.NewTicker(r.config.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.sweep(r.ctx)
			case <-r.ctx.Done():
				return
			}
		}
	}()
}

// Stop shuts the sweeper down and waits for an in-flight sweep to finish.
func (r *RetentionSweeper) Stop() {
	r.cancelFunc()
	r.wg.Wait()
}

// sweep archives one batch of overdue sessions. Failures on individual
// sessions are logged and skipped so one bad row cannot wedge the sweeper.
func (r *RetentionSweeper) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-r.config.ArchiveAfter)

	sessions, err := r.sessions.ListCorrectedBefore(ctx, cutoff, sweepBatchSize)
	if err != nil {
		r.logger.Error("failed to list archival candidates",
			slog.String("error", err.Error()))
		return
	}
	if len(sessions) == 0 {
		return
	}

	archived := 0
	now := time.Now().UTC()
	for _, session := range sessions {
		if ctx.Err() != nil {
			break
		}
		if err := r.archiveOne(ctx, session, now); err != nil {
			r.logger.Error("failed to archive session",
				slog.String("session_id", session.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		archived++
	}

	r.logger.Info("retention sweep finished",
		slog.Int("candidates", len(sessions)),
		slog.Int("archived", archived),
		slog.Time("cutoff", cutoff))
}

// archiveOne performs the lifecycle transition and persists it.
func (r *RetentionSweeper) archiveOne(ctx context.Context, session *domain.PracticeSession, now time.Time) error {
	if err := session.Archive(now); err != nil {
		return err
	}
	return r.sessions.UpdateStatus(ctx, session)
}
