package tutor

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/danieliancu/AICodeMaster/internal/models"
	"github.com/danieliancu/AICodeMaster/internal/repository"
)

// Tracker drives the idempotent three-state lesson progress machine:
// not_started, in_progress, completed. Every write goes through the
// advance-only repository, so no interleaving of open and correct events can
// move a lesson backwards.
type Tracker struct {
	progress repository.ProgressRepository
	logger   zerolog.Logger
}

// NewTracker constructs a progress tracker.
func NewTracker(progress repository.ProgressRepository, logger zerolog.Logger) *Tracker {
	return &Tracker{
		progress: progress,
		logger:   logger.With().Str("component", "progress_tracker").Logger(),
	}
}

// Open marks a lesson workspace as touched: not_started becomes in_progress,
// anything further along is left alone.
func (t *Tracker) Open(ctx context.Context, userID, lessonID uint) error {
	return t.progress.Advance(ctx, userID, lessonID, models.ProgressInProgress)
}

// Complete forces the lesson to completed. Correctness can be recognised
// without a prior open event, so the jump from not_started is permitted.
func (t *Tracker) Complete(ctx context.Context, userID, lessonID uint) error {
	return t.progress.Advance(ctx, userID, lessonID, models.ProgressCompleted)
}

// State reads the current progress state for a lesson.
func (t *Tracker) State(ctx context.Context, userID, lessonID uint) (string, error) {
	return t.progress.Read(ctx, userID, lessonID)
}
