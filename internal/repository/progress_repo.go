package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/danieliancu/AICodeMaster/internal/models"
)

// ProgressRepository persists per (user, lesson) progress rows. The store
// itself accepts any upsert, so the advance-only guarantee is enforced here:
// a write that would lower the stored state is reduced to a timestamp touch.
type ProgressRepository interface {
	Advance(ctx context.Context, userID, lessonID uint, state string) error
	Read(ctx context.Context, userID, lessonID uint) (string, error)
	ListByUser(ctx context.Context, userID uint) ([]models.LessonProgress, error)
	LastAccessedLessonID(ctx context.Context, userID uint) (uint, error)
}

type progressRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewProgressRepository constructs a progress repository backed by GORM.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db, now: time.Now}
}

func (r *progressRepository) Advance(ctx context.Context, userID, lessonID uint, state string) error {
	if !models.IsProgressState(state) {
		return fmt.Errorf("unknown progress state %q", state)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.LessonProgress
		err := tx.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = models.LessonProgress{
				UserID:         userID,
				LessonID:       lessonID,
				State:          state,
				LastAccessedAt: r.now(),
			}
			return tx.Create(&row).Error
		}
		if err != nil {
			return err
		}

		updates := map[string]any{"last_accessed_at": r.now()}
		if models.ProgressRank(state) > models.ProgressRank(row.State) {
			updates["state"] = state
		}

		return tx.Model(&row).Updates(updates).Error
	})
}

func (r *progressRepository) Read(ctx context.Context, userID, lessonID uint) (string, error) {
	var row models.LessonProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ProgressNotStarted, nil
	}
	if err != nil {
		return "", err
	}

	return row.State, nil
}

func (r *progressRepository) ListByUser(ctx context.Context, userID uint) ([]models.LessonProgress, error) {
	var rows []models.LessonProgress
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *progressRepository) LastAccessedLessonID(ctx context.Context, userID uint) (uint, error) {
	var row models.LessonProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_accessed_at DESC, id DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return row.LessonID, nil
}
