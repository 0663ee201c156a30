package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/danieliancu/AICodeMaster/internal/models"
)

// LessonRepository exposes read operations for the lesson catalog.
type LessonRepository interface {
	ListActive(ctx context.Context) ([]models.Lesson, error)
	GetByID(ctx context.Context, id uint) (models.Lesson, error)
	GetBySlug(ctx context.Context, slug string) (models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	UpsertCatalog(ctx context.Context, lessons []models.Lesson) (int64, error)
}

type lessonRepository struct {
	db *gorm.DB
}

// NewLessonRepository constructs a lesson repository backed by GORM.
func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) ListActive(ctx context.Context) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := r.db.WithContext(ctx).
		Preload("Localizations").
		Where("active = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}

	return lessons, nil
}

func (r *lessonRepository) GetByID(ctx context.Context, id uint) (models.Lesson, error) {
	var lesson models.Lesson
	err := r.db.WithContext(ctx).
		Preload("Localizations").
		Where("id = ? AND active = ?", id, true).
		First(&lesson).Error
	if err != nil {
		return models.Lesson{}, err
	}

	return lesson, nil
}

func (r *lessonRepository) GetBySlug(ctx context.Context, slug string) (models.Lesson, error) {
	var lesson models.Lesson
	err := r.db.WithContext(ctx).
		Preload("Localizations").
		Where("slug = ? AND active = ?", slug, true).
		First(&lesson).Error
	if err != nil {
		return models.Lesson{}, err
	}

	return lesson, nil
}

func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

// UpsertCatalog writes a batch of lessons and their localizations, keyed by
// slug and (lesson, language). All or nothing: a failing row rolls back the
// whole batch. Returns the number of lessons written.
func (r *lessonRepository) UpsertCatalog(ctx context.Context, lessons []models.Lesson) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range lessons {
			lesson := &lessons[i]
			localizations := lesson.Localizations
			lesson.Localizations = nil

			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoUpdates: clause.AssignmentColumns([]string{"internal_name", "technologies", "sort_order", "active", "updated_at"}),
			}).Create(lesson).Error
			if err != nil {
				return err
			}

			// The conflict path does not report the existing id back.
			var persisted models.Lesson
			if err := tx.Where("slug = ?", lesson.Slug).First(&persisted).Error; err != nil {
				return err
			}

			for j := range localizations {
				localizations[j].LessonID = persisted.ID
				err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "lesson_id"}, {Name: "language_code"}},
					DoUpdates: clause.AssignmentColumns([]string{"name", "title", "description", "target_code", "hints", "updated_at"}),
				}).Create(&localizations[j]).Error
				if err != nil {
					return err
				}
			}

			affected++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return affected, nil
}

// LessonCodeRepository stores the learner's saved code per technology pane.
type LessonCodeRepository interface {
	Upsert(ctx context.Context, code *models.LessonCode) error
	ListByUserLesson(ctx context.Context, userID, lessonID uint) ([]models.LessonCode, error)
}

type lessonCodeRepository struct {
	db *gorm.DB
}

// NewLessonCodeRepository constructs a lesson code repository backed by GORM.
func NewLessonCodeRepository(db *gorm.DB) LessonCodeRepository {
	return &lessonCodeRepository{db: db}
}

func (r *lessonCodeRepository) Upsert(ctx context.Context, code *models.LessonCode) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}, {Name: "technology"}},
			DoUpdates: clause.AssignmentColumns([]string{"code", "updated_at"}),
		}).
		Create(code).Error
}

func (r *lessonCodeRepository) ListByUserLesson(ctx context.Context, userID, lessonID uint) ([]models.LessonCode, error) {
	var codes []models.LessonCode
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Order("technology ASC").
		Find(&codes).Error
	if err != nil {
		return nil, err
	}

	return codes, nil
}
