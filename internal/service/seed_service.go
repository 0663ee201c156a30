package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/danieliancu/AICodeMaster/internal/dto"
	"github.com/danieliancu/AICodeMaster/internal/models"
	"github.com/danieliancu/AICodeMaster/internal/repository"
	"github.com/danieliancu/AICodeMaster/internal/tutor"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedService loads lesson content into the catalog. A fresh deployment runs
// it once against the starter catalog so the workspace has lessons to serve.
type SeedService interface {
	SeedLessons(ctx context.Context, token string, items []dto.LessonSeed) (int64, error)
}

type seedService struct {
	lessons   repository.LessonRepository
	validator *validator.Validate
	enabled   bool
	token     string
	logger    zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(lessons repository.LessonRepository, validate *validator.Validate, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		lessons:   lessons,
		validator: validate,
		enabled:   enabled,
		token:     token,
		logger:    logger.With().Str("component", "seed_service").Logger(),
	}
}

// SeedLessons upserts the supplied catalog entries, falling back to the
// built-in starter catalog when items is empty. Each entry's text is
// replicated into a localization row per supported answer language.
func (s *seedService) SeedLessons(ctx context.Context, token string, items []dto.LessonSeed) (int64, error) {
	if !s.enabled {
		return 0, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return 0, ErrSeedUnauthorized
	}

	if len(items) == 0 {
		items = starterCatalog()
	}

	lessons := make([]models.Lesson, 0, len(items))
	for i, item := range items {
		if err := s.validator.Struct(item); err != nil {
			return 0, err
		}

		lesson := models.Lesson{
			Slug:         strings.TrimSpace(item.Slug),
			InternalName: strings.TrimSpace(item.Name),
			SortOrder:    item.SortOrder,
			Active:       true,
		}
		if lesson.SortOrder == 0 {
			lesson.SortOrder = (i + 1) * 10
		}

		technologies := item.Technologies
		if len(technologies) == 0 {
			for _, tech := range tutor.AllTechnologies {
				technologies = append(technologies, string(tech))
			}
		}
		lesson.SetTechnologies(technologies)

		for _, language := range tutor.AllLanguages {
			localization := models.LessonLocalization{
				LanguageCode: string(language),
				Name:         item.Name,
				Title:        item.Title,
				Description:  item.Description,
			}
			localization.SetTargetCode(item.TargetCode)
			localization.SetHints(item.Hints)
			lesson.Localizations = append(lesson.Localizations, localization)
		}

		lessons = append(lessons, lesson)
	}

	affected, err := s.lessons.UpsertCatalog(ctx, lessons)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("affected", affected).Msg("lessons seeded")
	return affected, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}
