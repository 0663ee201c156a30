package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/danieliancu/AICodeMaster/internal/dto"
	"github.com/danieliancu/AICodeMaster/internal/models"
	"github.com/danieliancu/AICodeMaster/internal/repository"
	"github.com/danieliancu/AICodeMaster/internal/tutor"
)

// ErrUnknownLanguage indicates a language code outside the supported set.
var ErrUnknownLanguage = errors.New("unknown language code")

// SettingsService serves the learner's workspace bootstrap: the localized
// lesson catalog merged with progress, and the answer-language preference.
type SettingsService interface {
	GetSettings(ctx context.Context, user models.User) (dto.SettingsResponse, error)
	UpdateLanguage(ctx context.Context, userID uint, payload dto.UpdateSettingsRequest) (string, error)
}

type settingsService struct {
	lessons   repository.LessonRepository
	progress  repository.ProgressRepository
	users     repository.UserRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSettingsService constructs the settings service. cache may be nil when
// Redis is not configured; the catalog is then rebuilt per request.
func NewSettingsService(
	lessonRepo repository.LessonRepository,
	progressRepo repository.ProgressRepository,
	userRepo repository.UserRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger zerolog.Logger,
) SettingsService {
	return &settingsService{
		lessons:   lessonRepo,
		progress:  progressRepo,
		users:     userRepo,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger.With().Str("component", "settings_service").Logger(),
	}
}

func catalogCacheKey(language tutor.Language) string {
	return fmt.Sprintf("lessons:catalog:%s", language)
}

func pickLocalization(lesson models.Lesson, language tutor.Language) models.LessonLocalization {
	var fallback models.LessonLocalization
	for _, localization := range lesson.Localizations {
		if localization.LanguageCode == string(language) {
			return localization
		}
		if localization.LanguageCode == string(tutor.DefaultLanguage) {
			fallback = localization
		}
	}
	if fallback.ID == 0 && len(lesson.Localizations) > 0 {
		fallback = lesson.Localizations[0]
	}
	return fallback
}

// catalog returns the localized lesson list without per-user progress,
// served from Redis when available.
func (s *settingsService) catalog(ctx context.Context, language tutor.Language) ([]dto.LessonSummaryResponse, error) {
	key := catalogCacheKey(language)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Bytes()
		if err == nil {
			var entries []dto.LessonSummaryResponse
			if err := json.Unmarshal(cached, &entries); err == nil {
				return entries, nil
			}
			s.logger.Warn().Str("key", key).Msg("discarding malformed catalog cache entry")
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("catalog cache read failed")
		}
	}

	lessons, err := s.lessons.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.LessonSummaryResponse, 0, len(lessons))
	for _, lesson := range lessons {
		localization := pickLocalization(lesson, language)
		entries = append(entries, dto.NewLessonSummaryResponse(lesson, localization, models.ProgressNotStarted))
	}

	if s.cache != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("catalog cache write failed")
			}
		}
	}

	return entries, nil
}

func (s *settingsService) GetSettings(ctx context.Context, user models.User) (dto.SettingsResponse, error) {
	language := tutor.NormalizeLanguage(user.PreferredLanguage)

	entries, err := s.catalog(ctx, language)
	if err != nil {
		return dto.SettingsResponse{}, err
	}

	rows, err := s.progress.ListByUser(ctx, user.ID)
	if err != nil {
		return dto.SettingsResponse{}, err
	}
	states := make(map[uint]string, len(rows))
	for _, row := range rows {
		states[row.LessonID] = row.State
	}

	for i := range entries {
		if state, ok := states[entries[i].ID]; ok {
			entries[i].Progress = state
		}
	}

	lastLessonID, err := s.progress.LastAccessedLessonID(ctx, user.ID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("resolve last accessed lesson")
	}

	return dto.SettingsResponse{
		Language:             string(language),
		Lessons:              entries,
		LastAccessedLessonID: lastLessonID,
	}, nil
}

func (s *settingsService) UpdateLanguage(ctx context.Context, userID uint, payload dto.UpdateSettingsRequest) (string, error) {
	if err := s.validator.Struct(payload); err != nil {
		return "", err
	}
	if !tutor.IsLanguage(payload.Language) {
		return "", ErrUnknownLanguage
	}

	if err := s.users.UpdatePreferredLanguage(ctx, userID, payload.Language); err != nil {
		return "", err
	}

	return payload.Language, nil
}
