package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/danieliancu/AICodeMaster/internal/dto"
	"github.com/danieliancu/AICodeMaster/internal/models"
	"github.com/danieliancu/AICodeMaster/internal/repository"
	"github.com/danieliancu/AICodeMaster/internal/tutor"
)

// ErrLessonNotFound indicates the lesson does not exist or is inactive.
var ErrLessonNotFound = errors.New("lesson not found")

// WorkspaceService manages one lesson workspace: saved code, progress and
// the tutoring transcript, plus the exercise definition handed to the tutor.
type WorkspaceService interface {
	GetWorkspace(ctx context.Context, user models.User, lessonID uint) (dto.WorkspaceResponse, error)
	SaveCode(ctx context.Context, userID uint, payload dto.SaveCodeRequest) error
	ExerciseFor(ctx context.Context, lessonID uint, language tutor.Language) (tutor.Exercise, error)
}

type workspaceService struct {
	lessons   repository.LessonRepository
	codes     repository.LessonCodeRepository
	threads   repository.ChatThreadRepository
	tracker   *tutor.Tracker
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewWorkspaceService constructs the workspace service.
func NewWorkspaceService(
	lessonRepo repository.LessonRepository,
	codeRepo repository.LessonCodeRepository,
	threadRepo repository.ChatThreadRepository,
	tracker *tutor.Tracker,
	validate *validator.Validate,
	logger zerolog.Logger,
) WorkspaceService {
	return &workspaceService{
		lessons:   lessonRepo,
		codes:     codeRepo,
		threads:   threadRepo,
		tracker:   tracker,
		validator: validate,
		logger:    logger.With().Str("component", "workspace_service").Logger(),
	}
}

// GetWorkspace loads the lesson workspace and marks the lesson opened, which
// moves a not-started lesson to in-progress.
func (s *workspaceService) GetWorkspace(ctx context.Context, user models.User, lessonID uint) (dto.WorkspaceResponse, error) {
	if _, err := s.lessons.GetByID(ctx, lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.WorkspaceResponse{}, ErrLessonNotFound
		}
		return dto.WorkspaceResponse{}, err
	}

	if err := s.tracker.Open(ctx, user.ID, lessonID); err != nil {
		return dto.WorkspaceResponse{}, err
	}

	codes, err := s.codes.ListByUserLesson(ctx, user.ID, lessonID)
	if err != nil {
		return dto.WorkspaceResponse{}, err
	}
	codeMap := make(map[string]string, len(codes))
	for _, code := range codes {
		codeMap[code.Technology] = code.Code
	}

	state, err := s.tracker.State(ctx, user.ID, lessonID)
	if err != nil {
		return dto.WorkspaceResponse{}, err
	}

	thread, err := s.threads.FindOrCreate(ctx, user.ID, lessonID, models.ThreadKindTeacher)
	if err != nil {
		return dto.WorkspaceResponse{}, err
	}
	messages, err := s.threads.ListMessages(ctx, thread.ID)
	if err != nil {
		return dto.WorkspaceResponse{}, err
	}

	return dto.WorkspaceResponse{
		LessonID: lessonID,
		Codes:    codeMap,
		Progress: state,
		Messages: dto.NewChatMessageResponseSlice(messages),
	}, nil
}

func (s *workspaceService) SaveCode(ctx context.Context, userID uint, payload dto.SaveCodeRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	if _, err := s.lessons.GetByID(ctx, payload.LessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLessonNotFound
		}
		return err
	}

	for _, entry := range payload.Entries {
		code := models.LessonCode{
			UserID:     userID,
			LessonID:   payload.LessonID,
			Technology: entry.Technology,
			Code:       entry.Code,
		}
		if err := s.codes.Upsert(ctx, &code); err != nil {
			return err
		}
	}

	// Saving code counts as working on the lesson.
	if err := s.tracker.Open(ctx, userID, payload.LessonID); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Uint("lesson_id", payload.LessonID).Msg("touch lesson progress")
	}

	return nil
}

// ExerciseFor resolves the lesson's localized exercise definition for prompt
// composition.
func (s *workspaceService) ExerciseFor(ctx context.Context, lessonID uint, language tutor.Language) (tutor.Exercise, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tutor.Exercise{}, ErrLessonNotFound
		}
		return tutor.Exercise{}, err
	}

	localization := pickLocalization(lesson, language)
	technologies := make([]tutor.Technology, 0, 3)
	for _, tech := range lesson.TechnologyList() {
		technologies = append(technologies, tutor.Technology(tech))
	}

	targets := localization.TargetCodeMap()
	return tutor.Exercise{
		Title:        localization.Title,
		Description:  localization.Description,
		TargetHTML:   targets[string(tutor.TechnologyHTML)],
		TargetCSS:    targets[string(tutor.TechnologyCSS)],
		TargetJS:     targets[string(tutor.TechnologyJavaScript)],
		Hints:        localization.HintList(),
		Technologies: technologies,
	}, nil
}
