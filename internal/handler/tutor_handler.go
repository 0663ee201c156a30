package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/danieliancu/AICodeMaster/internal/dto"
	"github.com/danieliancu/AICodeMaster/internal/middleware"
	"github.com/danieliancu/AICodeMaster/internal/models"
	"github.com/danieliancu/AICodeMaster/internal/service"
	"github.com/danieliancu/AICodeMaster/internal/tutor"
	"github.com/danieliancu/AICodeMaster/internal/utils"
)

// TutorHandler exposes the feedback and chat endpoints of the AI tutor.
type TutorHandler struct {
	tutorSvc  *tutor.Service
	workspace service.WorkspaceService
	logger    zerolog.Logger
}

// NewTutorHandler constructs the handler.
func NewTutorHandler(tutorSvc *tutor.Service, workspace service.WorkspaceService, logger zerolog.Logger) *TutorHandler {
	return &TutorHandler{
		tutorSvc:  tutorSvc,
		workspace: workspace,
		logger:    logger.With().Str("component", "tutor_handler").Logger(),
	}
}

// Register wires the tutor routes.
func (h *TutorHandler) Register(router fiber.Router) {
	router.Post("/feedback", h.feedback)
	router.Post("/chat", h.chat)
	router.Post("/exercise", h.generateExercise)
	router.Get("/transcript/:lessonID", h.transcript)
}

func resolveLanguage(user models.User, requested string) tutor.Language {
	if tutor.IsLanguage(requested) {
		return tutor.Language(requested)
	}
	return tutor.NormalizeLanguage(user.PreferredLanguage)
}

func (h *TutorHandler) sendTutorError(c *fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, tutor.ErrEvaluationInFlight):
		return utils.SendError(c, fiber.StatusConflict, "an evaluation is already running")
	case errors.Is(err, tutor.ErrEmptyQuestion):
		return utils.SendError(c, fiber.StatusBadRequest, "question must not be empty")
	case errors.Is(err, tutor.ErrProviderUnavailable):
		requestLogger(h.logger, c).Warn().Err(err).Msg(action)
		return utils.SendError(c, fiber.StatusServiceUnavailable, "the tutor is temporarily unavailable")
	case errors.Is(err, tutor.ErrModelOutput):
		requestLogger(h.logger, c).Error().Err(err).Msg(action)
		return utils.SendError(c, fiber.StatusBadGateway, "the tutor returned an unusable answer")
	case errors.Is(err, service.ErrLessonNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "lesson not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(action)
		return utils.SendError(c, fiber.StatusInternalServerError, "tutor request failed")
	}
}

func (h *TutorHandler) feedback(c *fiber.Ctx) error {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.FeedbackRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.LessonID == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "lesson_id is required")
	}

	language := resolveLanguage(user, payload.Language)
	exercise, err := h.workspace.ExerciseFor(c.Context(), payload.LessonID, language)
	if err != nil {
		return h.sendTutorError(c, err, "failed to resolve exercise")
	}

	verdict, err := h.tutorSvc.Evaluate(c.Context(), tutor.EvaluationRequest{
		UserID:   user.ID,
		LessonID: payload.LessonID,
		Exercise: exercise,
		Snapshot: payload.Snapshot.Snapshot(),
		Language: language,
	})
	if err != nil {
		return h.sendTutorError(c, err, "feedback evaluation failed")
	}

	return utils.SendSuccess(c, "feedback generated", dto.NewFeedbackResponse(verdict))
}

func (h *TutorHandler) chat(c *fiber.Ctx) error {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.ChatAskRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.LessonID == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "lesson_id is required")
	}

	language := resolveLanguage(user, payload.Language)
	exercise, err := h.workspace.ExerciseFor(c.Context(), payload.LessonID, language)
	if err != nil {
		return h.sendTutorError(c, err, "failed to resolve exercise")
	}

	reply, err := h.tutorSvc.Chat(c.Context(), tutor.ChatRequest{
		UserID:   user.ID,
		LessonID: payload.LessonID,
		Exercise: exercise,
		Snapshot: payload.Snapshot.Snapshot(),
		Language: language,
		Question: payload.Question,
	})
	if err != nil {
		return h.sendTutorError(c, err, "chat turn failed")
	}

	return utils.SendSuccess(c, "answer generated", dto.NewChatAnswerResponse(reply))
}

func (h *TutorHandler) generateExercise(c *fiber.Ctx) error {
	if _, ok := middleware.UserFromContext(c); !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.ExerciseGenerateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	exercise, err := h.tutorSvc.GenerateExercise(c.Context(), payload.Theme)
	if err != nil {
		return h.sendTutorError(c, err, "exercise generation failed")
	}

	return utils.SendSuccess(c, "exercise generated", dto.NewExerciseResponse(exercise))
}

func (h *TutorHandler) transcript(c *fiber.Ctx) error {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	lessonID, err := parseUintParam(c, "lessonID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	messages, err := h.tutorSvc.Transcript(c.Context(), user.ID, lessonID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load transcript")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load transcript")
	}

	return utils.SendSuccess(c, "transcript retrieved", dto.NewTranscriptResponse(messages))
}
