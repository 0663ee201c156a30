package handler

import (
	"context"
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/danieliancu/AICodeMaster/internal/dto"
	"github.com/danieliancu/AICodeMaster/internal/middleware"
	"github.com/danieliancu/AICodeMaster/internal/models"
	"github.com/danieliancu/AICodeMaster/internal/observability"
	"github.com/danieliancu/AICodeMaster/internal/service"
	"github.com/danieliancu/AICodeMaster/internal/tutor"
)

// RealtimeHandler serves the live feedback channel. One websocket connection
// maps to one lesson workspace: the client streams snapshot changes and
// receives debounced verdicts.
type RealtimeHandler struct {
	tutorSvc  *tutor.Service
	workspace service.WorkspaceService
	logger    zerolog.Logger
}

// NewRealtimeHandler constructs the handler.
func NewRealtimeHandler(tutorSvc *tutor.Service, workspace service.WorkspaceService, logger zerolog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		tutorSvc:  tutorSvc,
		workspace: workspace,
		logger:    logger.With().Str("component", "realtime_handler").Logger(),
	}
}

// Register wires the realtime websocket route.
func (h *RealtimeHandler) Register(router fiber.Router) {
	router.Use("/", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/:lessonID", websocket.New(h.serve))
}

// safeConn serializes writes: verdicts arrive from the coordinator's timer
// goroutine while the read loop may answer protocol errors.
type safeConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *safeConn) writeJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

func (h *RealtimeHandler) serve(conn *websocket.Conn) {
	defer conn.Close()

	user, ok := conn.Locals(middleware.LocalsUser).(models.User)
	if !ok {
		return
	}

	lessonID, err := strconv.ParseUint(conn.Params("lessonID"), 10, 64)
	if err != nil || lessonID == 0 {
		return
	}

	logger := h.logger.With().Uint("user_id", user.ID).Uint64("lesson_id", lessonID).Logger()
	safe := &safeConn{conn: conn}

	// The connection outlives any single HTTP request, so the session gets
	// its own lifetime context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	language := tutor.NormalizeLanguage(user.PreferredLanguage)
	if requested := conn.Query("language"); tutor.IsLanguage(requested) {
		language = tutor.Language(requested)
	}

	exercise, err := h.workspace.ExerciseFor(ctx, uint(lessonID), language)
	if err != nil {
		_ = safe.writeJSON(dto.RealtimeServerMessage{Type: dto.RealtimeTypeError, Error: "lesson not found"})
		return
	}

	handle, err := h.tutorSvc.OpenRealTime(ctx, tutor.EvaluationRequest{
		UserID:   user.ID,
		LessonID: uint(lessonID),
		Exercise: exercise,
		Language: language,
	}, func(verdict tutor.Verdict) {
		correct := verdict.IsCorrect
		if err := safe.writeJSON(dto.RealtimeServerMessage{
			Type:      dto.RealtimeTypeFeedback,
			Feedback:  verdict.FeedbackText,
			IsCorrect: &correct,
		}); err != nil {
			logger.Warn().Err(err).Msg("deliver realtime verdict")
		}
	})
	if err != nil {
		logger.Error().Err(err).Msg("open realtime session")
		return
	}
	defer handle.Close()

	observability.RealtimeConnections().Inc()
	defer observability.RealtimeConnections().Dec()
	logger.Info().Msg("realtime connection opened")

	for {
		var msg dto.RealtimeClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			logger.Info().Msg("realtime connection closed")
			return
		}

		switch msg.Type {
		case dto.RealtimeTypeToggle:
			if msg.Enabled != nil {
				handle.SetEnabled(*msg.Enabled)
			}
		case dto.RealtimeTypeSnapshot:
			if msg.Snapshot != nil {
				handle.SnapshotChanged(ctx, msg.Snapshot.Snapshot())
			}
		default:
			_ = safe.writeJSON(dto.RealtimeServerMessage{Type: dto.RealtimeTypeError, Error: "unknown message type"})
		}
	}
}
