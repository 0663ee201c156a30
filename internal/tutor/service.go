package tutor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/danieliancu/AICodeMaster/internal/models"
	"github.com/danieliancu/AICodeMaster/internal/repository"
	"github.com/danieliancu/AICodeMaster/pkg/ai"
)

var (
	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aicodemaster",
		Subsystem: "tutor",
		Name:      "evaluations_total",
		Help:      "Feedback evaluations by trigger mode and outcome.",
	}, []string{"mode", "outcome"})

	chatTurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aicodemaster",
		Subsystem: "tutor",
		Name:      "chat_turns_total",
		Help:      "Chat turns by outcome.",
	}, []string{"outcome"})

	duplicateRepliesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "aicodemaster",
		Subsystem: "tutor",
		Name:      "duplicate_replies_total",
		Help:      "Tutor replies suppressed by ledger deduplication.",
	})
)

// questionPolicy strips markup from learner questions before they enter the
// ledger and the prompt. Inner text, including code snippets typed as text,
// is preserved.
var questionPolicy = bluemonday.StrictPolicy()

// EventPublisher fans out domain events to interested consumers. A nil
// publisher disables eventing without branching at every call site.
type EventPublisher interface {
	LessonCompleted(ctx context.Context, userID, lessonID uint) error
}

type sessionKey struct {
	userID   uint
	lessonID uint
}

// session is the live per-(user, lesson) state. The ledger and coordinator
// survive for the lifetime of the service process; the thread row is the
// durable backing store.
type session struct {
	mu          sync.Mutex
	threadID    uint
	ledger      *Ledger
	coordinator *Coordinator
	exercise    Exercise
	language    Language
	emit        func(Verdict)
}

func (s *session) setTemplate(exercise Exercise, language Language) {
	s.mu.Lock()
	s.exercise = exercise
	s.language = language
	s.mu.Unlock()
}

func (s *session) template() (Exercise, Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exercise, s.language
}

func (s *session) setEmit(emit func(Verdict)) {
	s.mu.Lock()
	s.emit = emit
	s.mu.Unlock()
}

func (s *session) notify(verdict Verdict) {
	s.mu.Lock()
	emit := s.emit
	s.mu.Unlock()
	if emit != nil {
		emit(verdict)
	}
}

// Service orchestrates the tutoring pipeline: prompt composition, model
// calls, response normalization, the session ledger, lesson progress and
// event publication.
type Service struct {
	generator ai.Generator
	threads   repository.ChatThreadRepository
	tracker   *Tracker
	events    EventPublisher
	debounce  time.Duration
	logger    zerolog.Logger

	mu       sync.Mutex
	sessions map[sessionKey]*session
}

// NewService constructs the tutor service. events may be nil when no broker
// is configured.
func NewService(
	generator ai.Generator,
	threads repository.ChatThreadRepository,
	tracker *Tracker,
	events EventPublisher,
	debounce time.Duration,
	logger zerolog.Logger,
) *Service {
	return &Service{
		generator: generator,
		threads:   threads,
		tracker:   tracker,
		events:    events,
		debounce:  debounce,
		logger:    logger.With().Str("component", "tutor_service").Logger(),
		sessions:  make(map[sessionKey]*session),
	}
}

func ledgerMessageFromModel(msg models.ChatMessage) ChatMessage {
	return ChatMessage{
		ID:        strconv.FormatUint(uint64(msg.ID), 10),
		Role:      Role(msg.Role),
		Text:      msg.Text,
		Timestamp: msg.CreatedAt,
	}
}

// lookup returns the live session for the pair, loading the durable thread
// and rebuilding the ledger on first access.
func (s *Service) lookup(ctx context.Context, userID, lessonID uint) (*session, error) {
	key := sessionKey{userID: userID, lessonID: lessonID}

	s.mu.Lock()
	if sess, ok := s.sessions[key]; ok {
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	thread, err := s.threads.FindOrCreate(ctx, userID, lessonID, models.ThreadKindTeacher)
	if err != nil {
		return nil, fmt.Errorf("load chat thread: %w", err)
	}
	stored, err := s.threads.ListMessages(ctx, thread.ID)
	if err != nil {
		return nil, fmt.Errorf("load chat transcript: %w", err)
	}

	ledger := NewLedger()
	restored := make([]ChatMessage, 0, len(stored))
	for _, msg := range stored {
		restored = append(restored, ledgerMessageFromModel(msg))
	}
	ledger.Restore(restored)

	sess := &session{
		threadID: thread.ID,
		ledger:   ledger,
		language: DefaultLanguage,
	}
	sess.coordinator = NewCoordinator(s.debounce, func(ctx context.Context, snapshot Snapshot, mode Mode) (Verdict, error) {
		return s.runEvaluation(ctx, sess, userID, lessonID, snapshot, mode)
	}, s.logger.With().Uint("user_id", userID).Uint("lesson_id", lessonID).Logger())

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[key]; ok {
		// Lost the race with a concurrent first access.
		sess.coordinator.Stop()
		return existing, nil
	}
	s.sessions[key] = sess
	return sess, nil
}

// runEvaluation is the coordinator's RunFunc: one full feedback round trip
// plus its side effects.
func (s *Service) runEvaluation(ctx context.Context, sess *session, userID, lessonID uint, snapshot Snapshot, mode Mode) (Verdict, error) {
	exercise, language := sess.template()
	req := EvaluationRequest{
		UserID:   userID,
		LessonID: lessonID,
		Exercise: exercise,
		Snapshot: snapshot,
		Language: language,
	}

	prompt, shape := ComposeFeedbackPrompt(req, mode)
	raw, err := s.generator.Generate(ctx, ai.GenerateRequest{
		Prompt: prompt,
		Schema: shape,
	})
	if err != nil {
		evaluationsTotal.WithLabelValues(string(mode), "provider_error").Inc()
		return Verdict{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	verdict, err := NormalizeFeedback(raw)
	if err != nil {
		evaluationsTotal.WithLabelValues(string(mode), "model_output_error").Inc()
		return Verdict{}, err
	}
	evaluationsTotal.WithLabelValues(string(mode), "ok").Inc()

	s.applyVerdict(ctx, sess, userID, lessonID, verdict)
	if mode == ModeRealTime {
		sess.notify(verdict)
	}
	return verdict, nil
}

// applyVerdict records the feedback in the ledger and the durable thread and
// advances lesson progress on a correct solution. Persistence failures are
// logged without discarding the verdict.
func (s *Service) applyVerdict(ctx context.Context, sess *session, userID, lessonID uint, verdict Verdict) {
	logger := s.logger.With().Uint("user_id", userID).Uint("lesson_id", lessonID).Logger()

	if _, added := sess.ledger.AppendTutorIfUnique(verdict.FeedbackText); added {
		correct := verdict.IsCorrect
		if _, err := s.threads.AppendMessage(ctx, sess.threadID, string(RoleTutor), verdict.FeedbackText, &correct); err != nil {
			logger.Error().Err(err).Msg("persist feedback message")
		}
	} else {
		duplicateRepliesTotal.Inc()
	}

	if !verdict.IsCorrect {
		return
	}
	if err := s.tracker.Complete(ctx, userID, lessonID); err != nil {
		logger.Error().Err(err).Msg("record lesson completion")
	}
	if s.events != nil {
		if err := s.events.LessonCompleted(ctx, userID, lessonID); err != nil {
			logger.Warn().Err(err).Msg("publish lesson completed event")
		}
	}
}

// Evaluate runs an explicit on-demand feedback round. A concurrent
// evaluation on the same session is rejected with ErrEvaluationInFlight.
func (s *Service) Evaluate(ctx context.Context, req EvaluationRequest) (Verdict, error) {
	sess, err := s.lookup(ctx, req.UserID, req.LessonID)
	if err != nil {
		return Verdict{}, err
	}
	sess.setTemplate(req.Exercise, req.Language)
	return sess.coordinator.Evaluate(ctx, req.Snapshot)
}

// Chat answers one learner question. The question always enters the ledger;
// the tutor reply enters only when it is not a duplicate.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (ChatReply, error) {
	req.Question = strings.TrimSpace(questionPolicy.Sanitize(req.Question))
	if req.Question == "" {
		return ChatReply{}, ErrEmptyQuestion
	}

	sess, err := s.lookup(ctx, req.UserID, req.LessonID)
	if err != nil {
		return ChatReply{}, err
	}
	sess.setTemplate(req.Exercise, req.Language)

	// History is the transcript before this turn; the question itself rides
	// in the prompt.
	req.Transcript = sess.ledger.Messages()

	sess.ledger.AppendLearner(req.Question)
	if _, err := s.threads.AppendMessage(ctx, sess.threadID, string(RoleLearner), req.Question, nil); err != nil {
		s.logger.Error().Err(err).Uint("user_id", req.UserID).Uint("lesson_id", req.LessonID).Msg("persist learner question")
	}

	prompt, history, shape := ComposeChatPrompt(req)
	raw, err := s.generator.Generate(ctx, ai.GenerateRequest{
		Prompt:  prompt,
		History: history,
		Schema:  shape,
	})
	if err != nil {
		chatTurnsTotal.WithLabelValues("provider_error").Inc()
		return ChatReply{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	reply, err := NormalizeChat(raw)
	if err != nil {
		chatTurnsTotal.WithLabelValues("model_output_error").Inc()
		return ChatReply{}, err
	}
	chatTurnsTotal.WithLabelValues("ok").Inc()

	if _, added := sess.ledger.AppendTutorIfUnique(reply.Text); added {
		if _, err := s.threads.AppendMessage(ctx, sess.threadID, string(RoleTutor), reply.Text, nil); err != nil {
			s.logger.Error().Err(err).Uint("user_id", req.UserID).Uint("lesson_id", req.LessonID).Msg("persist tutor reply")
		}
	} else {
		duplicateRepliesTotal.Inc()
	}

	return reply, nil
}

// Transcript returns the session transcript in insertion order, restoring
// the ledger from storage on first access.
func (s *Service) Transcript(ctx context.Context, userID, lessonID uint) ([]ChatMessage, error) {
	sess, err := s.lookup(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}
	return sess.ledger.Messages(), nil
}

// OpenLesson marks the lesson as started for the learner and returns the
// restored transcript for display.
func (s *Service) OpenLesson(ctx context.Context, userID, lessonID uint) ([]ChatMessage, error) {
	if err := s.tracker.Open(ctx, userID, lessonID); err != nil {
		return nil, err
	}
	return s.Transcript(ctx, userID, lessonID)
}

// RealTimeHandle is one client's attachment to the session's real-time
// evaluation loop, typically owned by a websocket connection.
type RealTimeHandle struct {
	sess *session
}

// OpenRealTime attaches a real-time consumer to the session. emit receives
// every verdict produced by the debounced loop while the handle is open.
func (s *Service) OpenRealTime(ctx context.Context, req EvaluationRequest, emit func(Verdict)) (*RealTimeHandle, error) {
	sess, err := s.lookup(ctx, req.UserID, req.LessonID)
	if err != nil {
		return nil, err
	}
	sess.setTemplate(req.Exercise, req.Language)
	sess.setEmit(emit)
	return &RealTimeHandle{sess: sess}, nil
}

// SetEnabled toggles real-time evaluation. Disabling clears the change
// fingerprint so re-enabling always evaluates at least once.
func (h *RealTimeHandle) SetEnabled(enabled bool) {
	h.sess.coordinator.SetRealTime(enabled)
}

// SnapshotChanged feeds the latest code snapshot into the debounce loop.
func (h *RealTimeHandle) SnapshotChanged(ctx context.Context, snapshot Snapshot) {
	h.sess.coordinator.SnapshotChanged(ctx, snapshot)
}

// Update replaces the exercise and language used by subsequent real-time
// evaluations, for lesson switches over a live connection.
func (h *RealTimeHandle) Update(exercise Exercise, language Language) {
	h.sess.setTemplate(exercise, language)
}

// Close detaches the consumer: real-time mode is switched off and pending
// timers cancelled. An evaluation already in flight finishes on its own.
func (h *RealTimeHandle) Close() {
	h.sess.setEmit(nil)
	h.sess.coordinator.SetRealTime(false)
	h.sess.coordinator.Stop()
}
