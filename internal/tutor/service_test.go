package tutor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danieliancu/AICodeMaster/internal/models"
	"github.com/danieliancu/AICodeMaster/internal/repository"
	"github.com/danieliancu/AICodeMaster/pkg/ai"
)

const (
	correctFeedbackJSON   = `{"sections":["Well done","The page matches","Move on"],"isCorrect":true}`
	incorrectFeedbackJSON = `{"sections":["Close the tag","Add the class","Check the id"],"isCorrect":false}`
	chatReplyJSON         = `{"short":"Use flexbox.","detailsSections":["Set display flex","Center with justify-content","Align with align-items"]}`
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []uint
}

func (p *recordingPublisher) LessonCompleted(_ context.Context, _, lessonID uint) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, lessonID)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type tutorFixture struct {
	db        *gorm.DB
	generator *ai.MockGenerator
	events    *recordingPublisher
	threads   repository.ChatThreadRepository
	progress  repository.ProgressRepository
	service   *Service
}

func setupTutorService(t *testing.T) *tutorFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ChatThread{}, &models.ChatMessage{}, &models.LessonProgress{}))

	generator := ai.NewMockGenerator()
	events := &recordingPublisher{}
	threads := repository.NewChatThreadRepository(db)
	progress := repository.NewProgressRepository(db)
	logger := zerolog.New(io.Discard)

	tracker := NewTracker(progress, logger)
	svc := NewService(generator, threads, tracker, events, 20*time.Millisecond, logger)

	return &tutorFixture{
		db:        db,
		generator: generator,
		events:    events,
		threads:   threads,
		progress:  progress,
		service:   svc,
	}
}

func evaluationRequest(userID, lessonID uint) EvaluationRequest {
	return EvaluationRequest{
		UserID:   userID,
		LessonID: lessonID,
		Exercise: Exercise{Title: "Headings", Description: "Add an h1.", TargetHTML: "<h1>Hello</h1>"},
		Snapshot: Snapshot{HTML: "<h1>Hello</h1>"},
		Language: LanguageEnglish,
	}
}

func (f *tutorFixture) storedMessages(t *testing.T, userID, lessonID uint) []models.ChatMessage {
	t.Helper()
	thread, err := f.threads.FindOrCreate(context.Background(), userID, lessonID, models.ThreadKindTeacher)
	require.NoError(t, err)
	messages, err := f.threads.ListMessages(context.Background(), thread.ID)
	require.NoError(t, err)
	return messages
}

func TestEvaluateCorrectSolutionCompletesLesson(t *testing.T) {
	f := setupTutorService(t)
	f.generator.AddResponse(ai.MockResponse{Text: correctFeedbackJSON})

	verdict, err := f.service.Evaluate(context.Background(), evaluationRequest(1, 10))
	require.NoError(t, err)
	require.True(t, verdict.IsCorrect)
	require.Equal(t, "1. Well done\n2. The page matches\n3. Move on", verdict.FeedbackText)

	state, err := f.progress.Read(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, models.ProgressCompleted, state)

	messages := f.storedMessages(t, 1, 10)
	require.Len(t, messages, 1)
	require.Equal(t, models.ChatRoleTutor, messages[0].Role)
	require.NotNil(t, messages[0].IsCorrect)
	require.True(t, *messages[0].IsCorrect)

	require.Equal(t, 1, f.events.count())
}

func TestEvaluateIncorrectSolutionKeepsProgress(t *testing.T) {
	f := setupTutorService(t)
	f.generator.AddResponse(ai.MockResponse{Text: incorrectFeedbackJSON})

	verdict, err := f.service.Evaluate(context.Background(), evaluationRequest(1, 11))
	require.NoError(t, err)
	require.False(t, verdict.IsCorrect)

	state, err := f.progress.Read(context.Background(), 1, 11)
	require.NoError(t, err)
	require.Equal(t, models.ProgressNotStarted, state)
	require.Zero(t, f.events.count())
}

func TestEvaluateDuplicateFeedbackPersistedOnce(t *testing.T) {
	f := setupTutorService(t)
	f.generator.AddResponse(ai.MockResponse{Text: incorrectFeedbackJSON})
	f.generator.AddResponse(ai.MockResponse{Text: incorrectFeedbackJSON})

	_, err := f.service.Evaluate(context.Background(), evaluationRequest(1, 12))
	require.NoError(t, err)
	_, err = f.service.Evaluate(context.Background(), evaluationRequest(1, 12))
	require.NoError(t, err)

	require.Len(t, f.storedMessages(t, 1, 12), 1)
}

func TestEvaluateProviderFailure(t *testing.T) {
	f := setupTutorService(t)
	f.generator.AddResponse(ai.MockResponse{Err: fmt.Errorf("model timeout")})

	_, err := f.service.Evaluate(context.Background(), evaluationRequest(1, 13))
	require.ErrorIs(t, err, ErrProviderUnavailable)
	require.Empty(t, f.storedMessages(t, 1, 13))
}

func TestEvaluateRejectsUnusableModelOutput(t *testing.T) {
	f := setupTutorService(t)
	f.generator.AddResponse(ai.MockResponse{Text: `{"sections":[],"feedback":"","isCorrect":true}`})

	_, err := f.service.Evaluate(context.Background(), evaluationRequest(1, 14))
	require.ErrorIs(t, err, ErrModelOutput)
	require.Empty(t, f.storedMessages(t, 1, 14))
}

func TestChatPersistsQuestionAndReply(t *testing.T) {
	f := setupTutorService(t)
	f.generator.AddResponse(ai.MockResponse{Text: chatReplyJSON})

	req := ChatRequest{
		UserID:   2,
		LessonID: 20,
		Exercise: Exercise{Title: "Centering", Description: "Center the box."},
		Language: LanguageEnglish,
		Question: "How do I center a div?",
	}
	reply, err := f.service.Chat(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "Use flexbox.", reply.Short)
	require.Contains(t, reply.Text, Separator)

	messages := f.storedMessages(t, 2, 20)
	require.Len(t, messages, 2)
	require.Equal(t, models.ChatRoleLearner, messages[0].Role)
	require.Equal(t, "How do I center a div?", messages[0].Text)
	require.Equal(t, models.ChatRoleTutor, messages[1].Role)
	require.Equal(t, reply.Text, messages[1].Text)
}

func TestChatStripsMarkupFromQuestion(t *testing.T) {
	f := setupTutorService(t)
	f.generator.AddResponse(ai.MockResponse{Text: chatReplyJSON})

	req := ChatRequest{
		UserID:   2,
		LessonID: 21,
		Language: LanguageEnglish,
		Question: "<script>alert(1)</script>What is a selector?",
	}
	_, err := f.service.Chat(context.Background(), req)
	require.NoError(t, err)

	messages := f.storedMessages(t, 2, 21)
	require.Equal(t, "What is a selector?", messages[0].Text)
}

func TestChatRejectsEmptyQuestion(t *testing.T) {
	f := setupTutorService(t)

	_, err := f.service.Chat(context.Background(), ChatRequest{UserID: 2, LessonID: 22, Question: "   "})
	require.ErrorIs(t, err, ErrEmptyQuestion)
	require.Zero(t, f.generator.CallCount())
}

func TestChatRepeatedQuestionAlwaysRecorded(t *testing.T) {
	f := setupTutorService(t)
	f.generator.AddResponse(ai.MockResponse{Text: chatReplyJSON})
	f.generator.AddResponse(ai.MockResponse{Text: chatReplyJSON})

	req := ChatRequest{UserID: 2, LessonID: 23, Language: LanguageEnglish, Question: "same question"}
	_, err := f.service.Chat(context.Background(), req)
	require.NoError(t, err)
	_, err = f.service.Chat(context.Background(), req)
	require.NoError(t, err)

	messages := f.storedMessages(t, 2, 23)
	// Both questions stored, the identical reply only once.
	learner, tutorCount := 0, 0
	for _, msg := range messages {
		switch msg.Role {
		case models.ChatRoleLearner:
			learner++
		case models.ChatRoleTutor:
			tutorCount++
		}
	}
	require.Equal(t, 2, learner)
	require.Equal(t, 1, tutorCount)
}

func TestChatPassesTranscriptHistory(t *testing.T) {
	f := setupTutorService(t)
	f.generator.AddResponse(ai.MockResponse{Text: chatReplyJSON})
	f.generator.AddResponse(ai.MockResponse{Text: `{"short":"Yes, exactly.","details":"That is the idea."}`})

	req := ChatRequest{UserID: 2, LessonID: 24, Language: LanguageEnglish, Question: "first question"}
	_, err := f.service.Chat(context.Background(), req)
	require.NoError(t, err)

	req.Question = "second question"
	_, err = f.service.Chat(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, 2, f.generator.CallCount())
	second := f.generator.Calls[1]
	require.Len(t, second.History, 2)
	require.Equal(t, ai.RoleUser, second.History[0].Role)
	require.Equal(t, "first question", second.History[0].Text)
	require.Equal(t, ai.RoleModel, second.History[1].Role)
}

func TestSessionRestoreDeduplicatesAcrossRestart(t *testing.T) {
	f := setupTutorService(t)
	f.generator.AddResponse(ai.MockResponse{Text: incorrectFeedbackJSON})

	_, err := f.service.Evaluate(context.Background(), evaluationRequest(3, 30))
	require.NoError(t, err)
	require.Len(t, f.storedMessages(t, 3, 30), 1)

	// A fresh service over the same storage restores the ledger and still
	// suppresses the repeated verdict.
	logger := zerolog.New(io.Discard)
	restarted := NewService(f.generator, f.threads, NewTracker(f.progress, logger), nil, 20*time.Millisecond, logger)
	f.generator.AddResponse(ai.MockResponse{Text: incorrectFeedbackJSON})

	_, err = restarted.Evaluate(context.Background(), evaluationRequest(3, 30))
	require.NoError(t, err)
	require.Len(t, f.storedMessages(t, 3, 30), 1)
}

func TestOpenLessonMarksInProgressAndReturnsTranscript(t *testing.T) {
	f := setupTutorService(t)
	f.generator.AddResponse(ai.MockResponse{Text: chatReplyJSON})

	_, err := f.service.Chat(context.Background(), ChatRequest{UserID: 4, LessonID: 40, Language: LanguageEnglish, Question: "hello?"})
	require.NoError(t, err)

	transcript, err := f.service.OpenLesson(context.Background(), 4, 40)
	require.NoError(t, err)
	require.Len(t, transcript, 2)

	state, err := f.progress.Read(context.Background(), 4, 40)
	require.NoError(t, err)
	require.Equal(t, models.ProgressInProgress, state)
}

func TestRealTimeFlowEmitsVerdict(t *testing.T) {
	f := setupTutorService(t)
	f.generator.AddResponse(ai.MockResponse{Text: incorrectFeedbackJSON})

	verdicts := make(chan Verdict, 1)
	handle, err := f.service.OpenRealTime(context.Background(), evaluationRequest(5, 50), func(v Verdict) {
		verdicts <- v
	})
	require.NoError(t, err)
	defer handle.Close()

	handle.SetEnabled(true)
	handle.SnapshotChanged(context.Background(), Snapshot{HTML: "<h1>draft</h1>"})

	select {
	case verdict := <-verdicts:
		require.False(t, verdict.IsCorrect)
		require.Contains(t, verdict.FeedbackText, "Close the tag")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for realtime verdict")
	}

	require.Len(t, f.storedMessages(t, 5, 50), 1)
}
