package dto

import (
	"time"

	"github.com/danieliancu/AICodeMaster/internal/tutor"
)

// SnapshotPayload is the learner's code across all panes at call time.
type SnapshotPayload struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`
}

// Snapshot converts the payload into the tutor domain type.
func (p SnapshotPayload) Snapshot() tutor.Snapshot {
	return tutor.Snapshot{HTML: p.HTML, CSS: p.CSS, JS: p.JS}
}

// FeedbackRequest captures the payload for an on-demand code review.
type FeedbackRequest struct {
	LessonID uint            `json:"lesson_id" validate:"required"`
	Snapshot SnapshotPayload `json:"snapshot"`
	Language string          `json:"language" validate:"omitempty,min=2,max=8"`
}

// FeedbackResponse carries the normalized verdict.
type FeedbackResponse struct {
	Feedback  string `json:"feedback"`
	IsCorrect bool   `json:"is_correct"`
}

// NewFeedbackResponse converts a verdict into a DTO.
func NewFeedbackResponse(verdict tutor.Verdict) FeedbackResponse {
	return FeedbackResponse{
		Feedback:  verdict.FeedbackText,
		IsCorrect: verdict.IsCorrect,
	}
}

// ChatAskRequest captures the payload for one tutoring chat turn.
type ChatAskRequest struct {
	LessonID uint            `json:"lesson_id" validate:"required"`
	Question string          `json:"question" validate:"required"`
	Snapshot SnapshotPayload `json:"snapshot"`
	Language string          `json:"language" validate:"omitempty,min=2,max=8"`
}

// ChatAnswerResponse carries the short answer, the expandable details and
// the combined sentinel-joined text.
type ChatAnswerResponse struct {
	Short   string `json:"short"`
	Details string `json:"details"`
	Text    string `json:"text"`
}

// NewChatAnswerResponse converts a chat reply into a DTO.
func NewChatAnswerResponse(reply tutor.ChatReply) ChatAnswerResponse {
	return ChatAnswerResponse{
		Short:   reply.Short,
		Details: reply.Details,
		Text:    reply.Text,
	}
}

// ExerciseGenerateRequest captures the theme for a generated exercise.
type ExerciseGenerateRequest struct {
	Theme string `json:"theme" validate:"omitempty,max=255"`
}

// ExerciseResponse carries a generated exercise.
type ExerciseResponse struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	TargetHTML   string   `json:"target_html"`
	TargetCSS    string   `json:"target_css"`
	TargetJS     string   `json:"target_js"`
	Hints        []string `json:"hints"`
}

// NewExerciseResponse converts a generated exercise into a DTO.
func NewExerciseResponse(exercise tutor.Exercise) ExerciseResponse {
	technologies := make([]string, 0, len(exercise.Technologies))
	for _, tech := range exercise.Technologies {
		technologies = append(technologies, string(tech))
	}

	return ExerciseResponse{
		Title:        exercise.Title,
		Description:  exercise.Description,
		Technologies: technologies,
		TargetHTML:   exercise.TargetHTML,
		TargetCSS:    exercise.TargetCSS,
		TargetJS:     exercise.TargetJS,
		Hints:        exercise.Hints,
	}
}

// TranscriptMessageResponse serializes one live-ledger entry.
type TranscriptMessageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTranscriptResponse converts a session transcript into DTOs.
func NewTranscriptResponse(messages []tutor.ChatMessage) []TranscriptMessageResponse {
	responses := make([]TranscriptMessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, TranscriptMessageResponse{
			ID:        message.ID,
			Role:      string(message.Role),
			Text:      message.Text,
			Timestamp: message.Timestamp,
		})
	}

	return responses
}

// Realtime websocket message types.
const (
	RealtimeTypeToggle   = "toggle"
	RealtimeTypeSnapshot = "snapshot"
	RealtimeTypeFeedback = "feedback"
	RealtimeTypeError    = "error"
)

// RealtimeClientMessage is one inbound frame on the realtime channel.
type RealtimeClientMessage struct {
	Type     string           `json:"type"`
	Enabled  *bool            `json:"enabled,omitempty"`
	Snapshot *SnapshotPayload `json:"snapshot,omitempty"`
}

// RealtimeServerMessage is one outbound frame on the realtime channel.
type RealtimeServerMessage struct {
	Type      string `json:"type"`
	Feedback  string `json:"feedback,omitempty"`
	IsCorrect *bool  `json:"is_correct,omitempty"`
	Error     string `json:"error,omitempty"`
}
