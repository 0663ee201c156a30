package dto

import (
	"time"

	"github.com/danieliancu/AICodeMaster/internal/models"
)

// WorkspaceCodeEntry is the saved source of one technology pane.
type WorkspaceCodeEntry struct {
	Technology string `json:"technology" validate:"required,oneof=html css javascript"`
	Code       string `json:"code"`
}

// SaveCodeRequest captures the payload for persisting workspace code.
type SaveCodeRequest struct {
	LessonID uint                 `json:"lesson_id" validate:"required"`
	Entries  []WorkspaceCodeEntry `json:"entries" validate:"required,min=1,dive"`
}

// ChatMessageResponse serializes one transcript entry for API clients.
type ChatMessageResponse struct {
	ID        uint      `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	IsCorrect *bool     `json:"is_correct,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewChatMessageResponse converts a persisted message into a DTO.
func NewChatMessageResponse(model models.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:        model.ID,
		Role:      model.Role,
		Text:      model.Text,
		IsCorrect: model.IsCorrect,
		CreatedAt: model.CreatedAt,
	}
}

// NewChatMessageResponseSlice converts a slice of persisted messages.
func NewChatMessageResponseSlice(messages []models.ChatMessage) []ChatMessageResponse {
	responses := make([]ChatMessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, NewChatMessageResponse(message))
	}

	return responses
}

// WorkspaceResponse is the full state of one lesson workspace: saved code,
// progress and the tutoring transcript.
type WorkspaceResponse struct {
	LessonID uint                  `json:"lesson_id"`
	Codes    map[string]string     `json:"codes"`
	Progress string                `json:"progress"`
	Messages []ChatMessageResponse `json:"messages"`
}
