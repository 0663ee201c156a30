package models

import "time"

// Chat thread kinds.
const (
	// ThreadKindTeacher is the tutoring thread of a lesson workspace,
	// holding both feedback verdicts and chat replies.
	ThreadKindTeacher = "teacher_chat"
)

// Chat message roles, matching the transcript roles sent to the model.
const (
	ChatRoleLearner = "user"
	ChatRoleTutor   = "model"
)

// ChatThread groups the messages of one (user, lesson) tutoring session.
type ChatThread struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	UserID    uint          `gorm:"index:idx_thread_identity,unique;not null" json:"user_id"`
	LessonID  uint          `gorm:"index:idx_thread_identity,unique;not null" json:"lesson_id"`
	Kind      string        `gorm:"size:32;index:idx_thread_identity,unique;not null" json:"kind"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Messages  []ChatMessage `gorm:"foreignKey:ThreadID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"messages,omitempty"`
}

// ChatMessage is one persisted transcript entry. IsCorrect is set only on
// tutor messages produced by a feedback verdict.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ThreadID  uint      `gorm:"index;not null" json:"thread_id"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	IsCorrect *bool     `json:"is_correct,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
