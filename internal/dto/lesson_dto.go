package dto

import (
	"github.com/danieliancu/AICodeMaster/internal/models"
)

// LessonSummaryResponse is one catalog entry localized to the requested
// answer language, merged with the learner's progress state.
type LessonSummaryResponse struct {
	ID           uint     `json:"id"`
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Hints        []string `json:"hints"`
	SortOrder    int      `json:"sort_order"`
	Progress     string   `json:"progress"`
}

// NewLessonSummaryResponse converts a lesson and its localization into a
// catalog entry.
func NewLessonSummaryResponse(lesson models.Lesson, localization models.LessonLocalization, progress string) LessonSummaryResponse {
	return LessonSummaryResponse{
		ID:           lesson.ID,
		Slug:         lesson.Slug,
		Name:         localization.Name,
		Title:        localization.Title,
		Description:  localization.Description,
		Technologies: lesson.TechnologyList(),
		Hints:        localization.HintList(),
		SortOrder:    lesson.SortOrder,
		Progress:     progress,
	}
}

// SettingsResponse is the learner's workspace bootstrap payload.
type SettingsResponse struct {
	Language             string                  `json:"language"`
	Lessons              []LessonSummaryResponse `json:"lessons"`
	LastAccessedLessonID uint                    `json:"last_accessed_lesson_id"`
}

// UpdateSettingsRequest captures the payload for changing the answer language.
type UpdateSettingsRequest struct {
	Language string `json:"language" validate:"required,min=2,max=8"`
}

// LessonSeed is one catalog entry of a seeding request. The exercise text is
// replicated across every supported answer language until dedicated
// translations exist.
type LessonSeed struct {
	Slug         string            `json:"slug" validate:"required,max=128"`
	Name         string            `json:"name" validate:"required,max=255"`
	Title        string            `json:"title" validate:"required,max=255"`
	Description  string            `json:"description" validate:"required"`
	Technologies []string          `json:"technologies"`
	SortOrder    int               `json:"sort_order"`
	TargetCode   map[string]string `json:"target_code"`
	Hints        []string          `json:"hints"`
}

// SeedLessonsRequest captures the payload for seeding the lesson catalog.
// An empty item list seeds the built-in starter catalog.
type SeedLessonsRequest struct {
	Items []LessonSeed `json:"items"`
}
