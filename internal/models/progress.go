package models

import "time"

// Lesson progress states. Progress is monotonic by policy: the repository
// write path only ever advances the state, never retreats it.
const (
	ProgressNotStarted = "not_started"
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

var progressRanks = map[string]int{
	ProgressNotStarted: 0,
	ProgressInProgress: 1,
	ProgressCompleted:  2,
}

// ProgressRank orders progress states for monotonic comparison. Unknown
// states rank below not_started so they can never overwrite a real state.
func ProgressRank(state string) int {
	if rank, ok := progressRanks[state]; ok {
		return rank
	}
	return -1
}

// IsProgressState reports whether value names a known progress state.
func IsProgressState(value string) bool {
	_, ok := progressRanks[value]
	return ok
}

// LessonProgress is the persisted progress row per (user, lesson).
type LessonProgress struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index:idx_user_lesson_progress,unique;not null" json:"user_id"`
	LessonID       uint      `gorm:"index:idx_user_lesson_progress,unique;not null" json:"lesson_id"`
	State          string    `gorm:"size:32;not null;default:not_started" json:"state"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
