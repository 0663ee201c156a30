package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Lesson represents one exercise of the curriculum. The lesson itself is
// language neutral; titles, descriptions, target code and hints live in the
// per-language localizations.
type Lesson struct {
	ID            uint                 `gorm:"primaryKey" json:"id"`
	Slug          string               `gorm:"size:128;uniqueIndex;not null" json:"slug"`
	InternalName  string               `gorm:"size:255;not null" json:"internal_name"`
	Technologies  datatypes.JSON       `gorm:"type:json" json:"-"`
	SortOrder     int                  `gorm:"not null;default:0" json:"sort_order"`
	Active        bool                 `gorm:"not null;default:true" json:"active"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	Localizations []LessonLocalization `gorm:"foreignKey:LessonID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"localizations,omitempty"`
}

// SetTechnologies serializes the active technology set into the JSON column.
func (l *Lesson) SetTechnologies(technologies []string) {
	data, err := json.Marshal(technologies)
	if err != nil {
		l.Technologies = datatypes.JSON([]byte("[]"))
		return
	}
	l.Technologies = datatypes.JSON(data)
}

// TechnologyList deserializes the stored technology set.
func (l Lesson) TechnologyList() []string {
	if len(l.Technologies) == 0 {
		return nil
	}

	var technologies []string
	if err := json.Unmarshal(l.Technologies, &technologies); err != nil {
		return nil
	}

	return technologies
}

// LessonLocalization holds the translated content of a lesson for one answer
// language. TargetCode maps technology code to the target source string.
type LessonLocalization struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	LessonID     uint           `gorm:"index:idx_lesson_language,unique;not null" json:"lesson_id"`
	LanguageCode string         `gorm:"size:8;index:idx_lesson_language,unique;not null" json:"language_code"`
	Name         string         `gorm:"size:255" json:"name"`
	Title        string         `gorm:"size:255" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	TargetCode   datatypes.JSON `gorm:"type:json" json:"-"`
	Hints        datatypes.JSON `gorm:"type:json" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// SetTargetCode serializes the per-technology target code map.
func (l *LessonLocalization) SetTargetCode(code map[string]string) {
	data, err := json.Marshal(code)
	if err != nil {
		l.TargetCode = datatypes.JSON([]byte("{}"))
		return
	}
	l.TargetCode = datatypes.JSON(data)
}

// TargetCodeMap deserializes the per-technology target code map.
func (l LessonLocalization) TargetCodeMap() map[string]string {
	code := map[string]string{}
	if len(l.TargetCode) == 0 {
		return code
	}
	if err := json.Unmarshal(l.TargetCode, &code); err != nil {
		return map[string]string{}
	}
	return code
}

// SetHints serializes the hint list into the JSON column.
func (l *LessonLocalization) SetHints(hints []string) {
	data, err := json.Marshal(hints)
	if err != nil {
		l.Hints = datatypes.JSON([]byte("[]"))
		return
	}
	l.Hints = datatypes.JSON(data)
}

// HintList deserializes the stored hint list.
func (l LessonLocalization) HintList() []string {
	if len(l.Hints) == 0 {
		return nil
	}

	var hints []string
	if err := json.Unmarshal(l.Hints, &hints); err != nil {
		return nil
	}

	return hints
}

// LessonCode stores the learner's saved source for one technology pane.
type LessonCode struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index:idx_user_lesson_tech,unique;not null" json:"user_id"`
	LessonID   uint      `gorm:"index:idx_user_lesson_tech,unique;not null" json:"lesson_id"`
	Technology string    `gorm:"size:32;index:idx_user_lesson_tech,unique;not null" json:"technology"`
	Code       string    `gorm:"type:text" json:"code"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
