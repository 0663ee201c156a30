package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/danieliancu/AICodeMaster/internal/models"
)

// Migrate applies the schema for all persisted models.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Lesson{},
		&models.LessonLocalization{},
		&models.LessonCode{},
		&models.LessonProgress{},
		&models.ChatThread{},
		&models.ChatMessage{},
	)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
