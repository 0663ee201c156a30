package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/danieliancu/AICodeMaster/internal/models"
)

// ChatThreadRepository persists tutoring transcripts per (user, lesson, kind).
type ChatThreadRepository interface {
	FindOrCreate(ctx context.Context, userID, lessonID uint, kind string) (models.ChatThread, error)
	AppendMessage(ctx context.Context, threadID uint, role, text string, isCorrect *bool) (models.ChatMessage, error)
	ListMessages(ctx context.Context, threadID uint) ([]models.ChatMessage, error)
}

type chatThreadRepository struct {
	db *gorm.DB
}

// NewChatThreadRepository constructs a chat thread repository backed by GORM.
func NewChatThreadRepository(db *gorm.DB) ChatThreadRepository {
	return &chatThreadRepository{db: db}
}

func (r *chatThreadRepository) FindOrCreate(ctx context.Context, userID, lessonID uint, kind string) (models.ChatThread, error) {
	var thread models.ChatThread
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ? AND kind = ?", userID, lessonID, kind).
		First(&thread).Error
	if err == nil {
		return thread, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ChatThread{}, err
	}

	thread = models.ChatThread{UserID: userID, LessonID: lessonID, Kind: kind}
	if createErr := r.db.WithContext(ctx).Create(&thread).Error; createErr != nil {
		// A concurrent caller may have created the row between the find
		// and the insert, tripping the identity index. Re-read before
		// giving up so the loser returns the winner's thread.
		err := r.db.WithContext(ctx).
			Where("user_id = ? AND lesson_id = ? AND kind = ?", userID, lessonID, kind).
			First(&thread).Error
		if err != nil {
			return models.ChatThread{}, createErr
		}
	}

	return thread, nil
}

func (r *chatThreadRepository) AppendMessage(ctx context.Context, threadID uint, role, text string, isCorrect *bool) (models.ChatMessage, error) {
	message := models.ChatMessage{
		ThreadID:  threadID,
		Role:      role,
		Text:      text,
		IsCorrect: isCorrect,
	}
	if err := r.db.WithContext(ctx).Create(&message).Error; err != nil {
		return models.ChatMessage{}, err
	}

	return message, nil
}

func (r *chatThreadRepository) ListMessages(ctx context.Context, threadID uint) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}
