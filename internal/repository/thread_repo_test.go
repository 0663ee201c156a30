package repository_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danieliancu/AICodeMaster/internal/models"
	"github.com/danieliancu/AICodeMaster/internal/repository"
)

func setupThreadRepo(t *testing.T) repository.ChatThreadRepository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ChatThread{}, &models.ChatMessage{}))

	return repository.NewChatThreadRepository(db)
}

func TestFindOrCreateIsIdempotent(t *testing.T) {
	repo := setupThreadRepo(t)
	ctx := context.Background()

	first, err := repo.FindOrCreate(ctx, 1, 10, models.ThreadKindTeacher)
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	second, err := repo.FindOrCreate(ctx, 1, 10, models.ThreadKindTeacher)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestFindOrCreateReturnsWinnerAfterLostRace(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ChatThread{}, &models.ChatMessage{}))

	// Slip a competing insert between the find and the create, so the
	// repository's own insert trips the identity index.
	raced := false
	err = db.Callback().Create().Before("gorm:create").Register("race_thread_insert", func(tx *gorm.DB) {
		if raced || tx.Statement.Schema == nil || tx.Statement.Schema.Table != "chat_threads" {
			return
		}
		raced = true
		// The root handle commits independently of the transaction that
		// wraps the repository's create.
		db.Exec("INSERT INTO chat_threads (user_id, lesson_id, kind, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			3, 30, models.ThreadKindTeacher, time.Now(), time.Now())
	})
	require.NoError(t, err)

	repo := repository.NewChatThreadRepository(db)
	thread, err := repo.FindOrCreate(context.Background(), 3, 30, models.ThreadKindTeacher)
	require.NoError(t, err)
	require.True(t, raced)

	var count int64
	require.NoError(t, db.Model(&models.ChatThread{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	var winner models.ChatThread
	require.NoError(t, db.Where("user_id = ? AND lesson_id = ?", 3, 30).First(&winner).Error)
	require.Equal(t, winner.ID, thread.ID)
}

func TestFindOrCreateSeparatesLessons(t *testing.T) {
	repo := setupThreadRepo(t)
	ctx := context.Background()

	first, err := repo.FindOrCreate(ctx, 1, 10, models.ThreadKindTeacher)
	require.NoError(t, err)
	other, err := repo.FindOrCreate(ctx, 1, 11, models.ThreadKindTeacher)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, other.ID)
}

func TestAppendAndListMessagesKeepsOrder(t *testing.T) {
	repo := setupThreadRepo(t)
	ctx := context.Background()

	thread, err := repo.FindOrCreate(ctx, 2, 20, models.ThreadKindTeacher)
	require.NoError(t, err)

	correct := true
	_, err = repo.AppendMessage(ctx, thread.ID, models.ChatRoleLearner, "question", nil)
	require.NoError(t, err)
	_, err = repo.AppendMessage(ctx, thread.ID, models.ChatRoleTutor, "answer", &correct)
	require.NoError(t, err)

	messages, err := repo.ListMessages(ctx, thread.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "question", messages[0].Text)
	require.Nil(t, messages[0].IsCorrect)
	require.Equal(t, "answer", messages[1].Text)
	require.NotNil(t, messages[1].IsCorrect)
	require.True(t, *messages[1].IsCorrect)
}
