package service_test

import (
	"context"
	"io"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/danieliancu/AICodeMaster/internal/dto"
	"github.com/danieliancu/AICodeMaster/internal/models"
	"github.com/danieliancu/AICodeMaster/internal/repository"
	"github.com/danieliancu/AICodeMaster/internal/service"
	"github.com/danieliancu/AICodeMaster/internal/tutor"
)

type seedFixture struct {
	lessons repository.LessonRepository
	service service.SeedService
}

func setupSeedService(t *testing.T, enabled bool, token string) *seedFixture {
	t.Helper()

	db := openTestDB(t, &models.Lesson{}, &models.LessonLocalization{})
	lessons := repository.NewLessonRepository(db)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := service.NewSeedService(lessons, validate, enabled, token, zerolog.New(io.Discard))

	return &seedFixture{lessons: lessons, service: svc}
}

func TestSeedLessonsDisabled(t *testing.T) {
	fx := setupSeedService(t, false, "seed-token")

	_, err := fx.service.SeedLessons(context.Background(), "seed-token", nil)
	require.ErrorIs(t, err, service.ErrSeedDisabled)
}

func TestSeedLessonsRejectsBadToken(t *testing.T) {
	fx := setupSeedService(t, true, "seed-token")

	_, err := fx.service.SeedLessons(context.Background(), "wrong", nil)
	require.ErrorIs(t, err, service.ErrSeedUnauthorized)
}

func TestSeedLessonsRejectsBlankConfiguredToken(t *testing.T) {
	fx := setupSeedService(t, true, "  ")

	_, err := fx.service.SeedLessons(context.Background(), "", nil)
	require.ErrorIs(t, err, service.ErrSeedUnauthorized)
}

func TestSeedLessonsLoadsStarterCatalog(t *testing.T) {
	fx := setupSeedService(t, true, "seed-token")

	affected, err := fx.service.SeedLessons(context.Background(), "seed-token", nil)
	require.NoError(t, err)
	require.EqualValues(t, 3, affected)

	lessons, err := fx.lessons.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, lessons, 3)
	require.Equal(t, "basic-layout", lessons[0].Slug)
	require.Equal(t, []string{"html", "css", "javascript"}, lessons[0].TechnologyList())
	require.Len(t, lessons[0].Localizations, len(tutor.AllLanguages))

	localization := lessons[0].Localizations[0]
	require.NotEmpty(t, localization.Title)
	require.Contains(t, localization.TargetCodeMap(), "html")
	require.NotEmpty(t, localization.HintList())
}

func TestSeedLessonsUpsertUpdatesExisting(t *testing.T) {
	fx := setupSeedService(t, true, "seed-token")
	ctx := context.Background()

	item := dto.LessonSeed{
		Slug:        "flex-nav",
		Name:        "Flexbox Navigation",
		Title:       "Flexbox Navigation",
		Description: "Build a horizontal navigation bar.",
		TargetCode:  map[string]string{"html": "<nav></nav>"},
		Hints:       []string{"Use display flex."},
	}

	affected, err := fx.service.SeedLessons(ctx, "seed-token", []dto.LessonSeed{item})
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	item.Title = "Flexbox Navigation Bar"
	_, err = fx.service.SeedLessons(ctx, "seed-token", []dto.LessonSeed{item})
	require.NoError(t, err)

	lessons, err := fx.lessons.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	require.Len(t, lessons[0].Localizations, len(tutor.AllLanguages))
	require.Equal(t, "Flexbox Navigation Bar", lessons[0].Localizations[0].Title)
}

func TestSeedLessonsValidatesEntries(t *testing.T) {
	fx := setupSeedService(t, true, "seed-token")

	_, err := fx.service.SeedLessons(context.Background(), "seed-token", []dto.LessonSeed{{Slug: "no-name"}})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)

	lessons, err := fx.lessons.ListActive(context.Background())
	require.NoError(t, err)
	require.Empty(t, lessons)
}
