package tutor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danieliancu/AICodeMaster/pkg/ai"
)

const exerciseJSON = `{
	"title": "Build a **Pricing** Table",
	"description": "Lay out three plans side by side.",
	"technologies": ["HTML", "css", "ruby"],
	"targetHtml": "<div class='plans'></div>",
	"targetCss": ".plans{display:flex}",
	"targetJs": "console.log('pricing');",
	"hints": ["Use flex for the row", "  ", "Highlight the middle plan"]
}`

func TestComposeExercisePromptCarriesTheme(t *testing.T) {
	prompt, shape := ComposeExercisePrompt("CSS Grid Gallery")
	require.Contains(t, prompt, `"CSS Grid Gallery"`)
	require.Contains(t, prompt, "Allowed technologies: html, css, javascript.")
	require.Equal(t, "teacher-exercise", shape.Name)
}

func TestNormalizeExerciseSanitizesProseKeepsCode(t *testing.T) {
	exercise, err := NormalizeExercise(exerciseJSON)
	require.NoError(t, err)
	require.Equal(t, "Build a Pricing Table", exercise.Title)
	require.Equal(t, "Lay out three plans side by side.", exercise.Description)
	require.Equal(t, "<div class='plans'></div>", exercise.TargetHTML)
	require.Equal(t, ".plans{display:flex}", exercise.TargetCSS)
	require.Equal(t, []Technology{TechnologyHTML, TechnologyCSS}, exercise.Technologies)
	require.Equal(t, []string{"Use flex for the row", "Highlight the middle plan"}, exercise.Hints)
}

func TestNormalizeExerciseRejectsMissingField(t *testing.T) {
	_, err := NormalizeExercise(`{"title":"Cards","description":"Build cards."}`)
	require.ErrorIs(t, err, ErrModelOutput)
}

func TestNormalizeExerciseRejectsEmptyTitle(t *testing.T) {
	raw := `{"title":"  ","description":"d","technologies":[],"targetHtml":"","targetCss":"","targetJs":"","hints":[]}`
	_, err := NormalizeExercise(raw)
	require.ErrorIs(t, err, ErrModelOutput)
}

func TestGenerateExerciseDefaultsTheme(t *testing.T) {
	f := setupTutorService(t)
	f.generator.AddResponse(ai.MockResponse{Text: exerciseJSON})

	exercise, err := f.service.GenerateExercise(context.Background(), "   ")
	require.NoError(t, err)
	require.Equal(t, "Build a Pricing Table", exercise.Title)

	require.Len(t, f.generator.Calls, 1)
	require.Contains(t, f.generator.Calls[0].Prompt, DefaultExerciseTheme)
	require.Equal(t, "teacher-exercise", f.generator.Calls[0].Schema.Name)
}

func TestGenerateExerciseProviderError(t *testing.T) {
	f := setupTutorService(t)
	f.generator.AddResponse(ai.MockResponse{Err: errors.New("quota exceeded")})

	_, err := f.service.GenerateExercise(context.Background(), "Forms")
	require.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestGenerateExerciseRejectsMalformedOutput(t *testing.T) {
	f := setupTutorService(t)
	f.generator.AddResponse(ai.MockResponse{Text: "not json"})

	_, err := f.service.GenerateExercise(context.Background(), "Forms")
	require.ErrorIs(t, err, ErrModelOutput)
}
