package tutor

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/danieliancu/AICodeMaster/pkg/ai"
)

const exerciseShapeName = "teacher-exercise"

// DefaultExerciseTheme is used when a generation request names no theme.
const DefaultExerciseTheme = "Basic Web Layout"

var exerciseGenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "aicodemaster",
	Subsystem: "tutor",
	Name:      "exercise_generations_total",
	Help:      "Exercise generations by outcome.",
}, []string{"outcome"})

// ExerciseShape declares the JSON fields expected from an exercise
// generation call. Every field is required: a partial exercise cannot be
// graded against.
func ExerciseShape() *ai.Schema {
	return &ai.Schema{
		Name: exerciseShapeName,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":       map[string]any{"type": "string"},
				"description": map[string]any{"type": "string"},
				"technologies": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"targetHtml": map[string]any{"type": "string"},
				"targetCss":  map[string]any{"type": "string"},
				"targetJs":   map[string]any{"type": "string"},
				"hints": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required": []any{"title", "description", "technologies", "targetHtml", "targetCss", "targetJs", "hints"},
		},
	}
}

// ComposeExercisePrompt builds the deterministic exercise generation prompt
// for a theme. Pure function.
func ComposeExercisePrompt(theme string) (string, *ai.Schema) {
	b := &strings.Builder{}
	fmt.Fprintf(b, "Generate a web development exercise based on the theme: %q.\n", theme)
	b.WriteString("Provide title, description, technologies, targetHtml, targetCss, targetJs and 3 hints.\n")
	b.WriteString("Allowed technologies: html, css, javascript.\n")
	b.WriteString("Respond only in the declared JSON shape. Do not use markdown emphasis markers.\n")

	return b.String(), ExerciseShape()
}

type exercisePayload struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	TargetHTML   string   `json:"targetHtml"`
	TargetCSS    string   `json:"targetCss"`
	TargetJS     string   `json:"targetJs"`
	Hints        []string `json:"hints"`
}

// NormalizeExercise converts raw model text into a canonical Exercise. Prose
// fields are sanitized like every other model text; target code is kept
// verbatim because stripping would corrupt the sources. Unknown technology
// names are dropped.
func NormalizeExercise(raw string) (Exercise, error) {
	var payload exercisePayload
	if err := decodeShape(raw, ExerciseShape(), &payload); err != nil {
		return Exercise{}, err
	}

	title := sanitizeText(payload.Title)
	if title == "" {
		return Exercise{}, fmt.Errorf("%w: empty exercise title", ErrModelOutput)
	}
	description := sanitizeText(payload.Description)
	if description == "" {
		return Exercise{}, fmt.Errorf("%w: empty exercise description", ErrModelOutput)
	}

	technologies := make([]Technology, 0, len(payload.Technologies))
	for _, name := range payload.Technologies {
		tech := Technology(strings.ToLower(strings.TrimSpace(name)))
		switch tech {
		case TechnologyHTML, TechnologyCSS, TechnologyJavaScript:
			technologies = append(technologies, tech)
		}
	}

	hints := make([]string, 0, len(payload.Hints))
	for _, hint := range payload.Hints {
		if clean := sanitizeText(hint); clean != "" {
			hints = append(hints, clean)
		}
	}

	return Exercise{
		Title:        title,
		Description:  description,
		TargetHTML:   strings.TrimSpace(payload.TargetHTML),
		TargetCSS:    strings.TrimSpace(payload.TargetCSS),
		TargetJS:     strings.TrimSpace(payload.TargetJS),
		Hints:        hints,
		Technologies: technologies,
	}, nil
}

// GenerateExercise asks the model for a fresh exercise on a theme. A blank
// theme falls back to the default. Stateless: no session or ledger involved.
func (s *Service) GenerateExercise(ctx context.Context, theme string) (Exercise, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = DefaultExerciseTheme
	}

	prompt, shape := ComposeExercisePrompt(theme)
	raw, err := s.generator.Generate(ctx, ai.GenerateRequest{
		Prompt: prompt,
		Schema: shape,
	})
	if err != nil {
		exerciseGenerationsTotal.WithLabelValues("provider_error").Inc()
		return Exercise{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	exercise, err := NormalizeExercise(raw)
	if err != nil {
		exerciseGenerationsTotal.WithLabelValues("model_output_error").Inc()
		return Exercise{}, err
	}
	exerciseGenerationsTotal.WithLabelValues("ok").Inc()

	s.logger.Info().Str("theme", theme).Str("title", exercise.Title).Msg("exercise generated")
	return exercise, nil
}
