package tutor

import (
	"fmt"
	"strings"

	"github.com/danieliancu/AICodeMaster/pkg/ai"
)

// Output shape names declared to the model provider.
const (
	feedbackShapeName = "teacher-feedback"
	chatShapeName     = "teacher-chat"
)

// FeedbackShape declares the JSON fields expected from a feedback call.
// Sections are optional on the wire: adherence is probabilistic and the
// normalizer derives them from free text when absent.
func FeedbackShape() *ai.Schema {
	return &ai.Schema{
		Name: feedbackShapeName,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"sections": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"feedback":  map[string]any{"type": "string"},
				"isCorrect": map[string]any{"type": "boolean"},
			},
			"required": []any{"isCorrect"},
		},
	}
}

// ChatShape declares the JSON fields expected from a chat call.
func ChatShape() *ai.Schema {
	return &ai.Schema{
		Name: chatShapeName,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"short": map[string]any{"type": "string"},
				"detailsSections": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"details": map[string]any{"type": "string"},
			},
			"required": []any{"short"},
		},
	}
}

type technologyRow struct {
	technology Technology
	label      string
	targetHint string
}

var technologyRows = []technologyRow{
	{technology: TechnologyHTML, label: "HTML"},
	{technology: TechnologyCSS, label: "CSS", targetHint: "(visual example styles)"},
	{technology: TechnologyJavaScript, label: "JS"},
}

// technologyContext renders the target/student code pairs for every pane.
// Panes outside the lesson's technology set are replaced with a fixed
// placeholder so the model never grades work outside lesson scope.
func technologyContext(exercise Exercise, snapshot Snapshot) string {
	active := make(map[Technology]bool, 3)
	for _, tech := range exercise.ActiveTechnologies() {
		active[tech] = true
	}

	targets := map[Technology]string{
		TechnologyHTML:       exercise.TargetHTML,
		TechnologyCSS:        exercise.TargetCSS,
		TechnologyJavaScript: exercise.TargetJS,
	}
	student := map[Technology]string{
		TechnologyHTML:       snapshot.HTML,
		TechnologyCSS:        snapshot.CSS,
		TechnologyJavaScript: snapshot.JS,
	}

	lines := make([]string, 0, len(technologyRows))
	for _, row := range technologyRows {
		title := row.label
		if row.targetHint != "" {
			title = row.label + " " + row.targetHint
		}
		if active[row.technology] {
			lines = append(lines, fmt.Sprintf("Target %s: %s\nStudent %s: %s", title, targets[row.technology], row.label, student[row.technology]))
			continue
		}
		lines = append(lines, fmt.Sprintf("Target %s: Not part of this lesson.\nStudent %s: Ignore, %s is not part of this lesson.", title, row.label, row.label))
	}

	return strings.Join(lines, "\n")
}

func writeCommonDirectives(b *strings.Builder, language Language) {
	b.WriteString("If the code is still starter boilerplate/minimal unchanged template, do not praise it.\n")
	b.WriteString("Treat starter boilerplate as not yet meaningful progress.\n")
	b.WriteString("The Target HTML/CSS/JS describe the expected visual example shown in preview.\n")
	b.WriteString(fmt.Sprintf("When referencing the expected preview panel in your response, call it %q.\n", targetPanelLabels[language]))
	b.WriteString("Respond only in the declared JSON shape. Do not use markdown emphasis markers.\n")
	b.WriteString(languageInstructions[language])
}

// ComposeFeedbackPrompt builds the deterministic feedback prompt for the
// given request and mode. Pure function: same inputs, same prompt.
func ComposeFeedbackPrompt(req EvaluationRequest, mode Mode) (string, *ai.Schema) {
	technologies := req.Exercise.ActiveTechnologies()
	names := make([]string, len(technologies))
	for i, tech := range technologies {
		names[i] = string(tech)
	}

	b := &strings.Builder{}
	b.WriteString("You are an expert AI Web Development Teacher.\n")
	fmt.Fprintf(b, "Exercise: %s\n", req.Exercise.Title)
	fmt.Fprintf(b, "Description: %s\n", req.Exercise.Description)
	fmt.Fprintf(b, "Technologies in this lesson: %s\n", strings.Join(names, ", "))
	b.WriteString(technologyContext(req.Exercise, req.Snapshot))
	b.WriteString("\n")
	if mode == ModeRealTime {
		b.WriteString("The student is typing now. Give feedback under 20 words.\n")
	} else {
		b.WriteString("The student asked for review. Provide concise but specific feedback.\n")
	}
	b.WriteString("Return JSON with sections (up to 3 short feedback points) and isCorrect.\n")
	writeCommonDirectives(b, req.Language)

	return b.String(), FeedbackShape()
}

// ComposeChatPrompt builds the chat prompt and the transcript history to pass
// back to the model. Pure function.
func ComposeChatPrompt(req ChatRequest) (string, []ai.Message, *ai.Schema) {
	technologies := req.Exercise.ActiveTechnologies()
	names := make([]string, len(technologies))
	for i, tech := range technologies {
		names[i] = string(tech)
	}

	b := &strings.Builder{}
	b.WriteString("You are an expert AI Web Development Teacher.\n")
	fmt.Fprintf(b, "Exercise: %s\n", req.Exercise.Title)
	fmt.Fprintf(b, "Description: %s\n", req.Exercise.Description)
	fmt.Fprintf(b, "Technologies in this lesson: %s\n", strings.Join(names, ", "))
	b.WriteString(technologyContext(req.Exercise, req.Snapshot))
	b.WriteString("\n")
	fmt.Fprintf(b, "Question: %s\n", req.Question)
	b.WriteString("Guide the student, do not give the complete final solution.\n")
	b.WriteString("Return JSON with:\n")
	b.WriteString("- short: short answer only, strict to the question, max 3 short sentences.\n")
	b.WriteString("- detailsSections: extended explanation, examples, and next steps as separate points.\n")
	writeCommonDirectives(b, req.Language)

	history := make([]ai.Message, 0, len(req.Transcript))
	for _, msg := range req.Transcript {
		role := ai.RoleUser
		if msg.Role == RoleTutor {
			role = ai.RoleModel
		}
		history = append(history, ai.Message{Role: role, Text: msg.Text})
	}

	return b.String(), history, ChatShape()
}
