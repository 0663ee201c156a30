package tutor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/unicode/norm"

	"github.com/danieliancu/AICodeMaster/pkg/ai"
)

// Separator is the sentinel token dividing a short chat answer from its
// expandable detail. The rendering layer splits on it, so it must never
// survive inside sanitized model text.
const Separator = "[[MORE]]"

// sectionFiller pads the feedback layout when the model supplied fewer than
// three usable points.
const sectionFiller = "Keep refining your code toward the target example."

var schemaCache sync.Map // map[string]*jsonschema.Schema

// compiledShape returns the compiled JSON Schema for a declared output shape.
func compiledShape(shape *ai.Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(shape.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	definition, err := json.Marshal(shape.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal shape %q: %w", shape.Name, err)
	}

	compiler := jsonschema.NewCompiler()
	url := fmt.Sprintf("shape://%s.json", shape.Name)
	if err := compiler.AddResource(url, strings.NewReader(string(definition))); err != nil {
		return nil, fmt.Errorf("add shape %q: %w", shape.Name, err)
	}

	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile shape %q: %w", shape.Name, err)
	}

	schemaCache.Store(shape.Name, compiled)
	return compiled, nil
}

// decodeShape parses raw model text against the declared shape, failing
// closed on malformed JSON or a missing required field.
func decodeShape(raw string, shape *ai.Schema, out any) error {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return fmt.Errorf("%w: %v", ErrModelOutput, err)
	}

	compiled, err := compiledShape(shape)
	if err != nil {
		return err
	}
	if err := compiled.Validate(value); err != nil {
		return fmt.Errorf("%w: %v", ErrModelOutput, err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: %v", ErrModelOutput, err)
	}

	return nil
}

// sanitizeText canonicalises one model text field: NFC form, control
// characters and replacement runes stripped, markdown emphasis and the
// sentinel token removed, surrounding space trimmed.
func sanitizeText(text string) string {
	text = norm.NFC.String(text)
	text = strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '�':
			return -1
		case r < 0x20, r == 0x7F:
			return -1
		case r >= 0x80 && r <= 0x9F:
			return -1
		default:
			return r
		}
	}, text)
	// Removing a token can reconstitute another from its own fragments
	// ("[[M[[MORE]]ORE]]", or a "**" split by the sentinel), so strip the
	// whole set repeatedly until the text is stable.
	for {
		stripped := text
		for _, token := range []string{"**", "__", Separator} {
			stripped = strings.ReplaceAll(stripped, token, "")
		}
		if stripped == text {
			break
		}
		text = stripped
	}
	return strings.TrimSpace(text)
}

var (
	numberedLinePattern = regexp.MustCompile(`^\s*\d+\.\s*(.+)$`)
	bulletLinePattern   = regexp.MustCompile(`^\s*[-*•]\s*(.+)$`)
	sentencePattern     = regexp.MustCompile(`[^.!?]+[.!?]?`)
)

// sectionsFromNumberedLines extracts lines shaped like "1. ...".
func sectionsFromNumberedLines(text string) []string {
	var sections []string
	for _, line := range strings.Split(text, "\n") {
		if match := numberedLinePattern.FindStringSubmatch(line); match != nil {
			if entry := strings.TrimSpace(match[1]); entry != "" {
				sections = append(sections, entry)
			}
		}
	}
	return sections
}

// sectionsFromBullets extracts bullet-prefixed lines.
func sectionsFromBullets(text string) []string {
	var sections []string
	for _, line := range strings.Split(text, "\n") {
		if match := bulletLinePattern.FindStringSubmatch(line); match != nil {
			if entry := strings.TrimSpace(match[1]); entry != "" {
				sections = append(sections, entry)
			}
		}
	}
	return sections
}

// sectionsFromSentences splits free prose on terminal punctuation.
func sectionsFromSentences(text string) []string {
	flat := strings.Join(strings.Fields(text), " ")
	var sections []string
	for _, sentence := range sentencePattern.FindAllString(flat, -1) {
		if entry := strings.TrimSpace(sentence); entry != "" {
			sections = append(sections, entry)
		}
	}
	return sections
}

// deriveSections yields exactly three sections from the supplied array or,
// when absent, from free text via the ordered strategy chain: numbered lines,
// bullets, sentences, filler padding. Returns nil when no content at all
// could be derived.
func deriveSections(supplied []string, freeText string) []string {
	sections := make([]string, 0, 3)
	for _, entry := range supplied {
		if clean := sanitizeText(entry); clean != "" {
			sections = append(sections, clean)
		}
		if len(sections) == 3 {
			break
		}
	}

	if len(sections) == 0 {
		text := sanitizeText(freeText)
		if text == "" {
			return nil
		}
		for _, strategy := range []func(string) []string{
			sectionsFromNumberedLines,
			sectionsFromBullets,
			sectionsFromSentences,
		} {
			if extracted := strategy(text); len(extracted) > 0 {
				sections = extracted
				break
			}
		}
		if len(sections) > 3 {
			sections = sections[:3]
		}
	}

	if len(sections) == 0 {
		return nil
	}

	for len(sections) < 3 {
		sections = append(sections, sectionFiller)
	}

	return sections
}

// numberSections renders the final "1.\n2.\n3." layout.
func numberSections(sections []string) string {
	numbered := make([]string, len(sections))
	for i, section := range sections {
		numbered[i] = fmt.Sprintf("%d. %s", i+1, section)
	}
	return strings.Join(numbered, "\n")
}

type feedbackPayload struct {
	Sections  []string `json:"sections"`
	Feedback  string   `json:"feedback"`
	IsCorrect *bool    `json:"isCorrect"`
}

// NormalizeFeedback converts raw model text into a canonical Verdict.
// Malformed JSON, a missing isCorrect field, or no derivable feedback text
// are all fatal for the call.
func NormalizeFeedback(raw string) (Verdict, error) {
	var payload feedbackPayload
	if err := decodeShape(raw, FeedbackShape(), &payload); err != nil {
		return Verdict{}, err
	}
	if payload.IsCorrect == nil {
		return Verdict{}, fmt.Errorf("%w: missing isCorrect", ErrModelOutput)
	}

	sections := deriveSections(payload.Sections, payload.Feedback)
	if sections == nil {
		return Verdict{}, fmt.Errorf("%w: empty feedback text", ErrModelOutput)
	}

	return Verdict{
		FeedbackText: numberSections(sections),
		IsCorrect:    *payload.IsCorrect,
	}, nil
}

type chatPayload struct {
	Short           string   `json:"short"`
	DetailsSections []string `json:"detailsSections"`
	Details         string   `json:"details"`
}

// NormalizeChat converts raw model text into a canonical ChatReply. The short
// answer must survive sanitization; details may be empty only when no
// sections could be derived at all.
func NormalizeChat(raw string) (ChatReply, error) {
	var payload chatPayload
	if err := decodeShape(raw, ChatShape(), &payload); err != nil {
		return ChatReply{}, err
	}

	short := sanitizeText(payload.Short)
	if short == "" {
		return ChatReply{}, fmt.Errorf("%w: empty short answer", ErrModelOutput)
	}

	details := ""
	if sections := deriveSections(payload.DetailsSections, payload.Details); sections != nil {
		details = numberSections(sections)
	}

	return ChatReply{
		Short:   short,
		Details: details,
		Text:    short + "\n\n" + Separator + "\n\n" + details,
	}, nil
}

// SplitReply splits a composed chat message back into its short and details
// parts. The inverse of the composition in NormalizeChat.
func SplitReply(text string) (string, string) {
	marker := "\n\n" + Separator + "\n\n"
	if idx := strings.Index(text, marker); idx >= 0 {
		return strings.TrimSpace(text[:idx]), strings.TrimSpace(text[idx+len(marker):])
	}
	return strings.TrimSpace(text), ""
}
