package tutor

import (
	"time"
)

// Technology identifies one of the editable code panes of a lesson.
type Technology string

const (
	TechnologyHTML       Technology = "html"
	TechnologyCSS        Technology = "css"
	TechnologyJavaScript Technology = "javascript"
)

// AllTechnologies lists every technology a lesson can activate, in pane order.
var AllTechnologies = []Technology{TechnologyHTML, TechnologyCSS, TechnologyJavaScript}

// Language is the language the model is instructed to answer in.
type Language string

const (
	LanguageRomanian   Language = "ro"
	LanguageEnglish    Language = "en"
	LanguageSpanish    Language = "es"
	LanguageFrench     Language = "fr"
	LanguageGerman     Language = "de"
	LanguageItalian    Language = "it"
	LanguagePortuguese Language = "pt"
)

// DefaultLanguage is used when a request carries no recognised language.
const DefaultLanguage = LanguageRomanian

// AllLanguages lists every supported answer language, default first.
var AllLanguages = []Language{
	LanguageRomanian,
	LanguageEnglish,
	LanguageSpanish,
	LanguageFrench,
	LanguageGerman,
	LanguageItalian,
	LanguagePortuguese,
}

var languageInstructions = map[Language]string{
	LanguageRomanian:   "Respond in Romanian.",
	LanguageEnglish:    "Respond in English.",
	LanguageSpanish:    "Respond in Spanish.",
	LanguageFrench:     "Respond in French.",
	LanguageGerman:     "Respond in German.",
	LanguageItalian:    "Respond in Italian.",
	LanguagePortuguese: "Respond in Portuguese.",
}

var targetPanelLabels = map[Language]string{
	LanguageRomanian:   "Obiectiv",
	LanguageEnglish:    "Target",
	LanguageSpanish:    "Objetivo",
	LanguageFrench:     "Objectif",
	LanguageGerman:     "Ziel",
	LanguageItalian:    "Obiettivo",
	LanguagePortuguese: "Objetivo",
}

// IsLanguage reports whether value names a supported answer language.
func IsLanguage(value string) bool {
	_, ok := languageInstructions[Language(value)]
	return ok
}

// NormalizeLanguage maps an arbitrary value onto a supported language,
// falling back to the default.
func NormalizeLanguage(value string) Language {
	if IsLanguage(value) {
		return Language(value)
	}
	return DefaultLanguage
}

// Exercise is the immutable per-lesson descriptor the tutor grades against.
type Exercise struct {
	Title        string
	Description  string
	TargetHTML   string
	TargetCSS    string
	TargetJS     string
	Hints        []string
	Technologies []Technology
}

// ActiveTechnologies returns the exercise's technology set, defaulting to all
// three panes when the lesson does not restrict them.
func (e Exercise) ActiveTechnologies() []Technology {
	if len(e.Technologies) == 0 {
		return AllTechnologies
	}

	active := make([]Technology, 0, len(e.Technologies))
	for _, tech := range e.Technologies {
		switch tech {
		case TechnologyHTML, TechnologyCSS, TechnologyJavaScript:
			active = append(active, tech)
		}
	}
	if len(active) == 0 {
		return AllTechnologies
	}
	return active
}

// Snapshot is the learner's code across all panes at one instant. The tutor
// only ever receives a read-only copy at call time.
type Snapshot struct {
	HTML string
	CSS  string
	JS   string
}

// Mode distinguishes the two evaluation trigger paths.
type Mode string

const (
	// ModeOnDemand is an explicit learner-initiated review.
	ModeOnDemand Mode = "on_demand"
	// ModeRealTime is a debounced evaluation fired while the learner types.
	ModeRealTime Mode = "real_time"
)

// EvaluationRequest carries everything one feedback call needs. Constructed
// fresh per call and never mutated afterwards.
type EvaluationRequest struct {
	UserID   uint
	LessonID uint
	Exercise Exercise
	Snapshot Snapshot
	Language Language
}

// ChatRequest extends an evaluation request with the learner's question and
// the transcript passed back to the model.
type ChatRequest struct {
	UserID     uint
	LessonID   uint
	Exercise   Exercise
	Snapshot   Snapshot
	Language   Language
	Question   string
	Transcript []ChatMessage
}

// Verdict is the canonical outcome of a feedback evaluation. FeedbackText is
// always normalized to the three-section numbered layout.
type Verdict struct {
	FeedbackText string
	IsCorrect    bool
}

// ChatReply is the canonical outcome of a chat call. Text is the short answer
// and the expandable details joined by the sentinel separator.
type ChatReply struct {
	Short   string
	Details string
	Text    string
}

// Role identifies the author of a ledger message.
type Role string

const (
	RoleLearner Role = "user"
	RoleTutor   Role = "model"
)

// ChatMessage is one entry of the session transcript.
type ChatMessage struct {
	ID        string
	Role      Role
	Text      string
	Timestamp time.Time
}
