package ai

import (
	"context"
	"errors"
)

// ErrEmptyResponse signals the model returned no usable text.
var ErrEmptyResponse = errors.New("empty response from model")

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser marks a message written by the learner.
	RoleUser Role = "user"
	// RoleModel marks a message produced by the model.
	RoleModel Role = "model"
)

// Message is a single turn of the transcript passed back to the model.
type Message struct {
	Role Role
	Text string
}

// Schema declares the JSON shape the model must respond with.
type Schema struct {
	// Name identifies the schema, e.g. "teacher-feedback".
	Name string
	// Definition is a JSON Schema definition as a map.
	Definition map[string]any
}

// GenerateRequest describes a single model invocation.
type GenerateRequest struct {
	System      string
	Prompt      string
	History     []Message
	Schema      *Schema
	MaxTokens   int
	Temperature float32
}

// Generator describes a language model capable of producing tutoring text.
// Implementations return the raw response text; callers own parsing.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	ModelID() string
}
