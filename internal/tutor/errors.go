package tutor

import "errors"

var (
	// ErrProviderUnavailable indicates the model call itself failed.
	ErrProviderUnavailable = errors.New("model provider unavailable")
	// ErrModelOutput indicates the model response did not parse into the
	// declared shape, or a required field was empty after sanitization.
	ErrModelOutput = errors.New("model output did not match the declared shape")
	// ErrEvaluationInFlight indicates another evaluation for the same
	// session has not finished yet.
	ErrEvaluationInFlight = errors.New("an evaluation is already in flight")
	// ErrEmptyQuestion indicates a chat call with no usable question text.
	ErrEmptyQuestion = errors.New("question must not be empty")
)
