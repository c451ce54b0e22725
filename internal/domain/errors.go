package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"

	// URL validation
	CodeInvalidURL ErrorCode = "INVALID_URL"

	// Media fetch errors
	CodeFetchUnavailable    ErrorCode = "FETCH_UNAVAILABLE"
	CodeFetchNoAudioStream  ErrorCode = "FETCH_NO_AUDIO_STREAM"
	CodeFetchRateLimited    ErrorCode = "FETCH_RATE_LIMITED"
	CodeFetchNetworkFailure ErrorCode = "FETCH_NETWORK_FAILURE"

	// Transcription errors
	CodeTranscriptionEmptyAudio     ErrorCode = "TRANSCRIPTION_EMPTY_AUDIO"
	CodeTranscriptionTooLong        ErrorCode = "TRANSCRIPTION_TOO_LONG"
	CodeTranscriptionServiceFailure ErrorCode = "TRANSCRIPTION_SERVICE_FAILURE"
	CodeTranscriptionTimeout        ErrorCode = "TRANSCRIPTION_TIMEOUT"

	// Generation errors
	CodeGenerationEmptyResponse    ErrorCode = "GENERATION_EMPTY_RESPONSE"
	CodeGenerationServiceFailure   ErrorCode = "GENERATION_SERVICE_FAILURE"
	CodeGenerationRateLimited      ErrorCode = "GENERATION_RATE_LIMITED"
	CodeGenerationResponseTooLarge ErrorCode = "GENERATION_RESPONSE_TOO_LARGE"

	// Assembly errors
	CodeAssemblyNoJSONFound          ErrorCode = "ASSEMBLY_NO_JSON_FOUND"
	CodeAssemblyMissingField         ErrorCode = "ASSEMBLY_MISSING_FIELD"
	CodeAssemblyInvalidQuestionShape ErrorCode = "ASSEMBLY_INVALID_QUESTION_SHAPE"
	CodeAssemblyAnswerMismatch       ErrorCode = "ASSEMBLY_ANSWER_MISMATCH"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf extracts the ErrorCode from err, unwrapping PipelineError if needed.
// Returns CodeInternal for errors outside the taxonomy.
func CodeOf(err error) ErrorCode {
	var pipeErr *PipelineError
	if errors.As(err, &pipeErr) {
		err = pipeErr.Err
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// Helper constructors for common errors

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewForbiddenError(message string) *DomainError {
	return NewError(CodeForbidden, message, nil)
}

func NewQuizNotFoundError(quizID string) *DomainError {
	return NewError(CodeNotFound, fmt.Sprintf("Quiz not found with ID: %s", quizID), nil)
}

func NewInvalidURLError(rawURL string) *DomainError {
	return NewError(CodeInvalidURL, fmt.Sprintf("Not a supported video URL: %s", rawURL), nil)
}

// Fetch errors

func NewFetchUnavailableError(err error) *DomainError {
	return NewError(CodeFetchUnavailable, "Video is unavailable, private or removed", err)
}

func NewFetchNoAudioStreamError(err error) *DomainError {
	return NewError(CodeFetchNoAudioStream, "Video has no audio stream", err)
}

func NewFetchRateLimitedError(err error) *DomainError {
	return NewError(CodeFetchRateLimited, "Video host rate limit exceeded", err)
}

func NewFetchNetworkFailureError(err error) *DomainError {
	return NewError(CodeFetchNetworkFailure, "Network failure while downloading audio", err)
}

// Transcription errors

func NewTranscriptionEmptyAudioError() *DomainError {
	return NewError(CodeTranscriptionEmptyAudio, "Audio produced an empty transcript", nil)
}

func NewTranscriptionTooLongError(duration, limit float64) *DomainError {
	return NewError(CodeTranscriptionTooLong,
		fmt.Sprintf("Audio duration %.0fs exceeds limit of %.0fs", duration, limit), nil)
}

func NewTranscriptionServiceFailureError(err error) *DomainError {
	return NewError(CodeTranscriptionServiceFailure, "Speech-to-text service failed", err)
}

func NewTranscriptionTimeoutError(err error) *DomainError {
	return NewError(CodeTranscriptionTimeout, "Transcription timed out", err)
}

// Generation errors

func NewGenerationEmptyResponseError() *DomainError {
	return NewError(CodeGenerationEmptyResponse, "Generative model returned an empty response", nil)
}

func NewGenerationServiceFailureError(err error) *DomainError {
	return NewError(CodeGenerationServiceFailure, "Generative model service failed", err)
}

func NewGenerationRateLimitedError(err error) *DomainError {
	return NewError(CodeGenerationRateLimited, "Generative model rate limit exceeded", err)
}

func NewGenerationResponseTooLargeError(size, limit int) *DomainError {
	return NewError(CodeGenerationResponseTooLarge,
		fmt.Sprintf("Model response of %d bytes exceeds limit of %d bytes", size, limit), nil)
}

// Assembly errors

func NewAssemblyNoJSONFoundError() *DomainError {
	return NewError(CodeAssemblyNoJSONFound, "No JSON object found in model output", nil)
}

func NewAssemblyMissingFieldError(field string) *DomainError {
	return NewError(CodeAssemblyMissingField, fmt.Sprintf("Model output is missing required field: %s", field), nil)
}

func NewAssemblyInvalidQuestionShapeError(index int, reason string) *DomainError {
	return NewError(CodeAssemblyInvalidQuestionShape,
		fmt.Sprintf("Question %d is malformed: %s", index, reason), nil)
}

func NewAssemblyAnswerMismatchError(index int) *DomainError {
	return NewError(CodeAssemblyAnswerMismatch,
		fmt.Sprintf("Question %d has an answer not matching exactly one option", index), nil)
}

// Stage identifies one step of the quiz generation pipeline.
type Stage string

const (
	StageFetching     Stage = "fetching"
	StageTranscribing Stage = "transcribing"
	StageGenerating   Stage = "generating"
	StageAssembling   Stage = "assembling"
)

// PipelineError wraps a stage-specific failure so callers can tell which
// stage of the pipeline failed without losing the underlying error kind.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline stage %s failed: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError wraps err as a failure of the given stage.
func NewPipelineError(stage Stage, err error) *PipelineError {
	return &PipelineError{Stage: stage, Err: err}
}
