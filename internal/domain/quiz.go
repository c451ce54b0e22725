package domain

import (
	"time"
)

const (
	// QuestionOptionCount is the required number of options per question.
	QuestionOptionCount = 4

	// MaxDescriptionLength bounds the quiz description.
	MaxDescriptionLength = 150

	// MaxTitleLength bounds the quiz title.
	MaxTitleLength = 255

	// MaxQuestionTextLength bounds the question text.
	MaxQuestionTextLength = 500
)

// ValidationError represents a validation error
type ValidationError struct {
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

func NewValidationError(message string) error {
	return &ValidationError{message: message}
}

// Quiz represents a multiple-choice quiz generated from a video
type Quiz struct {
	ID          string
	Title       string
	Description string
	VideoURL    string
	CreatedBy   string
	Questions   []*Question
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewQuiz creates a new Quiz instance. Identity and timestamps are assigned
// by the persistence layer, keeping assembly deterministic.
func NewQuiz(title, description, videoURL string, questions []*Question) *Quiz {
	return &Quiz{
		Title:       title,
		Description: description,
		VideoURL:    videoURL,
		Questions:   questions,
	}
}

// Validate validates the quiz
func (q *Quiz) Validate() error {
	if q.Title == "" {
		return NewValidationError("title is required")
	}
	if len(q.Title) > MaxTitleLength {
		return NewValidationError("title is too long")
	}
	if len(q.Description) > MaxDescriptionLength {
		return NewValidationError("description is too long")
	}
	if q.VideoURL == "" {
		return NewValidationError("video URL is required")
	}
	if len(q.Questions) == 0 {
		return NewValidationError("at least one question is required")
	}
	for _, question := range q.Questions {
		if err := question.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Question represents a single multiple-choice question.
// Options are ordered and the answer must be byte-equal to exactly one of them.
type Question struct {
	ID        string
	QuizID    string
	Text      string
	Options   []string
	Answer    string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewQuestion creates a new Question instance
func NewQuestion(text string, options []string, answer string) *Question {
	return &Question{
		Text:    text,
		Options: options,
		Answer:  answer,
	}
}

// Validate validates the question invariants: exactly four pairwise-distinct
// non-empty options, and an answer equal to exactly one of them.
func (q *Question) Validate() error {
	if q.Text == "" {
		return NewValidationError("question text is required")
	}
	if len(q.Options) != QuestionOptionCount {
		return NewValidationError("question must have exactly four options")
	}
	seen := make(map[string]struct{}, QuestionOptionCount)
	for _, opt := range q.Options {
		if opt == "" {
			return NewValidationError("question options must be non-empty")
		}
		if _, dup := seen[opt]; dup {
			return NewValidationError("question options must be distinct")
		}
		seen[opt] = struct{}{}
	}
	matches := 0
	for _, opt := range q.Options {
		if opt == q.Answer {
			matches++
		}
	}
	if matches != 1 {
		return NewValidationError("answer must match exactly one option")
	}
	return nil
}
