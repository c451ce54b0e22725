package dto

import "time"

// CreateQuizRequest is the request body for creating a quiz from a video URL
// @Description Request body for quiz creation
type CreateQuizRequest struct {
	URL string `json:"url"`
}

// UpdateQuizRequest is the request body for partially updating a quiz.
// Nil fields are left untouched.
type UpdateQuizRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	VideoURL    *string `json:"video_url,omitempty"`
}

// QuestionResponse represents a question in the API response
type QuestionResponse struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Options   []string  `json:"options"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuizResponse represents a quiz with its questions in the API response
// @Description Quiz information
type QuizResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	VideoURL    string             `json:"video_url"`
	Questions   []QuestionResponse `json:"questions"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// QuizListResponse represents a list of quizzes in the API response
type QuizListResponse struct {
	Quizzes []QuizResponse `json:"quizzes"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}
