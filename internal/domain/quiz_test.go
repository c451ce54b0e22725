package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuestion() *Question {
	return NewQuestion("Q1", []string{"A", "B", "C", "D"}, "B")
}

func validQuiz() *Quiz {
	return &Quiz{
		Title:       "T",
		Description: "D",
		VideoURL:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Questions:   []*Question{validQuestion()},
	}
}

func TestQuestionValidate(t *testing.T) {
	assert.NoError(t, validQuestion().Validate())

	cases := []struct {
		name   string
		mutate func(q *Question)
	}{
		{"empty text", func(q *Question) { q.Text = "" }},
		{"three options", func(q *Question) { q.Options = []string{"A", "B", "C"} }},
		{"five options", func(q *Question) { q.Options = []string{"A", "B", "C", "D", "E"} }},
		{"duplicate options", func(q *Question) { q.Options = []string{"A", "A", "C", "D"}; q.Answer = "C" }},
		{"empty option", func(q *Question) { q.Options = []string{"A", "B", "C", ""} }},
		{"answer outside options", func(q *Question) { q.Answer = "E" }},
		{"answer differs by case", func(q *Question) { q.Answer = "b" }},
		{"empty answer", func(q *Question) { q.Answer = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := validQuestion()
			tc.mutate(q)
			require.Error(t, q.Validate())
		})
	}
}

func TestQuizValidate(t *testing.T) {
	assert.NoError(t, validQuiz().Validate())

	cases := []struct {
		name   string
		mutate func(q *Quiz)
	}{
		{"empty title", func(q *Quiz) { q.Title = "" }},
		{"oversized title", func(q *Quiz) { q.Title = strings.Repeat("x", MaxTitleLength+1) }},
		{"oversized description", func(q *Quiz) { q.Description = strings.Repeat("x", MaxDescriptionLength+1) }},
		{"empty video url", func(q *Quiz) { q.VideoURL = "" }},
		{"no questions", func(q *Quiz) { q.Questions = nil }},
		{"invalid question", func(q *Quiz) { q.Questions[0].Answer = "E" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quiz := validQuiz()
			tc.mutate(quiz)
			require.Error(t, quiz.Validate())
		})
	}
}

func TestNewQuizLeavesIdentityToPersistence(t *testing.T) {
	quiz := NewQuiz("T", "D", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", []*Question{validQuestion()})
	assert.Empty(t, quiz.ID)
	assert.True(t, quiz.CreatedAt.IsZero())
	assert.True(t, quiz.UpdatedAt.IsZero())
}
