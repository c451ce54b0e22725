package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vidquiz/internal/domain"
	"vidquiz/internal/repository/models"
	"vidquiz/internal/util"

	"github.com/jmoiron/sqlx"
)

// QuizDatabaseAdapter implements domain.QuizRepository using sqlx.DB
type QuizDatabaseAdapter struct {
	db *sqlx.DB
}

// NewQuizDatabaseAdapter creates a new instance of QuizDatabaseAdapter
func NewQuizDatabaseAdapter(db *sqlx.DB) domain.QuizRepository {
	return &QuizDatabaseAdapter{db: db}
}

// SaveQuiz implements domain.QuizRepository. It assigns IDs and timestamps to
// the quiz and its questions; callers wrap it in a transaction so the quiz and
// its questions are stored atomically.
func (a *QuizDatabaseAdapter) SaveQuiz(ctx context.Context, quiz *domain.Quiz) error {
	if quiz == nil {
		return fmt.Errorf("cannot save nil quiz")
	}

	exec := GetExecutor(ctx, a.db)
	now := time.Now()
	quiz.ID = util.NewULID()
	quiz.CreatedAt = now
	quiz.UpdatedAt = now

	quizQuery := `INSERT INTO quizzes (
		id, title, description, video_url, created_by, created_at, updated_at
	) VALUES (
		:1, :2, :3, :4, :5, :6, :7
	)`

	_, err := exec.ExecContext(ctx, quizQuery,
		quiz.ID,
		quiz.Title,
		quiz.Description,
		quiz.VideoURL,
		quiz.CreatedBy,
		quiz.CreatedAt,
		quiz.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert quiz: %w", err)
	}

	questionQuery := `INSERT INTO questions (
		id, quiz_id, question_text, options, answer, position, created_at, updated_at
	) VALUES (
		:1, :2, :3, :4, :5, :6, :7, :8
	)`

	for _, question := range quiz.Questions {
		question.ID = util.NewULID()
		question.QuizID = quiz.ID
		question.CreatedAt = now
		question.UpdatedAt = now

		options, err := models.StringSlice(question.Options).Value()
		if err != nil {
			return fmt.Errorf("failed to encode question options: %w", err)
		}

		_, err = exec.ExecContext(ctx, questionQuery,
			question.ID,
			question.QuizID,
			question.Text,
			options,
			question.Answer,
			question.Position,
			question.CreatedAt,
			question.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert question: %w", err)
		}
	}

	return nil
}

// GetQuizByID implements domain.QuizRepository. Returns (nil, nil) when no
// quiz matches.
func (a *QuizDatabaseAdapter) GetQuizByID(ctx context.Context, id string) (*domain.Quiz, error) {
	exec := GetExecutor(ctx, a.db)

	var modelQuiz models.Quiz
	query := `SELECT
		id "id",
		title "title",
		description "description",
		video_url "video_url",
		created_by "created_by",
		created_at "created_at",
		updated_at "updated_at",
		deleted_at "deleted_at"
	FROM quizzes
	WHERE id = :1
	AND deleted_at IS NULL`

	err := exec.GetContext(ctx, &modelQuiz, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by ID %s: %w", id, err)
	}

	questions, err := a.getQuestions(ctx, exec, id)
	if err != nil {
		return nil, err
	}

	return toDomainQuiz(&modelQuiz, questions), nil
}

// GetQuizzesByUser implements domain.QuizRepository, newest quizzes first.
func (a *QuizDatabaseAdapter) GetQuizzesByUser(ctx context.Context, userID string) ([]*domain.Quiz, error) {
	exec := GetExecutor(ctx, a.db)

	var modelQuizzes []models.Quiz
	query := `SELECT
		id "id",
		title "title",
		description "description",
		video_url "video_url",
		created_by "created_by",
		created_at "created_at",
		updated_at "updated_at",
		deleted_at "deleted_at"
	FROM quizzes
	WHERE created_by = :1
	AND deleted_at IS NULL
	ORDER BY created_at DESC`

	if err := exec.SelectContext(ctx, &modelQuizzes, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get quizzes for user %s: %w", userID, err)
	}

	quizzes := make([]*domain.Quiz, 0, len(modelQuizzes))
	for i := range modelQuizzes {
		questions, err := a.getQuestions(ctx, exec, modelQuizzes[i].ID)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, toDomainQuiz(&modelQuizzes[i], questions))
	}
	return quizzes, nil
}

// UpdateQuiz implements domain.QuizRepository
func (a *QuizDatabaseAdapter) UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	exec := GetExecutor(ctx, a.db)
	quiz.UpdatedAt = time.Now()

	query := `UPDATE quizzes SET
		title = :1,
		description = :2,
		video_url = :3,
		updated_at = :4
	WHERE id = :5
	AND deleted_at IS NULL`

	_, err := exec.ExecContext(ctx, query,
		quiz.Title,
		quiz.Description,
		quiz.VideoURL,
		quiz.UpdatedAt,
		quiz.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update quiz %s: %w", quiz.ID, err)
	}
	return nil
}

// DeleteQuiz implements domain.QuizRepository. The quiz is soft-deleted; its
// questions are removed outright.
func (a *QuizDatabaseAdapter) DeleteQuiz(ctx context.Context, id string) error {
	exec := GetExecutor(ctx, a.db)

	if _, err := exec.ExecContext(ctx, `DELETE FROM questions WHERE quiz_id = :1`, id); err != nil {
		return fmt.Errorf("failed to delete questions for quiz %s: %w", id, err)
	}

	query := `UPDATE quizzes SET deleted_at = :1 WHERE id = :2 AND deleted_at IS NULL`
	if _, err := exec.ExecContext(ctx, query, time.Now(), id); err != nil {
		return fmt.Errorf("failed to delete quiz %s: %w", id, err)
	}
	return nil
}

func (a *QuizDatabaseAdapter) getQuestions(ctx context.Context, exec DBTX, quizID string) ([]*domain.Question, error) {
	var modelQuestions []models.Question
	query := `SELECT
		id "id",
		quiz_id "quiz_id",
		question_text "question_text",
		options "options",
		answer "answer",
		position "position",
		created_at "created_at",
		updated_at "updated_at"
	FROM questions
	WHERE quiz_id = :1
	ORDER BY position ASC`

	if err := exec.SelectContext(ctx, &modelQuestions, query, quizID); err != nil {
		return nil, fmt.Errorf("failed to get questions for quiz %s: %w", quizID, err)
	}

	questions := make([]*domain.Question, 0, len(modelQuestions))
	for i := range modelQuestions {
		questions = append(questions, toDomainQuestion(&modelQuestions[i]))
	}
	return questions, nil
}

func toDomainQuiz(m *models.Quiz, questions []*domain.Question) *domain.Quiz {
	return &domain.Quiz{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		VideoURL:    m.VideoURL,
		CreatedBy:   m.CreatedBy,
		Questions:   questions,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toDomainQuestion(m *models.Question) *domain.Question {
	return &domain.Question{
		ID:        m.ID,
		QuizID:    m.QuizID,
		Text:      m.QuestionText,
		Options:   m.Options,
		Answer:    m.Answer,
		Position:  m.Position,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
