package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"vidquiz/internal/cache"
	"vidquiz/internal/domain"
	"vidquiz/internal/dto"
	"vidquiz/internal/logger"
	"vidquiz/internal/validation"

	"go.uber.org/zap"
)

// PipelineRunner is the part of the quiz pipeline the service depends on.
type PipelineRunner interface {
	Run(ctx context.Context, rawURL string) (*domain.Quiz, error)
}

// QuizService exposes quiz creation and CRUD operations.
type QuizService interface {
	CreateQuizFromVideo(ctx context.Context, userID, rawURL string) (*dto.QuizResponse, error)
	GetQuiz(ctx context.Context, userID, quizID string) (*dto.QuizResponse, error)
	ListQuizzes(ctx context.Context, userID string) (*dto.QuizListResponse, error)
	UpdateQuiz(ctx context.Context, userID, quizID string, req dto.UpdateQuizRequest) (*dto.QuizResponse, error)
	DeleteQuiz(ctx context.Context, userID, quizID string) error
}

type quizService struct {
	pipeline  PipelineRunner
	repo      domain.QuizRepository
	txManager domain.TransactionManager
	cache     domain.Cache
	cacheTTL  time.Duration
}

// NewQuizService creates a new QuizService instance
func NewQuizService(
	pipeline PipelineRunner,
	repo domain.QuizRepository,
	txManager domain.TransactionManager,
	cacheAdapter domain.Cache,
	cacheTTL time.Duration,
) QuizService {
	return &quizService{
		pipeline:  pipeline,
		repo:      repo,
		txManager: txManager,
		cache:     cacheAdapter,
		cacheTTL:  cacheTTL,
	}
}

// CreateQuizFromVideo runs the generation pipeline on rawURL and persists the
// resulting quiz under userID. The pipeline result is handed to the
// persistence layer only after it has passed assembly validation.
func (s *quizService) CreateQuizFromVideo(ctx context.Context, userID, rawURL string) (*dto.QuizResponse, error) {
	quiz, err := s.pipeline.Run(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	quiz.CreatedBy = userID
	if err := quiz.Validate(); err != nil {
		return nil, domain.NewInternalError("assembled quiz failed validation", err)
	}

	// Quiz and questions are persisted atomically.
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.repo.SaveQuiz(txCtx, quiz)
	})
	if err != nil {
		return nil, domain.NewInternalError("failed to save quiz", err)
	}

	logger.Get().Info("Quiz created",
		zap.String("quiz_id", quiz.ID),
		zap.String("user_id", userID),
		zap.Int("questions", len(quiz.Questions)))

	return toQuizResponse(quiz), nil
}

// cachedQuiz is the cache payload for quiz details. The owner travels with
// the response so ownership can be enforced without touching the database.
type cachedQuiz struct {
	Owner string           `json:"owner"`
	Quiz  dto.QuizResponse `json:"quiz"`
}

// GetQuiz returns a single quiz owned by userID, serving from the response
// cache when possible.
func (s *quizService) GetQuiz(ctx context.Context, userID, quizID string) (*dto.QuizResponse, error) {
	cacheKey := cache.GenerateCacheKey("quiz", "detail", quizID)
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		var entry cachedQuiz
		if unmarshalErr := json.Unmarshal([]byte(cached), &entry); unmarshalErr == nil {
			if entry.Owner != userID {
				return nil, domain.NewForbiddenError("quiz does not belong to you")
			}
			return &entry.Quiz, nil
		}
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		logger.Get().Warn("Quiz cache read failed", zap.Error(err))
	}

	quiz, err := s.authorizedQuiz(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}

	resp := toQuizResponse(quiz)
	if payload, err := json.Marshal(cachedQuiz{Owner: quiz.CreatedBy, Quiz: *resp}); err == nil {
		if setErr := s.cache.Set(ctx, cacheKey, string(payload), s.cacheTTL); setErr != nil {
			logger.Get().Warn("Quiz cache write failed", zap.Error(setErr))
		}
	}

	return resp, nil
}

// ListQuizzes returns every quiz owned by userID, newest first.
func (s *quizService) ListQuizzes(ctx context.Context, userID string) (*dto.QuizListResponse, error) {
	quizzes, err := s.repo.GetQuizzesByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list quizzes", err)
	}

	resp := &dto.QuizListResponse{Quizzes: make([]dto.QuizResponse, 0, len(quizzes))}
	for _, quiz := range quizzes {
		resp.Quizzes = append(resp.Quizzes, *toQuizResponse(quiz))
	}
	return resp, nil
}

// UpdateQuiz applies a partial update to a quiz owned by userID.
func (s *quizService) UpdateQuiz(ctx context.Context, userID, quizID string, req dto.UpdateQuizRequest) (*dto.QuizResponse, error) {
	quiz, err := s.authorizedQuiz(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.VideoURL != nil {
		// New URLs go through the same validation as pipeline input.
		ref, err := validation.ParseVideoURL(*req.VideoURL)
		if err != nil {
			return nil, err
		}
		quiz.VideoURL = ref.URL
	}

	if err := quiz.Validate(); err != nil {
		return nil, domain.NewInvalidInputError(err.Error())
	}

	if err := s.repo.UpdateQuiz(ctx, quiz); err != nil {
		return nil, domain.NewInternalError("failed to update quiz", err)
	}

	s.invalidateQuizCache(ctx, quizID)
	return toQuizResponse(quiz), nil
}

// DeleteQuiz removes a quiz owned by userID together with its questions.
func (s *quizService) DeleteQuiz(ctx context.Context, userID, quizID string) error {
	if _, err := s.authorizedQuiz(ctx, userID, quizID); err != nil {
		return err
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.repo.DeleteQuiz(txCtx, quizID)
	})
	if err != nil {
		return domain.NewInternalError("failed to delete quiz", err)
	}

	s.invalidateQuizCache(ctx, quizID)
	return nil
}

// authorizedQuiz loads a quiz and enforces ownership: unknown IDs are
// NOT_FOUND, foreign quizzes are FORBIDDEN.
func (s *quizService) authorizedQuiz(ctx context.Context, userID, quizID string) (*domain.Quiz, error) {
	quiz, err := s.repo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	if quiz.CreatedBy != userID {
		return nil, domain.NewForbiddenError("quiz does not belong to you")
	}
	return quiz, nil
}

func (s *quizService) invalidateQuizCache(ctx context.Context, quizID string) {
	cacheKey := cache.GenerateCacheKey("quiz", "detail", quizID)
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		logger.Get().Warn("Quiz cache invalidation failed",
			zap.String("quiz_id", quizID),
			zap.Error(err))
	}
}

func toQuizResponse(quiz *domain.Quiz) *dto.QuizResponse {
	resp := &dto.QuizResponse{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		VideoURL:    quiz.VideoURL,
		CreatedAt:   quiz.CreatedAt,
		UpdatedAt:   quiz.UpdatedAt,
		Questions:   make([]dto.QuestionResponse, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		resp.Questions = append(resp.Questions, dto.QuestionResponse{
			ID:        q.ID,
			Question:  q.Text,
			Options:   q.Options,
			Answer:    q.Answer,
			CreatedAt: q.CreatedAt,
			UpdatedAt: q.UpdatedAt,
		})
	}
	return resp
}
