package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"vidquiz/internal/cache"
	"vidquiz/internal/domain"
	"vidquiz/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testUserID  = "01HTESTUSERAAAAAAAAAAAAAAA"
	otherUserID = "01HOTHERUSERAAAAAAAAAAAAAA"
	testQuizID  = "01HTESTQUIZAAAAAAAAAAAAAAA"
)

type quizServiceMocks struct {
	pipeline  *MockPipelineRunner
	repo      *MockQuizRepository
	txManager *MockTransactionManager
	cache     *MockCache
}

func newTestQuizService(t *testing.T) (QuizService, *quizServiceMocks) {
	t.Helper()
	m := &quizServiceMocks{
		pipeline:  new(MockPipelineRunner),
		repo:      new(MockQuizRepository),
		txManager: new(MockTransactionManager),
		cache:     new(MockCache),
	}
	svc := NewQuizService(m.pipeline, m.repo, m.txManager, m.cache, 10*time.Minute)
	return svc, m
}

func ownedQuiz(owner string) *domain.Quiz {
	return &domain.Quiz{
		ID:          testQuizID,
		Title:       "T",
		Description: "D",
		VideoURL:    testRef.URL,
		CreatedBy:   owner,
		Questions: []*domain.Question{
			{
				ID:      "01HTESTQUESTIONAAAAAAAAAAA",
				QuizID:  testQuizID,
				Text:    "Q1",
				Options: []string{"A", "B", "C", "D"},
				Answer:  "B",
			},
		},
	}
}

func TestCreateQuizFromVideo_PersistsPipelineResult(t *testing.T) {
	svc, m := newTestQuizService(t)

	quiz, err := AssembleQuiz(validRawOutput, testRef)
	require.NoError(t, err)

	m.pipeline.On("Run", mock.Anything, testRef.URL).Return(quiz, nil).Once()
	m.txManager.On("WithTransaction", mock.Anything, mock.Anything).Return(nil).Once()
	m.repo.On("SaveQuiz", mock.Anything, quiz).Return(nil).Once()

	resp, err := svc.CreateQuizFromVideo(context.Background(), testUserID, testRef.URL)
	require.NoError(t, err)

	assert.Equal(t, testUserID, quiz.CreatedBy)
	assert.Equal(t, "T", resp.Title)
	require.Len(t, resp.Questions, 1)
	assert.Equal(t, "B", resp.Questions[0].Answer)

	m.pipeline.AssertExpectations(t)
	m.repo.AssertExpectations(t)
	m.txManager.AssertExpectations(t)
}

func TestCreateQuizFromVideo_PipelineErrorPassesThroughUnchanged(t *testing.T) {
	svc, m := newTestQuizService(t)

	pipelineErr := domain.NewPipelineError(domain.StageFetching,
		domain.NewFetchUnavailableError(errors.New("video unavailable")))
	m.pipeline.On("Run", mock.Anything, testRef.URL).Return(nil, pipelineErr).Once()

	_, err := svc.CreateQuizFromVideo(context.Background(), testUserID, testRef.URL)
	require.Error(t, err)
	assert.Equal(t, pipelineErr, err)
	m.repo.AssertNotCalled(t, "SaveQuiz")
}

func TestCreateQuizFromVideo_SaveFailureIsInternal(t *testing.T) {
	svc, m := newTestQuizService(t)

	quiz, err := AssembleQuiz(validRawOutput, testRef)
	require.NoError(t, err)

	m.pipeline.On("Run", mock.Anything, testRef.URL).Return(quiz, nil).Once()
	m.txManager.On("WithTransaction", mock.Anything, mock.Anything).Return(nil).Once()
	m.repo.On("SaveQuiz", mock.Anything, quiz).Return(errors.New("ORA-00001")).Once()

	_, err = svc.CreateQuizFromVideo(context.Background(), testUserID, testRef.URL)
	require.Error(t, err)
	assert.Equal(t, domain.CodeInternal, domain.CodeOf(err))
}

func TestGetQuiz_CacheMissLoadsFromRepositoryAndCaches(t *testing.T) {
	svc, m := newTestQuizService(t)
	cacheKey := cache.GenerateCacheKey("quiz", "detail", testQuizID)

	m.cache.On("Get", mock.Anything, cacheKey).Return("", domain.ErrCacheMiss).Once()
	m.repo.On("GetQuizByID", mock.Anything, testQuizID).Return(ownedQuiz(testUserID), nil).Once()
	m.cache.On("Set", mock.Anything, cacheKey, mock.Anything, 10*time.Minute).Return(nil).Once()

	resp, err := svc.GetQuiz(context.Background(), testUserID, testQuizID)
	require.NoError(t, err)
	assert.Equal(t, testQuizID, resp.ID)

	m.cache.AssertExpectations(t)
	m.repo.AssertExpectations(t)
}

func TestGetQuiz_CacheHitSkipsRepository(t *testing.T) {
	svc, m := newTestQuizService(t)
	cacheKey := cache.GenerateCacheKey("quiz", "detail", testQuizID)

	payload, err := json.Marshal(cachedQuiz{
		Owner: testUserID,
		Quiz:  dto.QuizResponse{ID: testQuizID, Title: "T"},
	})
	require.NoError(t, err)

	m.cache.On("Get", mock.Anything, cacheKey).Return(string(payload), nil).Once()

	resp, err := svc.GetQuiz(context.Background(), testUserID, testQuizID)
	require.NoError(t, err)
	assert.Equal(t, "T", resp.Title)

	m.repo.AssertNotCalled(t, "GetQuizByID")
}

func TestGetQuiz_CacheHitStillEnforcesOwnership(t *testing.T) {
	svc, m := newTestQuizService(t)
	cacheKey := cache.GenerateCacheKey("quiz", "detail", testQuizID)

	payload, err := json.Marshal(cachedQuiz{
		Owner: otherUserID,
		Quiz:  dto.QuizResponse{ID: testQuizID},
	})
	require.NoError(t, err)

	m.cache.On("Get", mock.Anything, cacheKey).Return(string(payload), nil).Once()

	_, err = svc.GetQuiz(context.Background(), testUserID, testQuizID)
	require.Error(t, err)
	assert.Equal(t, domain.CodeForbidden, domain.CodeOf(err))
	m.repo.AssertNotCalled(t, "GetQuizByID")
}

func TestGetQuiz_UnknownIDIsNotFound(t *testing.T) {
	svc, m := newTestQuizService(t)

	m.cache.On("Get", mock.Anything, mock.Anything).Return("", domain.ErrCacheMiss).Once()
	m.repo.On("GetQuizByID", mock.Anything, testQuizID).Return(nil, nil).Once()

	_, err := svc.GetQuiz(context.Background(), testUserID, testQuizID)
	require.Error(t, err)
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))
}

func TestGetQuiz_ForeignQuizIsForbidden(t *testing.T) {
	svc, m := newTestQuizService(t)

	m.cache.On("Get", mock.Anything, mock.Anything).Return("", domain.ErrCacheMiss).Once()
	m.repo.On("GetQuizByID", mock.Anything, testQuizID).Return(ownedQuiz(otherUserID), nil).Once()

	_, err := svc.GetQuiz(context.Background(), testUserID, testQuizID)
	require.Error(t, err)
	assert.Equal(t, domain.CodeForbidden, domain.CodeOf(err))
}

func TestListQuizzes_ReturnsAllOwnedQuizzes(t *testing.T) {
	svc, m := newTestQuizService(t)

	m.repo.On("GetQuizzesByUser", mock.Anything, testUserID).
		Return([]*domain.Quiz{ownedQuiz(testUserID)}, nil).Once()

	resp, err := svc.ListQuizzes(context.Background(), testUserID)
	require.NoError(t, err)
	require.Len(t, resp.Quizzes, 1)
	assert.Equal(t, testQuizID, resp.Quizzes[0].ID)
}

func TestListQuizzes_EmptyResultIsNotAnError(t *testing.T) {
	svc, m := newTestQuizService(t)

	m.repo.On("GetQuizzesByUser", mock.Anything, testUserID).
		Return([]*domain.Quiz{}, nil).Once()

	resp, err := svc.ListQuizzes(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Empty(t, resp.Quizzes)
}

func TestUpdateQuiz_AppliesPartialUpdateAndInvalidatesCache(t *testing.T) {
	svc, m := newTestQuizService(t)
	cacheKey := cache.GenerateCacheKey("quiz", "detail", testQuizID)

	m.repo.On("GetQuizByID", mock.Anything, testQuizID).Return(ownedQuiz(testUserID), nil).Once()
	m.repo.On("UpdateQuiz", mock.Anything, mock.MatchedBy(func(q *domain.Quiz) bool {
		return q.Title == "New title" && q.Description == "D"
	})).Return(nil).Once()
	m.cache.On("Delete", mock.Anything, cacheKey).Return(nil).Once()

	newTitle := "New title"
	resp, err := svc.UpdateQuiz(context.Background(), testUserID, testQuizID,
		dto.UpdateQuizRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "New title", resp.Title)
	assert.Equal(t, "D", resp.Description)

	m.repo.AssertExpectations(t)
	m.cache.AssertExpectations(t)
}

func TestUpdateQuiz_RejectsInvalidVideoURL(t *testing.T) {
	svc, m := newTestQuizService(t)

	m.repo.On("GetQuizByID", mock.Anything, testQuizID).Return(ownedQuiz(testUserID), nil).Once()

	badURL := "https://example.com/not-a-video"
	_, err := svc.UpdateQuiz(context.Background(), testUserID, testQuizID,
		dto.UpdateQuizRequest{VideoURL: &badURL})
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidURL, domain.CodeOf(err))
	m.repo.AssertNotCalled(t, "UpdateQuiz")
}

func TestUpdateQuiz_NormalizesNewVideoURL(t *testing.T) {
	svc, m := newTestQuizService(t)

	m.repo.On("GetQuizByID", mock.Anything, testQuizID).Return(ownedQuiz(testUserID), nil).Once()
	m.repo.On("UpdateQuiz", mock.Anything, mock.MatchedBy(func(q *domain.Quiz) bool {
		return q.VideoURL == "https://www.youtube.com/watch?v=abcdefghijk"
	})).Return(nil).Once()
	m.cache.On("Delete", mock.Anything, mock.Anything).Return(nil).Once()

	shortURL := "https://youtu.be/abcdefghijk"
	resp, err := svc.UpdateQuiz(context.Background(), testUserID, testQuizID,
		dto.UpdateQuizRequest{VideoURL: &shortURL})
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=abcdefghijk", resp.VideoURL)
}

func TestDeleteQuiz_DeletesAndInvalidatesCache(t *testing.T) {
	svc, m := newTestQuizService(t)
	cacheKey := cache.GenerateCacheKey("quiz", "detail", testQuizID)

	m.repo.On("GetQuizByID", mock.Anything, testQuizID).Return(ownedQuiz(testUserID), nil).Once()
	m.txManager.On("WithTransaction", mock.Anything, mock.Anything).Return(nil).Once()
	m.repo.On("DeleteQuiz", mock.Anything, testQuizID).Return(nil).Once()
	m.cache.On("Delete", mock.Anything, cacheKey).Return(nil).Once()

	err := svc.DeleteQuiz(context.Background(), testUserID, testQuizID)
	require.NoError(t, err)

	m.repo.AssertExpectations(t)
	m.cache.AssertExpectations(t)
}

func TestDeleteQuiz_ForeignQuizIsForbidden(t *testing.T) {
	svc, m := newTestQuizService(t)

	m.repo.On("GetQuizByID", mock.Anything, testQuizID).Return(ownedQuiz(otherUserID), nil).Once()

	err := svc.DeleteQuiz(context.Background(), testUserID, testQuizID)
	require.Error(t, err)
	assert.Equal(t, domain.CodeForbidden, domain.CodeOf(err))
	m.repo.AssertNotCalled(t, "DeleteQuiz")
}
