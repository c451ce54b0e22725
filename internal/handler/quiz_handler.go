package handler

import (
	"vidquiz/internal/dto"
	"vidquiz/internal/logger"
	"vidquiz/internal/middleware"
	"vidquiz/internal/service"
	"vidquiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service service.QuizService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{
		service: service,
	}
}

func userID(c *fiber.Ctx) string {
	if id, ok := c.Locals(middleware.UserIDKey).(string); ok {
		return id
	}
	return ""
}

// CreateQuiz godoc
// @Summary Create a quiz from a video URL
// @Description Downloads the video audio, transcribes it and generates a multiple-choice quiz
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.CreateQuizRequest true "Video URL"
// @Success 201 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 429 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *fiber.Ctx) error {
	var req dto.CreateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "INVALID_REQUEST",
		})
	}
	if req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "url is required",
		})
	}

	quiz, err := h.service.CreateQuizFromVideo(c.Context(), userID(c), req.URL)
	if err != nil {
		logger.Get().Error("Failed to create quiz",
			zap.Error(err),
			zap.String("url", req.URL),
		)
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(quiz)
}

// ListQuizzes godoc
// @Summary List quizzes
// @Description Returns all quizzes created by the authenticated user
// @Tags quiz
// @Produce json
// @Success 200 {object} dto.QuizListResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /quizzes [get]
func (h *QuizHandler) ListQuizzes(c *fiber.Ctx) error {
	quizzes, err := h.service.ListQuizzes(c.Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(quizzes)
}

// GetQuiz godoc
// @Summary Get a quiz
// @Description Returns a single quiz with its questions
// @Tags quiz
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	quizID := c.Params("id")
	if err := validation.ValidateQuizID(quizID); err != nil {
		return err
	}

	quiz, err := h.service.GetQuiz(c.Context(), userID(c), quizID)
	if err != nil {
		return err
	}
	return c.JSON(quiz)
}

// UpdateQuiz godoc
// @Summary Update a quiz
// @Description Partially updates a quiz's title, description or video URL
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param request body dto.UpdateQuizRequest true "Fields to update"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id} [patch]
func (h *QuizHandler) UpdateQuiz(c *fiber.Ctx) error {
	quizID := c.Params("id")
	if err := validation.ValidateQuizID(quizID); err != nil {
		return err
	}

	var req dto.UpdateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "INVALID_REQUEST",
		})
	}

	quiz, err := h.service.UpdateQuiz(c.Context(), userID(c), quizID, req)
	if err != nil {
		return err
	}
	return c.JSON(quiz)
}

// DeleteQuiz godoc
// @Summary Delete a quiz
// @Description Deletes a quiz and all its questions
// @Tags quiz
// @Param id path string true "Quiz ID"
// @Success 204
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id} [delete]
func (h *QuizHandler) DeleteQuiz(c *fiber.Ctx) error {
	quizID := c.Params("id")
	if err := validation.ValidateQuizID(quizID); err != nil {
		return err
	}

	if err := h.service.DeleteQuiz(c.Context(), userID(c), quizID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
