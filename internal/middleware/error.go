package middleware

import (
	"errors"
	"net/http"

	"vidquiz/internal/domain"
	"vidquiz/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Stage   string `json:"stage,omitempty"`
}

// ErrorHandler is a centralized error handling middleware
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		log := logger.Get()

		// Pipeline failures carry the failing stage so clients can render
		// stage-specific guidance ("video unavailable" vs "generation failed").
		var stage string
		var pipelineErr *domain.PipelineError
		if errors.As(err, &pipelineErr) {
			stage = string(pipelineErr.Stage)
		}

		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			statusCode := mapDomainErrorToHTTPStatus(domainErr)

			log.Error("Domain error occurred",
				zap.String("code", string(domainErr.Code)),
				zap.String("message", domainErr.Message),
				zap.String("stage", stage),
				zap.Int("status", statusCode),
				zap.Error(domainErr.Err),
			)

			return c.Status(statusCode).JSON(ErrorResponse{
				Code:    string(domainErr.Code),
				Message: domainErr.Message,
				Status:  statusCode,
				Stage:   stage,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			log.Warn("Fiber error occurred",
				zap.Int("code", fiberErr.Code),
				zap.String("message", fiberErr.Message),
			)
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Code:    "HTTP_ERROR",
				Message: fiberErr.Message,
				Status:  fiberErr.Code,
			})
		}

		log.Error("Unknown error occurred",
			zap.String("path", c.Path()),
			zap.Error(err),
		)

		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Code:    string(domain.CodeInternal),
			Message: "Internal server error",
			Status:  http.StatusInternalServerError,
		})
	}
}

// mapDomainErrorToHTTPStatus maps domain errors to HTTP status codes
func mapDomainErrorToHTTPStatus(err *domain.DomainError) int {
	switch err.Code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidInput, domain.CodeInvalidURL,
		domain.CodeFetchUnavailable, domain.CodeFetchNoAudioStream,
		domain.CodeTranscriptionEmptyAudio, domain.CodeTranscriptionTooLong:
		return http.StatusBadRequest
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeFetchRateLimited, domain.CodeGenerationRateLimited:
		return http.StatusTooManyRequests
	case domain.CodeTranscriptionTimeout:
		return http.StatusGatewayTimeout
	case domain.CodeFetchNetworkFailure,
		domain.CodeTranscriptionServiceFailure,
		domain.CodeGenerationEmptyResponse,
		domain.CodeGenerationServiceFailure,
		domain.CodeGenerationResponseTooLarge,
		domain.CodeAssemblyNoJSONFound,
		domain.CodeAssemblyMissingField,
		domain.CodeAssemblyInvalidQuestionShape,
		domain.CodeAssemblyAnswerMismatch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
