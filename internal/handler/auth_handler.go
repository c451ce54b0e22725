package handler

import (
	"vidquiz/internal/dto"
	"vidquiz/internal/logger"
	"vidquiz/internal/service"
	"vidquiz/internal/util"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const oauthStateCookie = "oauth_state"

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// GoogleLogin godoc
// @Summary Start Google OAuth login
// @Description Redirects to the Google consent screen
// @Tags auth
// @Router /auth/google/login [get]
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	state := util.NewULID()
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		HTTPOnly: true,
	})
	return c.Redirect(h.service.GetGoogleLoginURL(state))
}

// GoogleCallback godoc
// @Summary Google OAuth callback
// @Description Exchanges the OAuth code for a token pair
// @Tags auth
// @Produce json
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	receivedState := c.Query("state")
	expectedState := c.Cookies(oauthStateCookie)

	accessToken, refreshToken, user, err := h.service.HandleGoogleCallback(
		c.Context(), code, receivedState, expectedState)
	if err != nil {
		logger.Get().Warn("Google callback failed", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: "AUTHENTICATION_FAILED",
		})
	}

	logger.Get().Info("User logged in", zap.String("user_id", user.ID))
	return c.JSON(dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// RefreshToken godoc
// @Summary Refresh an access token
// @Description Issues a new token pair from a valid refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "refresh_token is required",
		})
	}

	accessToken, refreshToken, err := h.service.RefreshToken(c.Context(), req.RefreshToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: "INVALID_REFRESH_TOKEN",
		})
	}

	return c.JSON(dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}
