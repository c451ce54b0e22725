package dto

import "github.com/golang-jwt/jwt/v5"

// GoogleUserInfo holds the profile returned by the Google userinfo endpoint.
type GoogleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// AuthClaims are the JWT claims issued by the auth service.
type AuthClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenResponse carries a freshly issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokenRequest is the request body for refreshing an access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserResponse represents a user profile in the API response
type UserResponse struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}
