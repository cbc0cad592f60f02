package auth

import "github.com/cajaregistradora/pos-backend/internal/users"

// RegisterRequest is the payload for creating a register operator account.
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	FullName string  `json:"full_name" validate:"required"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
	Role     string  `json:"role" validate:"omitempty,oneof=admin cashier"`
}

// LoginRequest carries the credentials presented at the register.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the token pair plus the authenticated user.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// RefreshRequest rotates a refresh token tied to the (possibly expired)
// access token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse returns the replacement token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest revokes the session tied to the access token.
type LogoutRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
}
