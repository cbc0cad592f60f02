package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cajaregistradora/pos-backend/pkg/enums"
)

// AccessTokenPayload is the input used to mint an access token.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	// JTI overrides the generated token ID; used on refresh so the session
	// key stays addressable.
	JTI string
}

// AccessTokenClaims are the typed JWT claims carried by API requests.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"uid"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
