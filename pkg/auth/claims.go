package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenClaims carries the authenticated identity. The login/registration
// service mints these; this service only validates and reads them.
type AccessTokenClaims struct {
	UserID      uuid.UUID `json:"uid"`
	IsModerator bool      `json:"mod,omitempty"`
	jwt.RegisteredClaims
}

// AccessTokenPayload is the input for minting a token (used by tests and the
// companion auth service).
type AccessTokenPayload struct {
	UserID      uuid.UUID
	IsModerator bool
	JTI         string
}
