package types

import "github.com/google/uuid"

// TokenClaims represents the claims carried by an auth token
type TokenClaims struct {
	UserID   uuid.UUID
	Username string
	IsAdmin  bool
}
