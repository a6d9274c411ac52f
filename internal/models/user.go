package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type PlayerSession struct {
	PlayerID  string    `json:"player_id"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type PlayerClaims struct {
	PlayerID  string `json:"pid"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// PrizeClaims are carried by the signature a signing authority attaches to an issued token.
type PrizeClaims struct {
	Token string   `json:"tok"`
	Prize Category `json:"prize"`
	jwt.RegisteredClaims
}
