package services

import (
	"errors"
	"fmt"
	"time"

	"zela-wheel-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const jwtIssuer = "zela-wheel"

var errSigningMethod = errors.New("unexpected token signing method")

type JWTService struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTService(secret string, ttl time.Duration) *JWTService {
	return &JWTService{secret: []byte(secret), ttl: ttl}
}

// NewSession mints a fresh player id together with its session token.
func (s *JWTService) NewSession() (*models.PlayerSession, string, error) {
	now := time.Now()
	session := &models.PlayerSession{
		PlayerID:  uuid.NewString(),
		SessionID: uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	token, err := s.GenerateToken(session)
	if err != nil {
		return nil, "", err
	}
	return session, token, nil
}

func (s *JWTService) GenerateToken(session *models.PlayerSession) (string, error) {
	claims := models.PlayerClaims{
		PlayerID:  session.PlayerID,
		SessionID: session.SessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Subject:   session.PlayerID,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %v", err)
	}
	return signed, nil
}

func (s *JWTService) ValidateToken(tokenStr string) (*models.PlayerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &models.PlayerClaims{}, s.keyFunc,
		jwt.WithIssuer(jwtIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid token: %v", err)
	}

	claims, ok := token.Claims.(*models.PlayerClaims)
	if !ok || claims.PlayerID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func (s *JWTService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errSigningMethod
	}
	return s.secret, nil
}

// PrizeSigner signs and verifies the signature a signing authority attaches to issued tokens.
type PrizeSigner struct {
	secret []byte
}

func NewPrizeSigner(secret string) *PrizeSigner {
	return &PrizeSigner{secret: []byte(secret)}
}

func (s *PrizeSigner) Sign(token string, prize models.Category, issuedAt, expiresAt time.Time) (string, error) {
	claims := models.PrizeClaims{
		Token: token,
		Prize: prize,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign prize token: %v", err)
	}
	return signed, nil
}

// Verify checks the signature and that it was issued for exactly this token.
func (s *PrizeSigner) Verify(signature, token string) error {
	parsed, err := jwt.ParseWithClaims(signature, &models.PrizeClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errSigningMethod
		}
		return s.secret, nil
	}, jwt.WithIssuer(jwtIssuer))
	if err != nil {
		return fmt.Errorf("invalid prize signature: %v", err)
	}

	claims, ok := parsed.Claims.(*models.PrizeClaims)
	if !ok || claims.Token != token {
		return errors.New("prize signature does not match token")
	}
	return nil
}

const (
	issueAudience = "zela-wheel-issuer"
	issueAuthTTL  = time.Minute
)

// RequestToken authenticates a call to the signing authority. It is short-lived and
// carries an audience, so it cannot stand in for a prize signature or the reverse.
func (s *PrizeSigner) RequestToken(now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    jwtIssuer,
		Audience:  jwt.ClaimStrings{issueAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(issueAuthTTL)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign issue request: %v", err)
	}
	return signed, nil
}

func (s *PrizeSigner) VerifyRequestToken(tokenStr string) error {
	_, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errSigningMethod
		}
		return s.secret, nil
	}, jwt.WithIssuer(jwtIssuer), jwt.WithAudience(issueAudience), jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("invalid issue request token: %v", err)
	}
	return nil
}
