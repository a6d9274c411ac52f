package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"zela-wheel-backend/internal/models"
	"zela-wheel-backend/internal/wheel"

	"go.uber.org/zap"
)

type TokenIssuer interface {
	Issue(ctx context.Context, prize models.Category) (models.IssuedToken, error)
}

type LocalIssuer struct {
	generator *wheel.Generator
	ttl       time.Duration
	now       func() time.Time
	logger    *zap.Logger

	mu  sync.Mutex
	rng wheel.RNG
}

func NewLocalIssuer(generator *wheel.Generator, rng wheel.RNG, ttl time.Duration, logger *zap.Logger) *LocalIssuer {
	return &LocalIssuer{
		generator: generator,
		ttl:       ttl,
		now:       time.Now,
		logger:    logger,
		rng:       rng,
	}
}

func (i *LocalIssuer) Issue(_ context.Context, prize models.Category) (models.IssuedToken, error) {
	i.mu.Lock()
	generated := i.generator.Generate(i.rng)
	i.mu.Unlock()

	if generated.Fallback {
		i.logger.Warn("token generation exhausted attempts, using fallback token",
			zap.Int("attempts", generated.Attempts),
			zap.String("prize", string(prize)))
	}

	return models.IssuedToken{
		Token:     generated.Token,
		ExpiresAt: i.now().Add(i.ttl),
		Fallback:  generated.Fallback,
		Source:    models.TokenSourceLocal,
	}, nil
}

// RemoteIssuer asks a signing authority for the token and only trusts what it can check.
type RemoteIssuer struct {
	baseURL   string
	client    *http.Client
	validator *wheel.Validator
	signer    *PrizeSigner
	now       func() time.Time
	logger    *zap.Logger
}

// NewRemoteIssuer builds the client. The signer authenticates requests and checks
// signatures; a nil signer skips both.
func NewRemoteIssuer(baseURL string, timeout time.Duration, validator *wheel.Validator, signer *PrizeSigner, logger *zap.Logger) *RemoteIssuer {
	return &RemoteIssuer{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: timeout},
		validator: validator,
		signer:    signer,
		now:       time.Now,
		logger:    logger,
	}
}

func (i *RemoteIssuer) Issue(ctx context.Context, prize models.Category) (models.IssuedToken, error) {
	body, err := json.Marshal(models.IssueRequest{Prize: prize})
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("%w: encode request: %v", models.ErrIssuance, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.baseURL+"/issue", bytes.NewReader(body))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("%w: build request: %v", models.ErrIssuance, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if i.signer != nil {
		auth, err := i.signer.RequestToken(i.now())
		if err != nil {
			return models.IssuedToken{}, fmt.Errorf("%w: %v", models.ErrIssuance, err)
		}
		req.Header.Set("Authorization", "Bearer "+auth)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("%w: request failed: %v", models.ErrIssuance, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.IssuedToken{}, fmt.Errorf("%w: issuer returned status %d", models.ErrIssuance, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("%w: read response: %v", models.ErrIssuance, err)
	}

	var out models.IssueResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return models.IssuedToken{}, fmt.Errorf("%w: malformed response: %v", models.ErrIssuance, err)
	}
	if out.Token == "" {
		return models.IssuedToken{}, fmt.Errorf("%w: response has no token", models.ErrIssuance)
	}

	if v := i.validator.Validate(out.Token); !v.Valid {
		return models.IssuedToken{}, fmt.Errorf("%w: issued token rejected: %s", models.ErrIssuance, v.Reason)
	}

	expiresAt := time.Unix(out.ExpiresAt, 0)
	if out.ExpiresAt <= 0 || !expiresAt.After(i.now()) {
		return models.IssuedToken{}, fmt.Errorf("%w: issued token already expired", models.ErrIssuance)
	}

	if i.signer != nil {
		if out.Signature == "" {
			return models.IssuedToken{}, fmt.Errorf("%w: issued token is not signed", models.ErrIssuance)
		}
		if err := i.signer.Verify(out.Signature, out.Token); err != nil {
			return models.IssuedToken{}, fmt.Errorf("%w: %v", models.ErrIssuance, err)
		}
	}

	i.logger.Info("remote token issued", zap.String("prize", string(prize)), zap.Time("expires_at", expiresAt))

	return models.IssuedToken{
		Token:     out.Token,
		ExpiresAt: expiresAt,
		Source:    models.TokenSourceRemote,
	}, nil
}

// PrizeService runs an issuer and records the result.
type PrizeService struct {
	issuer    TokenIssuer
	registry  *Registry
	artifacts *ArtifactBuilder
	now       func() time.Time
	logger    *zap.Logger
}

func NewPrizeService(issuer TokenIssuer, registry *Registry, artifacts *ArtifactBuilder, logger *zap.Logger) *PrizeService {
	return &PrizeService{
		issuer:    issuer,
		registry:  registry,
		artifacts: artifacts,
		now:       time.Now,
		logger:    logger,
	}
}

func (p *PrizeService) Registry() *Registry {
	return p.registry
}

// Issue returns ErrIssuance (wrapped) for any failure; nothing is recorded in that case.
func (p *PrizeService) Issue(ctx context.Context, playerID, spinID string, prize models.Category) (*models.PrizeClaim, error) {
	issued, err := p.issuer.Issue(ctx, prize)
	if err != nil {
		p.logger.Error("token issuance failed",
			zap.String("player_id", playerID),
			zap.String("spin_id", spinID),
			zap.Error(err))
		return nil, err
	}

	issuedAt := p.now()
	rec := &models.TokenRecord{
		ID:        models.GenerateTokenRecordID(),
		Token:     issued.Token,
		Prize:     prize,
		PlayerID:  playerID,
		SpinID:    spinID,
		IssuedAt:  issuedAt,
		ExpiresAt: issued.ExpiresAt,
		Used:      false,
		Source:    issued.Source,
		Fallback:  issued.Fallback,
	}
	if err := p.registry.Append(ctx, rec); err != nil {
		p.logger.Error("failed to record issued token",
			zap.String("player_id", playerID),
			zap.String("spin_id", spinID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrIssuance, err)
	}

	artifact := p.artifacts.Build(issued, issuedAt)
	return &models.PrizeClaim{
		SpinID:    spinID,
		Status:    models.PrizeStatusIssued,
		Token:     issued.Token,
		IssuedAt:  issuedAt,
		ExpiresAt: issued.ExpiresAt,
		Filename:  artifact.Filename,
		Fallback:  issued.Fallback,
	}, nil
}

// Artifact rebuilds the download for a recorded token owned by playerID.
func (p *PrizeService) Artifact(ctx context.Context, playerID, token string) (*models.Artifact, error) {
	rec, err := p.registry.FindOwned(ctx, playerID, token)
	if err != nil {
		return nil, err
	}

	artifact := p.artifacts.Build(models.IssuedToken{
		Token:     rec.Token,
		ExpiresAt: rec.ExpiresAt,
		Fallback:  rec.Fallback,
		Source:    rec.Source,
	}, rec.IssuedAt)
	return &artifact, nil
}
