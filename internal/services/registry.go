package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"zela-wheel-backend/internal/models"

	"go.uber.org/zap"
)

// Registry keeps issued token records: one JSON list per player plus a by-token index.
type Registry struct {
	store  Storage
	logger *zap.Logger
	mu     sync.Mutex
}

func NewRegistry(store Storage, logger *zap.Logger) *Registry {
	return &Registry{store: store, logger: logger}
}

func (r *Registry) Append(ctx context.Context, rec *models.TokenRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.list(ctx, rec.PlayerID)
	if err != nil {
		return err
	}

	records = append(records, *rec)
	if len(records) > MaxPlayerTokens {
		records = records[len(records)-MaxPlayerTokens:]
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal token records: %v", err)
	}
	if err := r.store.Set(ctx, fmt.Sprintf(KeyPlayerTokens, rec.PlayerID), string(data), TTLTokenRecord); err != nil {
		return fmt.Errorf("failed to save token records: %w", err)
	}

	indexed, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal token record: %v", err)
	}
	if err := r.store.Set(ctx, fmt.Sprintf(KeyTokenIndex, rec.Token), string(indexed), TTLTokenRecord); err != nil {
		return fmt.Errorf("failed to index token: %w", err)
	}

	r.logger.Info("token recorded",
		zap.String("player_id", rec.PlayerID),
		zap.String("record_id", rec.ID),
		zap.String("source", string(rec.Source)))
	return nil
}

func (r *Registry) List(ctx context.Context, playerID string) ([]models.TokenRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(ctx, playerID)
}

func (r *Registry) list(ctx context.Context, playerID string) ([]models.TokenRecord, error) {
	raw, found, err := r.store.Get(ctx, fmt.Sprintf(KeyPlayerTokens, playerID))
	if err != nil {
		return nil, fmt.Errorf("failed to get token records: %w", err)
	}
	records := []models.TokenRecord{}
	if !found {
		return records, nil
	}
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token records: %v", err)
	}
	return records, nil
}

// FindOwned looks the token up in playerID's own records, newest first. Fallback
// tokens repeat across players, so ownership never goes through the shared index.
func (r *Registry) FindOwned(ctx context.Context, playerID, token string) (*models.TokenRecord, error) {
	records, err := r.List(ctx, playerID)
	if err != nil {
		return nil, err
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Token == token {
			rec := records[i]
			return &rec, nil
		}
	}
	return nil, models.ErrTokenNotFound
}

// Find returns the most recent record for token across all players.
func (r *Registry) Find(ctx context.Context, token string) (*models.TokenRecord, error) {
	raw, found, err := r.store.Get(ctx, fmt.Sprintf(KeyTokenIndex, token))
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if !found {
		return nil, models.ErrTokenNotFound
	}

	var rec models.TokenRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token record: %v", err)
	}
	return &rec, nil
}
