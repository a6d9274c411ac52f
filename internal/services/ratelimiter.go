package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"zela-wheel-backend/internal/models"

	"go.uber.org/zap"
)

const dayLayout = "2006-01-02"

type RateLimiterOption func(*RateLimiter)

func WithClock(now func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) { r.now = now }
}

func WithLocation(loc *time.Location) RateLimiterOption {
	return func(r *RateLimiter) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// RateLimiter enforces the daily spin allowance of one player. Once storage fails it keeps
// serving from memory for the rest of its lifetime.
type RateLimiter struct {
	store    Storage
	key      string
	dailyCap int
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger

	mu       sync.Mutex
	fallback *models.SpinAllowance
}

func NewRateLimiter(store Storage, playerID string, dailyCap int, logger *zap.Logger, opts ...RateLimiterOption) *RateLimiter {
	r := &RateLimiter{
		store:    store,
		key:      fmt.Sprintf(KeyAllowance, playerID),
		dailyCap: dailyCap,
		loc:      time.Local,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RateLimiter) today() string {
	return r.now().In(r.loc).Format(dayLayout)
}

func (r *RateLimiter) CheckAndConsume(ctx context.Context) models.AllowanceResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, dirty := r.load(ctx)
	if a.Remaining <= 0 {
		if dirty {
			r.save(ctx, a)
		}
		return models.AllowanceResult{Allowed: false, Remaining: 0}
	}

	a.Remaining--
	r.save(ctx, a)
	return models.AllowanceResult{Allowed: true, Remaining: a.Remaining}
}

// Grant adds n spins without an upper cap and returns the new remaining count.
func (r *RateLimiter) Grant(ctx context.Context, n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, dirty := r.load(ctx)
	if n <= 0 {
		if dirty {
			r.save(ctx, a)
		}
		return a.Remaining
	}

	a.Remaining += n
	r.save(ctx, a)
	return a.Remaining
}

func (r *RateLimiter) Remaining(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, _ := r.load(ctx)
	return a.Remaining
}

func (r *RateLimiter) State(ctx context.Context) models.AllowanceResponse {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, _ := r.load(ctx)
	return models.AllowanceResponse{
		Day:       a.Day,
		Remaining: a.Remaining,
		DailyCap:  r.dailyCap,
		Degraded:  r.fallback != nil,
	}
}

func (r *RateLimiter) Degraded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fallback != nil
}

// load returns today's allowance; dirty reports a reset that has not been written yet.
func (r *RateLimiter) load(ctx context.Context) (models.SpinAllowance, bool) {
	today := r.today()

	if r.fallback != nil {
		if r.fallback.Day != today {
			*r.fallback = models.NewAllowance(today, r.dailyCap)
		}
		return *r.fallback, false
	}

	raw, found, err := r.store.Get(ctx, r.key)
	if err != nil {
		r.degrade(models.NewAllowance(today, r.dailyCap), "read", err)
		return *r.fallback, false
	}
	if !found {
		return models.NewAllowance(today, r.dailyCap), true
	}

	var a models.SpinAllowance
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		r.degrade(models.NewAllowance(today, r.dailyCap), "parse", err)
		return *r.fallback, false
	}
	if a.Day != today {
		return models.NewAllowance(today, r.dailyCap), true
	}
	if a.Remaining < 0 {
		a.Remaining = 0
	}
	return a, false
}

func (r *RateLimiter) save(ctx context.Context, a models.SpinAllowance) {
	if r.fallback != nil {
		*r.fallback = a
		return
	}

	data, err := json.Marshal(a)
	if err != nil {
		r.degrade(a, "encode", err)
		return
	}
	if err := r.store.Set(ctx, r.key, string(data), TTLAllowance); err != nil {
		r.degrade(a, "write", err)
	}
}

func (r *RateLimiter) degrade(a models.SpinAllowance, op string, err error) {
	r.logger.Warn("allowance storage unavailable, continuing in memory",
		zap.String("key", r.key),
		zap.String("op", op),
		zap.Error(err))
	r.fallback = &a
}
