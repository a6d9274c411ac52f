package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"zela-wheel-backend/internal/config"
	"zela-wheel-backend/internal/models"
	"zela-wheel-backend/internal/wheel"

	"go.uber.org/zap"
)

type ManagerDeps struct {
	Wheel    *wheel.Wheel
	Store    Storage
	Prizes   *PrizeService
	Fair     SpinSource
	Renderer Renderer
	Location *time.Location
	Logger   *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// SessionManager keeps one WheelSession per player and drives running spins from a ticker.
type SessionManager struct {
	ctx    context.Context
	cancel context.CancelFunc

	deps          ManagerDeps
	sessionCfg    SessionConfig
	dailySpins    int
	frameInterval time.Duration
	logger        *zap.Logger

	mu       sync.Mutex
	sessions map[string]*WheelSession
	lastSeen map[string]time.Time
	wg       sync.WaitGroup
}

func NewSessionManager(deps ManagerDeps, cfg *config.WheelConfig) *SessionManager {
	ctx, cancel := context.WithCancel(context.Background())
	if deps.Renderer == nil {
		deps.Renderer = NopRenderer{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &SessionManager{
		ctx:    ctx,
		cancel: cancel,
		deps:   deps,
		sessionCfg: SessionConfig{
			Duration:       cfg.Animation.Duration,
			HighlightAfter: cfg.Animation.HighlightAfter,
			BonusSpins:     cfg.Allowance.BonusSpins,
		},
		dailySpins:    cfg.Allowance.DailySpins,
		frameInterval: cfg.Animation.FrameInterval,
		logger:        deps.Logger,
		sessions:      make(map[string]*WheelSession),
		lastSeen:      make(map[string]time.Time),
	}
}

func (m *SessionManager) Wheel() *wheel.Wheel {
	return m.deps.Wheel
}

func (m *SessionManager) Prizes() *PrizeService {
	return m.deps.Prizes
}

// Session returns the player's session, creating it on first use.
func (m *SessionManager) Session(playerID string) (*WheelSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[playerID]; ok {
		m.lastSeen[playerID] = m.deps.Now()
		return s, nil
	}

	clientSeed, err := models.GenerateClientSeed()
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %v", err)
	}

	limiter := NewRateLimiter(m.deps.Store, playerID, m.dailySpins, m.logger, WithLocation(m.deps.Location))
	s := NewWheelSession(m.ctx, playerID, clientSeed, SessionDeps{
		Wheel:    m.deps.Wheel,
		Limiter:  limiter,
		Prizes:   m.deps.Prizes,
		Fair:     m.deps.Fair,
		Renderer: m.deps.Renderer,
		Logger:   m.logger,
	}, m.sessionCfg)
	m.sessions[playerID] = s
	m.lastSeen[playerID] = m.deps.Now()
	return s, nil
}

// CleanupIdle drops sessions unused for longer than maxIdle. Busy sessions are kept.
// The allowance and issued tokens live in storage and survive eviction.
func (m *SessionManager) CleanupIdle(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.deps.Now()
	evicted := 0
	for playerID, s := range m.sessions {
		if now.Sub(m.lastSeen[playerID]) <= maxIdle || s.Busy() {
			continue
		}
		delete(m.sessions, playerID)
		delete(m.lastSeen, playerID)
		evicted++
	}

	if evicted > 0 {
		m.logger.Info("idle sessions evicted", zap.Int("evicted", evicted), zap.Int("active", len(m.sessions)))
	}
	return evicted
}

// Spin starts a spin for the player and animates it in the background.
func (m *SessionManager) Spin(ctx context.Context, playerID string) (*models.SpinResult, error) {
	if err := m.ctx.Err(); err != nil {
		return nil, fmt.Errorf("session manager closed: %w", err)
	}

	s, err := m.Session(playerID)
	if err != nil {
		return nil, err
	}

	result, err := s.Spin(ctx)
	if err != nil {
		return nil, err
	}

	m.wg.Add(1)
	go m.drive(s)
	return result, nil
}

func (m *SessionManager) drive(s *WheelSession) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.frameInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			if !s.Tick(now.Sub(last)) {
				return
			}
			last = now
		case <-m.ctx.Done():
			m.logger.Warn("spin abandoned on shutdown", zap.String("player_id", s.PlayerID()))
			return
		}
	}
}

// Close cancels running spins and issuance and waits for them to stop.
func (m *SessionManager) Close() {
	m.cancel()
	m.wg.Wait()

	m.mu.Lock()
	sessions := make([]*WheelSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.WaitIssuance()
	}
}
