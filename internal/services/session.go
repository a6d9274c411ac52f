package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"zela-wheel-backend/internal/models"
	"zela-wheel-backend/internal/wheel"

	"go.uber.org/zap"
)

type SessionConfig struct {
	Duration       time.Duration
	HighlightAfter float64
	BonusSpins     int
}

type activeSpin struct {
	result  models.SpinResult
	elapsed time.Duration
}

// WheelSession is one player's wheel: Idle -> Spinning -> Settling -> Idle.
type WheelSession struct {
	playerID string
	wheel    *wheel.Wheel
	limiter  *RateLimiter
	prizes   *PrizeService
	fair     SpinSource
	renderer Renderer
	cfg      SessionConfig
	ctx      context.Context
	logger   *zap.Logger

	mu         sync.Mutex
	state      models.SpinState
	rotation   float64
	clientSeed string
	nonce      int64
	current    *activeSpin
	last       *models.Settlement
	claim      *models.PrizeClaim

	issuing sync.WaitGroup
}

type SessionDeps struct {
	Wheel    *wheel.Wheel
	Limiter  *RateLimiter
	Prizes   *PrizeService
	Fair     SpinSource
	Renderer Renderer
	Logger   *zap.Logger
}

// NewWheelSession binds a session to ctx; issuance started by the session is cancelled with it.
func NewWheelSession(ctx context.Context, playerID, clientSeed string, deps SessionDeps, cfg SessionConfig) *WheelSession {
	renderer := deps.Renderer
	if renderer == nil {
		renderer = NopRenderer{}
	}
	return &WheelSession{
		playerID:   playerID,
		wheel:      deps.Wheel,
		limiter:    deps.Limiter,
		prizes:     deps.Prizes,
		fair:       deps.Fair,
		renderer:   renderer,
		cfg:        cfg,
		ctx:        ctx,
		logger:     deps.Logger.With(zap.String("player_id", playerID)),
		state:      models.SpinStateIdle,
		clientSeed: clientSeed,
	}
}

func (s *WheelSession) PlayerID() string {
	return s.playerID
}

// Spin starts a spin. The allowance is consumed before any draw.
func (s *WheelSession) Spin(ctx context.Context) (*models.SpinResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.SpinStateIdle {
		return nil, models.ErrSpinInProgress
	}

	allowance := s.limiter.CheckAndConsume(ctx)
	if !allowance.Allowed {
		return nil, models.ErrNoSpinsLeft
	}

	rng, serverHash := s.fair.RNG(s.clientSeed, s.nonce)
	outcome, plan, roll, err := s.wheel.Spin(rng)
	if err != nil {
		s.logger.Error("spin draw failed", zap.Error(err))
		return nil, err
	}

	// The resting angle is taken modulo a turn so the wheel only ever moves forward.
	start := math.Mod(s.rotation, 360)
	for start > plan.FinalAngle {
		start -= 360
	}

	result := models.SpinResult{
		SpinID:     models.GenerateSpinID(),
		Outcome:    outcome,
		Plan:       plan,
		Remaining:  allowance.Remaining,
		Nonce:      s.nonce,
		ServerHash: serverHash,
		StartAngle: start,
		Duration:   s.cfg.Duration.Milliseconds(),
		StartedAt:  time.Now(),
	}
	s.nonce++
	s.rotation = start
	s.state = models.SpinStateSpinning
	s.current = &activeSpin{result: result}

	s.logger.Info("spin started",
		zap.String("spin_id", result.SpinID),
		zap.Int("roll", roll),
		zap.String("category", string(outcome.Category)),
		zap.Int("slot", outcome.SlotIndex),
		zap.Float64("final_angle", plan.FinalAngle))

	return &result, nil
}

// Tick advances the animation by elapsed and reports whether the spin is still running.
func (s *WheelSession) Tick(elapsed time.Duration) bool {
	s.mu.Lock()
	if s.state != models.SpinStateSpinning || s.current == nil {
		s.mu.Unlock()
		return false
	}

	spin := s.current
	spin.elapsed += elapsed

	progress := 1.0
	if s.cfg.Duration > 0 {
		progress = math.Min(1, float64(spin.elapsed)/float64(s.cfg.Duration))
	}

	frame := models.Frame{
		SpinID:    spin.result.SpinID,
		Highlight: -1,
		Progress:  progress,
	}
	if progress > s.cfg.HighlightAfter {
		frame.Highlight = spin.result.Outcome.SlotIndex
	}

	if progress < 1 {
		frame.Angle = wheel.Interpolate(spin.result.StartAngle, spin.result.Plan.FinalAngle, progress)
		s.rotation = frame.Angle
		s.mu.Unlock()
		s.renderer.Render(s.playerID, frame)
		return true
	}

	frame.Angle = spin.result.Plan.FinalAngle
	frame.Highlight = spin.result.Outcome.SlotIndex
	s.rotation = frame.Angle
	s.state = models.SpinStateSettling
	settlement := s.settle(spin.result)
	s.mu.Unlock()

	s.renderer.Render(s.playerID, frame)
	s.renderer.Settled(s.playerID, settlement)
	return false
}

// settle applies the outcome and returns to Idle. Caller holds s.mu.
func (s *WheelSession) settle(result models.SpinResult) models.Settlement {
	settlement := models.Settlement{
		SpinID:    result.SpinID,
		Outcome:   result.Outcome,
		Message:   result.Outcome.Category.Message(s.cfg.BonusSpins),
		Remaining: result.Remaining,
		Angle:     result.Plan.FinalAngle,
		SettledAt: time.Now(),
	}

	switch result.Outcome.Category {
	case models.CategoryBonus:
		settlement.Remaining = s.limiter.Grant(s.ctx, s.cfg.BonusSpins)
	case models.CategoryGrand:
		claim := &models.PrizeClaim{SpinID: result.SpinID, Status: models.PrizeStatusPending}
		s.claim = claim
		pending := *claim
		settlement.Prize = &pending
		s.issuing.Add(1)
		go s.issue(result.SpinID)
	}

	s.last = &settlement
	s.current = nil
	s.state = models.SpinStateIdle

	s.logger.Info("spin settled",
		zap.String("spin_id", result.SpinID),
		zap.String("category", string(result.Outcome.Category)),
		zap.Int("remaining", settlement.Remaining))

	return settlement
}

func (s *WheelSession) issue(spinID string) {
	defer s.issuing.Done()
	claim, _ := s.runIssuance(s.ctx, spinID)
	s.renderer.Prize(s.playerID, claim)
}

// runIssuance issues the GRAND token for spinID and records the outcome on the session.
func (s *WheelSession) runIssuance(ctx context.Context, spinID string) (models.PrizeClaim, error) {
	issued, err := s.prizes.Issue(ctx, s.playerID, spinID, models.CategoryGrand)

	var claim models.PrizeClaim
	if err != nil {
		claim = models.PrizeClaim{
			SpinID: spinID,
			Status: models.PrizeStatusFailed,
			Error:  models.ErrIssuance.Error(),
		}
		if !errors.Is(err, models.ErrIssuance) {
			err = errors.Join(models.ErrIssuance, err)
		}
	} else {
		claim = *issued
	}

	s.mu.Lock()
	if s.claim != nil && s.claim.SpinID == spinID {
		stored := claim
		s.claim = &stored
	}
	if s.last != nil && s.last.SpinID == spinID {
		prize := claim
		s.last.Prize = &prize
	}
	s.mu.Unlock()

	return claim, err
}

// RetryIssuance re-runs issuance for the last failed GRAND claim.
func (s *WheelSession) RetryIssuance(ctx context.Context) (*models.PrizeClaim, error) {
	s.mu.Lock()
	if s.claim == nil || s.claim.Status != models.PrizeStatusFailed {
		s.mu.Unlock()
		return nil, models.ErrNoPendingPrize
	}
	s.claim.Status = models.PrizeStatusPending
	s.claim.Error = ""
	spinID := s.claim.SpinID
	s.mu.Unlock()

	claim, err := s.runIssuance(ctx, spinID)
	s.renderer.Prize(s.playerID, claim)
	return &claim, err
}

// WaitIssuance blocks until background issuance started by settle has finished.
func (s *WheelSession) WaitIssuance() {
	s.issuing.Wait()
}

func (s *WheelSession) Claim() *models.PrizeClaim {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claim == nil {
		return nil
	}
	claim := *s.claim
	return &claim
}

func (s *WheelSession) State(ctx context.Context) models.SessionState {
	remaining := s.limiter.Remaining(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	state := models.SessionState{
		State:     s.state,
		Rotation:  s.rotation,
		Remaining: remaining,
	}
	if s.current != nil {
		result := s.current.result
		state.Spin = &result
	}
	if s.last != nil {
		last := *s.last
		if last.Prize != nil {
			prize := *last.Prize
			last.Prize = &prize
		}
		state.Last = &last
	}
	return state
}

func (s *WheelSession) Fairness() models.FairnessInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.FairnessInfo{
		ClientSeed: s.clientSeed,
		ServerHash: s.fair.ServerHash(),
		Nonce:      s.nonce,
	}
}

func (s *WheelSession) Allowance(ctx context.Context) models.AllowanceResponse {
	return s.limiter.State(ctx)
}

// Busy reports whether the session has a spin in flight or a prize being issued.
func (s *WheelSession) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != models.SpinStateIdle ||
		(s.claim != nil && s.claim.Status == models.PrizeStatusPending)
}

// Spinning reports whether a spin is in flight.
func (s *WheelSession) Spinning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == models.SpinStateSpinning
}
