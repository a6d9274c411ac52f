package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"zela-wheel-backend/internal/config"
	"zela-wheel-backend/internal/models"
	"zela-wheel-backend/internal/services"

	"go.uber.org/zap"
)

func newTestManager(t *testing.T, renderer services.Renderer) *services.SessionManager {
	t.Helper()
	cfg := config.DefaultWheelConfig()
	cfg.Animation.Duration = 40 * time.Millisecond
	cfg.Animation.FrameInterval = 5 * time.Millisecond

	store := services.NewMemoryStore()
	m := services.NewSessionManager(services.ManagerDeps{
		Wheel:    testWheel(t),
		Store:    store,
		Prizes:   prizeService(store, localIssuer(t)),
		Fair:     services.NewFairSeedFrom("server-seed"),
		Renderer: renderer,
		Location: time.UTC,
		Logger:   zap.NewNop(),
	}, cfg)
	t.Cleanup(m.Close)
	return m
}

func TestSessionManager_DrivesSpinToSettlement(t *testing.T) {
	ctx := context.Background()
	renderer := &recordingRenderer{}
	m := newTestManager(t, renderer)

	result, err := m.Spin(ctx, "p1")
	if err != nil {
		t.Fatalf("spin: %v", err)
	}

	s, _ := m.Session("p1")
	deadline := time.Now().Add(2 * time.Second)
	for s.Spinning() {
		if time.Now().After(deadline) {
			t.Fatal("spin did not settle in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.WaitIssuance()

	state := s.State(ctx)
	if state.Last == nil || state.Last.SpinID != result.SpinID {
		t.Fatalf("expected settlement for %s, got %+v", result.SpinID, state.Last)
	}

	proof, err := services.VerifySpin(m.Wheel(), "server-seed", s.Fairness().ClientSeed, result.Nonce)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if proof.SlotIndex != result.Outcome.SlotIndex || proof.FinalAngle != result.Plan.FinalAngle {
		t.Errorf("proof %+v does not reproduce spin %+v", proof, result)
	}

	frames, settlements, _ := renderer.snapshot()
	if len(frames) == 0 || len(settlements) != 1 {
		t.Errorf("renderer got %d frames and %d settlements", len(frames), len(settlements))
	}
}

func TestSessionManager_SessionsArePerPlayer(t *testing.T) {
	m := newTestManager(t, nil)

	a, _ := m.Session("p1")
	b, _ := m.Session("p2")
	again, _ := m.Session("p1")
	if a == b || a != again {
		t.Error("one session per player expected")
	}
	if a.Fairness().ClientSeed == b.Fairness().ClientSeed {
		t.Error("client seeds should differ between players")
	}
}

func TestSessionManager_RejectsConcurrentSpin(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil)

	if _, err := m.Spin(ctx, "p1"); err != nil {
		t.Fatalf("spin: %v", err)
	}
	if _, err := m.Spin(ctx, "p1"); !errors.Is(err, models.ErrSpinInProgress) {
		t.Errorf("expected ErrSpinInProgress, got %v", err)
	}
}

func TestSessionManager_ClosedRejectsSpins(t *testing.T) {
	m := newTestManager(t, nil)
	m.Close()

	if _, err := m.Spin(context.Background(), "p1"); err == nil {
		t.Error("closed manager should reject spins")
	}
}

func TestSessionManager_CleanupIdle(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))

	cfg := config.DefaultWheelConfig()
	cfg.Animation.Duration = time.Hour
	cfg.Animation.FrameInterval = time.Minute

	store := services.NewMemoryStore()
	m := services.NewSessionManager(services.ManagerDeps{
		Wheel:    testWheel(t),
		Store:    store,
		Prizes:   prizeService(store, localIssuer(t)),
		Fair:     services.NewFairSeedFrom("server-seed"),
		Location: time.UTC,
		Logger:   zap.NewNop(),
		Now:      clock.Now,
	}, cfg)
	t.Cleanup(m.Close)

	idle, _ := m.Session("idle")
	active, _ := m.Session("active")
	if _, err := m.Spin(ctx, "spinning"); err != nil {
		t.Fatalf("spin: %v", err)
	}

	clock.Advance(31 * time.Minute)
	m.Session("active")

	if got := m.CleanupIdle(30 * time.Minute); got != 1 {
		t.Fatalf("expected one eviction, got %d", got)
	}

	if s, _ := m.Session("idle"); s == idle {
		t.Error("idle session should have been replaced")
	}
	if s, _ := m.Session("active"); s != active {
		t.Error("recently used session should be kept")
	}
	s, _ := m.Session("spinning")
	if !s.Spinning() {
		t.Error("spinning session should be kept")
	}
	if got := s.Allowance(ctx).Remaining; got != 4 {
		t.Errorf("allowance should survive in storage, remaining %d", got)
	}
}
