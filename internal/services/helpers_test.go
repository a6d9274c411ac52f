package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"zela-wheel-backend/internal/config"
	"zela-wheel-backend/internal/models"
	"zela-wheel-backend/internal/services"
	"zela-wheel-backend/internal/wheel"

	"go.uber.org/zap"
)

var errStorageDown = errors.New("storage down")

// scriptedRNG returns values from pre-set sequences, cycling when exhausted.
type scriptedRNG struct {
	ints   []int
	floats []float64
	ii, fi int
}

func (r *scriptedRNG) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[r.ii%len(r.ints)] % n
	r.ii++
	return v
}

func (r *scriptedRNG) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.5
	}
	v := r.floats[r.fi%len(r.floats)]
	r.fi++
	return v
}

// scriptedSource hands every spin a fresh scriptedRNG with the same script.
type scriptedSource struct {
	ints []int
}

func (s *scriptedSource) RNG(string, int64) (wheel.RNG, string) {
	return &scriptedRNG{ints: s.ints}, "scripted"
}

func (s *scriptedSource) ServerHash() string { return "scripted" }

// sequenceSource scripts each spin separately, indexed by nonce.
type sequenceSource struct {
	spins [][]int
}

func (s *sequenceSource) RNG(_ string, nonce int64) (wheel.RNG, string) {
	return &scriptedRNG{ints: s.spins[int(nonce)%len(s.spins)]}, "scripted"
}

func (s *sequenceSource) ServerHash() string { return "scripted" }

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errStorageDown
}

func (failingStore) Set(context.Context, string, string, time.Duration) error {
	return errStorageDown
}

// writeFailingStore reads fine but refuses every write.
type writeFailingStore struct {
	*services.MemoryStore
}

func (writeFailingStore) Set(context.Context, string, string, time.Duration) error {
	return errStorageDown
}

type fixedIssuer struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fixedIssuer) Issue(context.Context, models.Category) (models.IssuedToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return models.IssuedToken{}, f.err
	}
	return models.IssuedToken{
		Token:     "ZELA-9F0ABCDEFGHIJKLMN123",
		ExpiresAt: time.Now().Add(72 * time.Hour),
		Source:    models.TokenSourceRemote,
	}, nil
}

func (f *fixedIssuer) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type recordingRenderer struct {
	mu          sync.Mutex
	frames      []models.Frame
	settlements []models.Settlement
	prizes      []models.PrizeClaim
}

func (r *recordingRenderer) Render(_ string, f models.Frame) {
	r.mu.Lock()
	r.frames = append(r.frames, f)
	r.mu.Unlock()
}

func (r *recordingRenderer) Settled(_ string, s models.Settlement) {
	r.mu.Lock()
	r.settlements = append(r.settlements, s)
	r.mu.Unlock()
}

func (r *recordingRenderer) Prize(_ string, c models.PrizeClaim) {
	r.mu.Lock()
	r.prizes = append(r.prizes, c)
	r.mu.Unlock()
}

func (r *recordingRenderer) snapshot() ([]models.Frame, []models.Settlement, []models.PrizeClaim) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Frame(nil), r.frames...),
		append([]models.Settlement(nil), r.settlements...),
		append([]models.PrizeClaim(nil), r.prizes...)
}

// testWheel is the 12-slot wheel with 1 GRAND, 4 BONUS and 7 LOSE slots.
func testWheel(t *testing.T) *wheel.Wheel {
	t.Helper()
	w, err := wheel.Build(
		wheel.LayoutConfig{Mode: wheel.LayoutFixed, Slots: 12, Grand: 1, Bonus: 4},
		wheel.DefaultWeights(10),
		wheel.DefaultRotationConfig(),
		wheel.DefaultRNG{},
	)
	if err != nil {
		t.Fatalf("build wheel: %v", err)
	}
	return w
}

func localIssuer(t *testing.T) *services.LocalIssuer {
	t.Helper()
	v, err := wheel.NewValidator(wheel.CanonicalTokenFormat())
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	return services.NewLocalIssuer(wheel.NewGenerator(v, wheel.DefaultMaxAttempts), wheel.DefaultRNG{}, 72*time.Hour, zap.NewNop())
}

func prizeService(store services.Storage, issuer services.TokenIssuer) *services.PrizeService {
	return services.NewPrizeService(issuer, services.NewRegistry(store, zap.NewNop()),
		services.NewArtifactBuilder(config.DefaultWheelConfig().Artifact), zap.NewNop())
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(t time.Time) *testClock {
	return &testClock{now: t}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
