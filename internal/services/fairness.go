package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"

	"zela-wheel-backend/internal/models"
	"zela-wheel-backend/internal/wheel"
)

// FairRNG derives every draw of one spin from HMAC-SHA256(serverSeed, "wheel:clientSeed:nonce:counter").
type FairRNG struct {
	serverSeed []byte
	clientSeed string
	nonce      int64
	counter    int
}

func NewFairRNG(serverSeed, clientSeed string, nonce int64) *FairRNG {
	return &FairRNG{serverSeed: []byte(serverSeed), clientSeed: clientSeed, nonce: nonce}
}

// Float64 uses the first 52 bits of the next digest.
func (r *FairRNG) Float64() float64 {
	message := fmt.Sprintf("wheel:%s:%d:%d", r.clientSeed, r.nonce, r.counter)
	r.counter++

	h := hmac.New(sha256.New, r.serverSeed)
	h.Write([]byte(message))
	sum := h.Sum(nil)

	n := binary.BigEndian.Uint64(sum[:8]) >> 12
	return float64(n) / float64(uint64(1)<<52)
}

func (r *FairRNG) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	v := int(r.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

func HashSeed(seed string) string {
	hash := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(hash[:])
}

// SpinSource hands out the random source of each spin together with the published seed hash.
type SpinSource interface {
	RNG(clientSeed string, nonce int64) (wheel.RNG, string)
	ServerHash() string
}

// FairSeed holds the server seed; only its hash is published until it is rotated out.
type FairSeed struct {
	mu         sync.RWMutex
	serverSeed string
}

func NewFairSeed() (*FairSeed, error) {
	seed, err := models.GenerateSeed(32)
	if err != nil {
		return nil, err
	}
	return &FairSeed{serverSeed: seed}, nil
}

func NewFairSeedFrom(serverSeed string) *FairSeed {
	return &FairSeed{serverSeed: serverSeed}
}

func (f *FairSeed) ServerHash() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return HashSeed(f.serverSeed)
}

// RNG returns the per-spin source and the hash of the seed it was built from.
func (f *FairSeed) RNG(clientSeed string, nonce int64) (wheel.RNG, string) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return NewFairRNG(f.serverSeed, clientSeed, nonce), HashSeed(f.serverSeed)
}

// Rotate installs a fresh seed and reveals the previous one.
func (f *FairSeed) Rotate() (string, error) {
	next, err := models.GenerateSeed(32)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	previous := f.serverSeed
	f.serverSeed = next
	return previous, nil
}

// VerifySpin replays a spin from its seeds on the given wheel.
func VerifySpin(w *wheel.Wheel, serverSeed, clientSeed string, nonce int64) (*models.SpinProof, error) {
	outcome, plan, roll, err := w.Spin(NewFairRNG(serverSeed, clientSeed, nonce))
	if err != nil {
		return nil, fmt.Errorf("failed to replay spin: %w", err)
	}

	return &models.SpinProof{
		ServerSeed: serverSeed,
		ServerHash: HashSeed(serverSeed),
		ClientSeed: clientSeed,
		Nonce:      nonce,
		Roll:       roll,
		Category:   outcome.Category,
		SlotIndex:  outcome.SlotIndex,
		FinalAngle: plan.FinalAngle,
	}, nil
}
