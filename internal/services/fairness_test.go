package services_test

import (
	"testing"

	"zela-wheel-backend/internal/services"
)

func TestFairRNG_Deterministic(t *testing.T) {
	a := services.NewFairRNG("server", "client", 7)
	b := services.NewFairRNG("server", "client", 7)
	c := services.NewFairRNG("server", "client", 8)

	same := true
	for i := 0; i < 16; i++ {
		fa, fb, fc := a.Float64(), b.Float64(), c.Float64()
		if fa != fb {
			t.Fatalf("draw %d differs for identical seeds: %v vs %v", i, fa, fb)
		}
		if fa < 0 || fa >= 1 {
			t.Fatalf("draw %d out of range: %v", i, fa)
		}
		if fa != fc {
			same = false
		}
	}
	if same {
		t.Error("different nonces should give different draws")
	}
}

func TestFairRNG_IntnRange(t *testing.T) {
	r := services.NewFairRNG("server", "client", 0)
	for i := 0; i < 5000; i++ {
		if v := r.Intn(12); v < 0 || v >= 12 {
			t.Fatalf("Intn(12) = %d", v)
		}
	}
	if v := r.Intn(1); v != 0 {
		t.Errorf("Intn(1) = %d", v)
	}
}

func TestVerifySpinReproducesSpin(t *testing.T) {
	w := testWheel(t)
	fair := services.NewFairSeedFrom("revealed-server-seed")

	for nonce := int64(0); nonce < 50; nonce++ {
		rng, hash := fair.RNG("client-seed", nonce)
		outcome, plan, roll, err := w.Spin(rng)
		if err != nil {
			t.Fatalf("spin: %v", err)
		}

		proof, err := services.VerifySpin(w, "revealed-server-seed", "client-seed", nonce)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if proof.ServerHash != hash {
			t.Fatalf("hash mismatch: %s vs %s", proof.ServerHash, hash)
		}
		if proof.Roll != roll || proof.Category != outcome.Category ||
			proof.SlotIndex != outcome.SlotIndex || proof.FinalAngle != plan.FinalAngle {
			t.Fatalf("nonce %d: proof %+v does not match spin %+v %+v", nonce, proof, outcome, plan)
		}
	}
}

func TestFairSeedRotate(t *testing.T) {
	fair, err := services.NewFairSeed()
	if err != nil {
		t.Fatalf("new fair seed: %v", err)
	}
	before := fair.ServerHash()

	revealed, err := fair.Rotate()
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if services.HashSeed(revealed) != before {
		t.Error("revealed seed should hash to the previously published hash")
	}
	if fair.ServerHash() == before {
		t.Error("rotation should publish a new hash")
	}
}
