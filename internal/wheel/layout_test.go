package wheel_test

import (
	"errors"
	"testing"

	"zela-wheel-backend/internal/models"
	"zela-wheel-backend/internal/wheel"
)

func TestNewLayout_Fixed(t *testing.T) {
	l, err := wheel.NewLayout(wheel.LayoutConfig{Mode: wheel.LayoutFixed, Slots: 12, Grand: 1, Bonus: 6},
		wheel.DefaultWeights(10), &scriptedRNG{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []models.Category{
		models.CategoryGrand,
		models.CategoryBonus, models.CategoryLose,
		models.CategoryBonus, models.CategoryLose,
		models.CategoryBonus, models.CategoryLose,
		models.CategoryBonus, models.CategoryLose,
		models.CategoryBonus, models.CategoryLose,
		models.CategoryBonus,
	}
	for i, c := range want {
		if l.Category(i) != c {
			t.Errorf("slot %d: expected %s, got %s", i, c, l.Category(i))
		}
	}
}

func TestNewLayout_ShuffledKeepsCounts(t *testing.T) {
	cfg := wheel.LayoutConfig{Mode: wheel.LayoutShuffled, Slots: 100, Grand: 1, Bonus: 10}
	l, err := wheel.NewLayout(cfg, wheel.DefaultWeights(10), newSeededRNG(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if l.Size() != 100 {
		t.Fatalf("expected 100 slots, got %d", l.Size())
	}
	if l.Count(models.CategoryGrand) != 1 || l.Count(models.CategoryBonus) != 10 || l.Count(models.CategoryLose) != 89 {
		t.Errorf("unexpected counts: grand=%d bonus=%d lose=%d",
			l.Count(models.CategoryGrand), l.Count(models.CategoryBonus), l.Count(models.CategoryLose))
	}

	again, _ := wheel.NewLayout(cfg, wheel.DefaultWeights(10), newSeededRNG(7))
	for i := 0; i < l.Size(); i++ {
		if l.Category(i) != again.Category(i) {
			t.Fatalf("same seed produced different layouts at slot %d", i)
		}
	}
}

func TestLayout_AssignGrandIsDeterministic(t *testing.T) {
	explicit := []models.Category{
		models.CategoryLose, models.CategoryBonus, models.CategoryLose, models.CategoryGrand,
		models.CategoryLose, models.CategoryBonus,
	}
	l, err := wheel.NewLayout(wheel.LayoutConfig{Mode: wheel.LayoutExplicit, Explicit: explicit},
		wheel.DefaultWeights(10), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rng := newSeededRNG(1)
	for range 100 {
		idx, err := l.Assign(models.CategoryGrand, rng)
		if err != nil || idx != 3 {
			t.Fatalf("expected GRAND at 3, got %d (%v)", idx, err)
		}
	}
	for range 100 {
		idx, _ := l.Assign(models.CategoryBonus, rng)
		if l.Category(idx) != models.CategoryBonus {
			t.Fatalf("BONUS assigned to %s slot %d", l.Category(idx), idx)
		}
		idx, _ = l.Assign(models.CategoryLose, rng)
		if l.Category(idx) != models.CategoryLose {
			t.Fatalf("LOSE assigned to %s slot %d", l.Category(idx), idx)
		}
	}
}

func TestNewLayout_Rejects(t *testing.T) {
	weights := wheel.DefaultWeights(10)
	cases := map[string]wheel.LayoutConfig{
		"no grand":     {Mode: wheel.LayoutFixed, Slots: 12, Grand: 0, Bonus: 4},
		"no lose":      {Mode: wheel.LayoutFixed, Slots: 12, Grand: 1, Bonus: 11},
		"no bonus":     {Mode: wheel.LayoutFixed, Slots: 12, Grand: 1, Bonus: 0},
		"overfull":     {Mode: wheel.LayoutFixed, Slots: 12, Grand: 2, Bonus: 11},
		"too small":    {Mode: wheel.LayoutFixed, Slots: 2, Grand: 1, Bonus: 1},
		"unknown mode": {Mode: "spiral", Slots: 12, Grand: 1, Bonus: 4},
		"count mismatch": {Mode: wheel.LayoutExplicit, Slots: 4,
			Explicit: []models.Category{models.CategoryGrand, models.CategoryBonus, models.CategoryLose}},
		"bad category": {Mode: wheel.LayoutExplicit,
			Explicit: []models.Category{models.CategoryGrand, models.CategoryBonus, "JACKPOT"}},
	}

	for name, cfg := range cases {
		if _, err := wheel.NewLayout(cfg, weights, &scriptedRNG{}); !errors.Is(err, models.ErrInvalidLayout) {
			t.Errorf("%s: expected ErrInvalidLayout, got %v", name, err)
		}
	}
}
