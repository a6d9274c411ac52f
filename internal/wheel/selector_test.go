package wheel_test

import (
	"errors"
	"testing"

	"zela-wheel-backend/internal/models"
	"zela-wheel-backend/internal/wheel"
)

func TestSelector_RollZeroIsGrand(t *testing.T) {
	tables := []wheel.Weights{
		wheel.DefaultWeights(10),
		wheel.DefaultWeights(4),
		{Grand: 1, Bonus: 0, Lose: 1},
		{Grand: 3, Bonus: 7, Lose: 990},
	}

	for _, w := range tables {
		sel, err := wheel.NewSelector(w)
		if err != nil {
			t.Fatalf("weights %+v: unexpected error: %v", w, err)
		}
		got, roll := sel.Draw(&scriptedRNG{ints: []int{0}})
		if roll != 0 || got != models.CategoryGrand {
			t.Errorf("weights %+v: roll 0 gave %s (roll %d), want GRAND", w, got, roll)
		}
		for roll := w.Grand + w.Bonus; roll < w.Total(); roll++ {
			if c := w.CategoryForRoll(roll); c != models.CategoryLose {
				t.Fatalf("weights %+v: roll %d gave %s, want LOSE", w, roll, c)
			}
		}
	}
}

func TestSelector_CanonicalRanges(t *testing.T) {
	w := wheel.DefaultWeights(10)
	if w.Total() != 100 {
		t.Fatalf("expected total 100, got %d", w.Total())
	}

	counts := map[models.Category]int{}
	for roll := 0; roll < w.Total(); roll++ {
		counts[w.CategoryForRoll(roll)]++
	}
	if counts[models.CategoryGrand] != 1 || counts[models.CategoryBonus] != 10 || counts[models.CategoryLose] != 89 {
		t.Errorf("unexpected distribution: %v", counts)
	}

	sel, _ := wheel.NewSelector(w)
	if got, _ := sel.Draw(&scriptedRNG{ints: []int{5}}); got != models.CategoryBonus {
		t.Errorf("roll 5 gave %s, want BONUS", got)
	}
	if got, _ := sel.Draw(&scriptedRNG{ints: []int{11}}); got != models.CategoryLose {
		t.Errorf("roll 11 gave %s, want LOSE", got)
	}
}

func TestSelector_InvalidWeights(t *testing.T) {
	for _, w := range []wheel.Weights{
		{Grand: 0, Bonus: 10, Lose: 90},
		{Grand: 1, Bonus: -1, Lose: 100},
	} {
		if _, err := wheel.NewSelector(w); !errors.Is(err, models.ErrInvalidWeights) {
			t.Errorf("weights %+v: expected ErrInvalidWeights, got %v", w, err)
		}
	}
}
