package wheel

import (
	"fmt"

	"zela-wheel-backend/internal/models"
)

// Weights are integer odds over the categories; a roll in [0, Total) picks one.
type Weights struct {
	Grand int `yaml:"grand" json:"grand"`
	Bonus int `yaml:"bonus" json:"bonus"`
	Lose  int `yaml:"lose" json:"lose"`
}

// DefaultWeights is 1-in-100 GRAND, bonus-in-100 BONUS, remainder LOSE.
func DefaultWeights(bonus int) Weights {
	return Weights{Grand: 1, Bonus: bonus, Lose: 100 - 1 - bonus}
}

func (w Weights) Total() int {
	return w.Grand + w.Bonus + w.Lose
}

func (w Weights) Of(c models.Category) int {
	switch c {
	case models.CategoryGrand:
		return w.Grand
	case models.CategoryBonus:
		return w.Bonus
	case models.CategoryLose:
		return w.Lose
	}
	return 0
}

func (w Weights) Validate() error {
	if w.Grand < 1 {
		return fmt.Errorf("%w: grand weight must be at least 1, got %d", models.ErrInvalidWeights, w.Grand)
	}
	if w.Bonus < 0 || w.Lose < 0 {
		return fmt.Errorf("%w: weights must not be negative", models.ErrInvalidWeights)
	}
	return nil
}

// CategoryForRoll maps a roll by cumulative ranges: [0,G) GRAND, [G,G+B) BONUS, rest LOSE.
func (w Weights) CategoryForRoll(roll int) models.Category {
	switch {
	case roll < w.Grand:
		return models.CategoryGrand
	case roll < w.Grand+w.Bonus:
		return models.CategoryBonus
	default:
		return models.CategoryLose
	}
}

type Selector struct {
	weights Weights
}

func NewSelector(w Weights) (*Selector, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Selector{weights: w}, nil
}

func (s *Selector) Weights() Weights {
	return s.weights
}

// Draw returns the drawn category together with the roll it came from.
func (s *Selector) Draw(rng RNG) (models.Category, int) {
	roll := rng.Intn(s.weights.Total())
	return s.weights.CategoryForRoll(roll), roll
}
