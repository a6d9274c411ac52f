package wheel

import (
	"fmt"

	"zela-wheel-backend/internal/models"
)

type LayoutMode string

const (
	// LayoutFixed places GRAND slots first, then alternates BONUS and LOSE.
	LayoutFixed LayoutMode = "fixed"
	// LayoutShuffled shuffles the category counts once at construction.
	LayoutShuffled LayoutMode = "shuffled"
	// LayoutExplicit uses the configured slot list as is.
	LayoutExplicit LayoutMode = "explicit"
)

const MinSlots = 3

type LayoutConfig struct {
	Mode     LayoutMode        `yaml:"mode"`
	Slots    int               `yaml:"slots"`
	Grand    int               `yaml:"grand"`
	Bonus    int               `yaml:"bonus"`
	Explicit []models.Category `yaml:"explicit"`
}

// Layout is immutable once built.
type Layout struct {
	slots      []models.Category
	byCategory map[models.Category][]int
}

func NewLayout(cfg LayoutConfig, weights Weights, rng RNG) (*Layout, error) {
	var slots []models.Category

	switch cfg.Mode {
	case LayoutExplicit:
		if len(cfg.Explicit) == 0 {
			return nil, fmt.Errorf("%w: explicit mode needs a slot list", models.ErrInvalidLayout)
		}
		if cfg.Slots != 0 && cfg.Slots != len(cfg.Explicit) {
			return nil, fmt.Errorf("%w: %d slots configured but %d listed",
				models.ErrInvalidLayout, cfg.Slots, len(cfg.Explicit))
		}
		slots = append(slots, cfg.Explicit...)
	case LayoutFixed, LayoutShuffled, "":
		lose := cfg.Slots - cfg.Grand - cfg.Bonus
		if cfg.Grand < 0 || cfg.Bonus < 0 || lose < 0 {
			return nil, fmt.Errorf("%w: counts grand=%d bonus=%d do not fit %d slots",
				models.ErrInvalidLayout, cfg.Grand, cfg.Bonus, cfg.Slots)
		}
		if cfg.Mode == LayoutShuffled {
			slots = shuffledSlots(cfg.Grand, cfg.Bonus, lose, rng)
		} else {
			slots = fixedSlots(cfg.Grand, cfg.Bonus, lose)
		}
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", models.ErrInvalidLayout, cfg.Mode)
	}

	l := &Layout{
		slots:      slots,
		byCategory: make(map[models.Category][]int, len(models.Categories)),
	}
	for i, c := range slots {
		if _, err := models.ParseCategory(string(c)); err != nil {
			return nil, fmt.Errorf("%w: slot %d: %v", models.ErrInvalidLayout, i, err)
		}
		l.byCategory[c] = append(l.byCategory[c], i)
	}

	if err := l.validate(weights); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Layout) validate(weights Weights) error {
	if len(l.slots) < MinSlots {
		return fmt.Errorf("%w: need at least %d slots, got %d", models.ErrInvalidLayout, MinSlots, len(l.slots))
	}
	if l.Count(models.CategoryGrand) < 1 {
		return fmt.Errorf("%w: no GRAND slot", models.ErrInvalidLayout)
	}
	for _, c := range models.Categories {
		if weights.Of(c) > 0 && l.Count(c) == 0 {
			return fmt.Errorf("%w: category %s has weight %d but no slot",
				models.ErrInvalidLayout, c, weights.Of(c))
		}
	}
	return nil
}

func fixedSlots(grand, bonus, lose int) []models.Category {
	slots := make([]models.Category, 0, grand+bonus+lose)
	for range grand {
		slots = append(slots, models.CategoryGrand)
	}
	for bonus > 0 || lose > 0 {
		if bonus > 0 {
			slots = append(slots, models.CategoryBonus)
			bonus--
		}
		if lose > 0 {
			slots = append(slots, models.CategoryLose)
			lose--
		}
	}
	return slots
}

func shuffledSlots(grand, bonus, lose int, rng RNG) []models.Category {
	slots := fixedSlots(grand, bonus, lose)
	// Fisher-Yates over the whole wheel.
	for i := len(slots) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		slots[i], slots[j] = slots[j], slots[i]
	}
	return slots
}

func (l *Layout) Size() int {
	return len(l.slots)
}

func (l *Layout) SlotWidth() float64 {
	return 360 / float64(len(l.slots))
}

func (l *Layout) Category(i int) models.Category {
	return l.slots[i]
}

func (l *Layout) Count(c models.Category) int {
	return len(l.byCategory[c])
}

func (l *Layout) Indices(c models.Category) []int {
	return append([]int(nil), l.byCategory[c]...)
}

func (l *Layout) Slots() []models.Slot {
	out := make([]models.Slot, len(l.slots))
	for i, c := range l.slots {
		out[i] = models.Slot{Index: i, Category: c}
	}
	return out
}

// Assign picks a slot of the given category uniformly.
func (l *Layout) Assign(c models.Category, rng RNG) (int, error) {
	indices := l.byCategory[c]
	switch len(indices) {
	case 0:
		return 0, fmt.Errorf("%w: %s", models.ErrNoSlotForCategory, c)
	case 1:
		return indices[0], nil
	}
	return indices[rng.Intn(len(indices))], nil
}
