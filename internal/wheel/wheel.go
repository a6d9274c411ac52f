package wheel

import (
	"fmt"

	"zela-wheel-backend/internal/models"
)

// Wheel bundles a layout with its selector and planner.
type Wheel struct {
	layout   *Layout
	selector *Selector
	planner  *Planner
}

func New(layout *Layout, selector *Selector, planner *Planner) (*Wheel, error) {
	if layout.Size() != planner.slots {
		return nil, fmt.Errorf("%w: planner built for %d slots, layout has %d",
			models.ErrInvalidLayout, planner.slots, layout.Size())
	}
	for _, c := range models.Categories {
		if selector.Weights().Of(c) > 0 && layout.Count(c) == 0 {
			return nil, fmt.Errorf("%w: no slot for weighted category %s", models.ErrInvalidLayout, c)
		}
	}
	return &Wheel{layout: layout, selector: selector, planner: planner}, nil
}

// Build constructs the layout, selector and planner from configuration.
func Build(layout LayoutConfig, weights Weights, rotation RotationConfig, rng RNG) (*Wheel, error) {
	selector, err := NewSelector(weights)
	if err != nil {
		return nil, err
	}
	l, err := NewLayout(layout, weights, rng)
	if err != nil {
		return nil, err
	}
	planner, err := NewPlanner(l.Size(), rotation)
	if err != nil {
		return nil, err
	}
	return New(l, selector, planner)
}

func (w *Wheel) Layout() *Layout {
	return w.layout
}

func (w *Wheel) Selector() *Selector {
	return w.selector
}

func (w *Wheel) Planner() *Planner {
	return w.planner
}

// Spin draws the category, the slot and the rotation, in that order, from rng.
func (w *Wheel) Spin(rng RNG) (models.Outcome, models.RotationPlan, int, error) {
	category, roll := w.selector.Draw(rng)

	slot, err := w.layout.Assign(category, rng)
	if err != nil {
		return models.Outcome{}, models.RotationPlan{}, roll, err
	}

	plan, err := w.planner.Plan(slot, rng)
	if err != nil {
		return models.Outcome{}, models.RotationPlan{}, roll, err
	}

	return models.Outcome{Category: category, SlotIndex: slot}, plan, roll, nil
}
