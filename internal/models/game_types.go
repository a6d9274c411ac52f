package models

import "fmt"

type Category string

const (
	CategoryGrand Category = "GRAND"
	CategoryBonus Category = "BONUS"
	CategoryLose  Category = "LOSE"
)

// Categories lists every category in roll order: GRAND owns the lowest sub-range.
var Categories = []Category{CategoryGrand, CategoryBonus, CategoryLose}

func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryGrand, CategoryBonus, CategoryLose:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

type Slot struct {
	Index    int      `json:"index"`
	Category Category `json:"category"`
}

type Outcome struct {
	Category  Category `json:"category"`
	SlotIndex int      `json:"slot_index"`
}

type RotationPlan struct {
	FinalAngle  float64 `json:"final_angle"`
	BaseAngle   float64 `json:"base_angle"`
	Revolutions int     `json:"revolutions"`
	Jitter      float64 `json:"jitter"`
}

type SpinState string

const (
	SpinStateIdle     SpinState = "idle"
	SpinStateSpinning SpinState = "spinning"
	SpinStateSettling SpinState = "settling"
)
