package wheel

import (
	"fmt"
	"math"

	"zela-wheel-backend/internal/models"
)

const (
	// DefaultReferenceAngle puts slot 0 at the top in screen coordinates.
	DefaultReferenceAngle = -90.0
	// DefaultPointerAngle puts the pointer at the bottom.
	DefaultPointerAngle = 90.0
)

type RotationConfig struct {
	ReferenceAngle float64 `yaml:"reference_angle"`
	PointerAngle   float64 `yaml:"pointer_angle"`
	MinRevolutions int     `yaml:"min_revolutions"`
	MaxRevolutions int     `yaml:"max_revolutions"`
	// JitterFraction bounds the stop offset as a fraction of one slot width.
	JitterFraction float64 `yaml:"jitter_fraction"`
}

func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		ReferenceAngle: DefaultReferenceAngle,
		PointerAngle:   DefaultPointerAngle,
		MinRevolutions: 6,
		MaxRevolutions: 10,
		JitterFraction: 0.3,
	}
}

func (c RotationConfig) Validate() error {
	// At least one full turn keeps the wheel moving forward from any resting angle.
	if c.MinRevolutions < 1 || c.MaxRevolutions < c.MinRevolutions {
		return fmt.Errorf("%w: revolutions range [%d, %d]",
			models.ErrInvalidRotation, c.MinRevolutions, c.MaxRevolutions)
	}
	// Jitter of half a slot or more could decode to the neighbour.
	if c.JitterFraction < 0 || c.JitterFraction >= 0.5 {
		return fmt.Errorf("%w: jitter fraction %.3f not in [0, 0.5)",
			models.ErrInvalidRotation, c.JitterFraction)
	}
	return nil
}

type Planner struct {
	cfg   RotationConfig
	slots int
	width float64
}

func NewPlanner(slots int, cfg RotationConfig) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if slots < MinSlots {
		return nil, fmt.Errorf("%w: need at least %d slots, got %d", models.ErrInvalidLayout, MinSlots, slots)
	}
	return &Planner{cfg: cfg, slots: slots, width: 360 / float64(slots)}, nil
}

// BaseAngle is the rotation that centres slot under the pointer.
func (p *Planner) BaseAngle(slot int) float64 {
	center := p.cfg.ReferenceAngle + (float64(slot)+0.5)*p.width
	return p.cfg.PointerAngle - center
}

// Plan returns a monotonic multi-revolution target that still decodes to slot.
func (p *Planner) Plan(slot int, rng RNG) (models.RotationPlan, error) {
	if slot < 0 || slot >= p.slots {
		return models.RotationPlan{}, fmt.Errorf("slot %d out of range [0, %d)", slot, p.slots)
	}

	revolutions := p.cfg.MinRevolutions
	if span := p.cfg.MaxRevolutions - p.cfg.MinRevolutions; span > 0 {
		revolutions += rng.Intn(span + 1)
	}
	jitter := (rng.Float64()*2 - 1) * p.cfg.JitterFraction * p.width

	base := p.BaseAngle(slot)
	return models.RotationPlan{
		FinalAngle:  base + float64(revolutions)*360 + jitter,
		BaseAngle:   base,
		Revolutions: revolutions,
		Jitter:      jitter,
	}, nil
}

// Decode returns the slot resting under the pointer at the given wheel rotation.
func (p *Planner) Decode(angle float64) int {
	normalized := math.Mod(p.cfg.PointerAngle-angle-p.cfg.ReferenceAngle, 360)
	if normalized < 0 {
		normalized += 360
	}
	return int(math.Floor(normalized/p.width)) % p.slots
}

func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// Interpolate returns the eased angle at progress t in [0, 1].
func Interpolate(start, end, t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	return start + (end-start)*EaseOutCubic(t)
}
