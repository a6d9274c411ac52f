package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"zela-wheel-backend/internal/wheel"
)

type AnimationConfig struct {
	Duration       time.Duration `yaml:"duration"`
	FrameInterval  time.Duration `yaml:"frame_interval"`
	HighlightAfter float64       `yaml:"highlight_after"`
}

type AllowanceConfig struct {
	DailySpins int `yaml:"daily_spins"`
	BonusSpins int `yaml:"bonus_spins"`
}

type TokenConfig struct {
	wheel.TokenFormat `yaml:",inline"`
	MaxAttempts       int           `yaml:"max_attempts"`
	TTL               time.Duration `yaml:"ttl"`
}

type ArtifactConfig struct {
	Base      string `yaml:"base"`
	Extension string `yaml:"extension"`
	Note      string `yaml:"note"`
}

type WheelConfig struct {
	Layout    wheel.LayoutConfig   `yaml:"layout"`
	Weights   wheel.Weights        `yaml:"weights"`
	Rotation  wheel.RotationConfig `yaml:"rotation"`
	Animation AnimationConfig      `yaml:"animation"`
	Allowance AllowanceConfig      `yaml:"allowance"`
	Token     TokenConfig          `yaml:"token"`
	Artifact  ArtifactConfig       `yaml:"artifact"`
}

// DefaultWheelConfig is the 12-slot wheel with 1-in-100 GRAND odds.
func DefaultWheelConfig() *WheelConfig {
	return &WheelConfig{
		Layout: wheel.LayoutConfig{
			Mode:  wheel.LayoutFixed,
			Slots: 12,
			Grand: 1,
			Bonus: 6,
		},
		Weights:  wheel.DefaultWeights(10),
		Rotation: wheel.DefaultRotationConfig(),
		Animation: AnimationConfig{
			Duration:       5200 * time.Millisecond,
			FrameInterval:  50 * time.Millisecond,
			HighlightAfter: 0.98,
		},
		Allowance: AllowanceConfig{DailySpins: 5, BonusSpins: 5},
		Token: TokenConfig{
			TokenFormat: wheel.CanonicalTokenFormat(),
			MaxAttempts: wheel.DefaultMaxAttempts,
			TTL:         72 * time.Hour,
		},
		Artifact: ArtifactConfig{
			Base:      "ZELA-",
			Extension: "zela",
			Note:      "Redeem on the ZELA Verify page",
		},
	}
}

// LoadWheelConfig reads YAML over the defaults; an empty path yields the defaults.
func LoadWheelConfig(path string) (*WheelConfig, error) {
	cfg := DefaultWheelConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read wheel config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse wheel config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *WheelConfig) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if err := c.Rotation.Validate(); err != nil {
		return err
	}
	if err := c.Token.Validate(); err != nil {
		return err
	}
	if c.Allowance.DailySpins < 1 {
		return fmt.Errorf("allowance.daily_spins must be positive, got %d", c.Allowance.DailySpins)
	}
	if c.Allowance.BonusSpins < 0 {
		return fmt.Errorf("allowance.bonus_spins must not be negative, got %d", c.Allowance.BonusSpins)
	}
	if c.Animation.Duration <= 0 || c.Animation.FrameInterval <= 0 {
		return fmt.Errorf("animation duration and frame_interval must be positive")
	}
	if c.Token.TTL <= 0 {
		return fmt.Errorf("token.ttl must be positive")
	}
	return nil
}
