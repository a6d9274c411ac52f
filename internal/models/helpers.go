package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func GenerateSpinID() string {
	return fmt.Sprintf("spin_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateTokenRecordID() string {
	return fmt.Sprintf("tok_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateSeed(n int) (string, error) {
	bytes := make([]byte, n)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate seed: %v", err)
	}
	return hex.EncodeToString(bytes), nil
}

func GenerateClientSeed() (string, error) {
	return GenerateSeed(16)
}

func NewAllowance(day string, dailyCap int) SpinAllowance {
	return SpinAllowance{Day: day, Remaining: dailyCap}
}

func (c Category) Message(bonusSpins int) string {
	switch c {
	case CategoryGrand:
		return "GRAND PRIZE! Token generated!"
	case CategoryBonus:
		return fmt.Sprintf("+%d spins!", bonusSpins)
	default:
		return "Try again!"
	}
}
