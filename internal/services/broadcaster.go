package services

import "zela-wheel-backend/internal/models"

// Renderer receives the visual side of a spin. Calls must not block.
type Renderer interface {
	Render(playerID string, frame models.Frame)
	Settled(playerID string, settlement models.Settlement)
	Prize(playerID string, claim models.PrizeClaim)
}

type NopRenderer struct{}

func (NopRenderer) Render(string, models.Frame) {}

func (NopRenderer) Settled(string, models.Settlement) {}

func (NopRenderer) Prize(string, models.PrizeClaim) {}
