package models

import "time"

type SpinResult struct {
	SpinID     string       `json:"spin_id"`
	Outcome    Outcome      `json:"outcome"`
	Plan       RotationPlan `json:"plan"`
	Remaining  int          `json:"remaining"`
	Nonce      int64        `json:"nonce"`
	ServerHash string       `json:"server_hash"`
	StartAngle float64      `json:"start_angle"`
	Duration   int64        `json:"duration_ms"`
	StartedAt  time.Time    `json:"started_at"`
}

type PrizeStatus string

const (
	PrizeStatusPending PrizeStatus = "pending"
	PrizeStatusIssued  PrizeStatus = "issued"
	PrizeStatusFailed  PrizeStatus = "failed"
)

type PrizeClaim struct {
	SpinID    string      `json:"spin_id"`
	Status    PrizeStatus `json:"status"`
	Token     string      `json:"token,omitempty"`
	IssuedAt  time.Time   `json:"issued_at,omitempty"`
	ExpiresAt time.Time   `json:"expires_at,omitempty"`
	Filename  string      `json:"filename,omitempty"`
	Fallback  bool        `json:"fallback,omitempty"`
	Error     string      `json:"error,omitempty"`
}

type Settlement struct {
	SpinID    string      `json:"spin_id"`
	Outcome   Outcome     `json:"outcome"`
	Message   string      `json:"message"`
	Remaining int         `json:"remaining"`
	Angle     float64     `json:"angle"`
	Prize     *PrizeClaim `json:"prize,omitempty"`
	SettledAt time.Time   `json:"settled_at"`
}

// Frame is one renderer update. Highlight is -1 while no slot is selected.
type Frame struct {
	SpinID    string  `json:"spin_id"`
	Angle     float64 `json:"angle"`
	Highlight int     `json:"highlight"`
	Progress  float64 `json:"progress"`
}

type SessionState struct {
	State     SpinState   `json:"state"`
	Rotation  float64     `json:"rotation"`
	Remaining int         `json:"remaining"`
	Spin      *SpinResult `json:"spin,omitempty"`
	Last      *Settlement `json:"last,omitempty"`
}
