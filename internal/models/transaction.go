package models

import "time"

type TokenSource string

const (
	TokenSourceLocal  TokenSource = "local"
	TokenSourceRemote TokenSource = "remote"
)

type TokenRecord struct {
	ID        string      `json:"id"`
	Token     string      `json:"token"`
	Prize     Category    `json:"prize"`
	PlayerID  string      `json:"player_id"`
	SpinID    string      `json:"spin_id,omitempty"`
	IssuedAt  time.Time   `json:"issued_at"`
	ExpiresAt time.Time   `json:"expires_at"`
	Used      bool        `json:"used"`
	Source    TokenSource `json:"source"`
	Fallback  bool        `json:"fallback,omitempty"`
}

func (r *TokenRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
	Fallback  bool
	Source    TokenSource
}

type Artifact struct {
	Filename string
	Content  []byte
}

type TokenValidation struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

type IssueRequest struct {
	Prize Category `json:"prize"`
}

// IssueResponse is the signing authority's reply; ExpiresAt is in unix seconds.
type IssueResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	Signature string `json:"signature,omitempty"`
}
