package models

type FairnessInfo struct {
	ClientSeed string `json:"client_seed"`
	ServerHash string `json:"server_hash"`
	Nonce      int64  `json:"nonce"`
}

type VerifyRequest struct {
	ServerSeed string `json:"server_seed" binding:"required"`
	ClientSeed string `json:"client_seed" binding:"required"`
	Nonce      int64  `json:"nonce"`
}

type SpinProof struct {
	ServerSeed string   `json:"server_seed"`
	ServerHash string   `json:"server_hash"`
	ClientSeed string   `json:"client_seed"`
	Nonce      int64    `json:"nonce"`
	Roll       int      `json:"roll"`
	Category   Category `json:"category"`
	SlotIndex  int      `json:"slot_index"`
	FinalAngle float64  `json:"final_angle"`
}
