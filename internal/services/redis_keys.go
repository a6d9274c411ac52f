package services

import "time"

const (
	KeyAllowance    = "wheel:%s:allowance"
	KeyPlayerTokens = "wheel:%s:tokens"
	KeyTokenIndex   = "wheel:token:%s"

	TTLAllowance   = 7 * 24 * time.Hour
	TTLTokenRecord = 30 * 24 * time.Hour // 30 days

	MaxPlayerTokens = 100
)
