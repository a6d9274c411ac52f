package models

import "errors"

var (
	ErrInvalidLayout      = errors.New("invalid wheel layout")
	ErrInvalidWeights     = errors.New("invalid outcome weights")
	ErrInvalidRotation    = errors.New("invalid rotation settings")
	ErrInvalidTokenFormat = errors.New("invalid token format")
	ErrNoSlotForCategory  = errors.New("no slot for category")

	ErrNoSpinsLeft    = errors.New("no spins left today")
	ErrSpinInProgress = errors.New("spin already in progress")
	ErrIssuance       = errors.New("could not create prize file, try later")
	ErrNoPendingPrize = errors.New("no prize awaiting issuance")
	ErrTokenNotFound  = errors.New("token not found")
)
