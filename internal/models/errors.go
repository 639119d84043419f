package models

import "errors"

// Custom errors
var (
	ErrInsufficientData = errors.New("insufficient data: no qualifying observations")
	ErrNotFound         = errors.New("record not found")
	ErrLookahead        = errors.New("lookahead violation: observation dated on or after evaluation date")
	ErrInvalidStatType  = errors.New("invalid stat type")
	ErrInvalidKey       = errors.New("invalid prediction key")
)
