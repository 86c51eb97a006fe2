package models

import "errors"

// Custom errors
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidDate  = errors.New("invalid date")
	ErrDuplicateKey = errors.New("duplicate key violation")
)
