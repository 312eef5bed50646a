package service

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidID           = errors.New("invalid id")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInsufficientBalance = errors.New("amount exceeds available balance")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrNoBridgeData        = errors.New("no data received from MT5 bridge yet")
)
