package models

import "fmt"

var (
	ErrZeroAmount                   = fmt.Errorf("zero amount")
	ErrExpired                      = fmt.Errorf("market has expired")
	ErrNotExpired                   = fmt.Errorf("market has not expired")
	ErrPaused                       = fmt.Errorf("market is paused")
	ErrNotOwner                     = fmt.Errorf("caller is not the owner")
	ErrNotAuthorized                = fmt.Errorf("caller is not authorized")
	ErrInsufficientUnderlyingCache  = fmt.Errorf("insufficient underlying cache")
	ErrInsufficientStrikeCache      = fmt.Errorf("insufficient strike cache")
	ErrInsufficientOptionsDelivered = fmt.Errorf("insufficient option tokens delivered")
	ErrInsufficientStrikeDelivered  = fmt.Errorf("insufficient strike assets delivered")
)
