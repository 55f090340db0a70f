package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidUsername = errors.New("username must not be blank")
	ErrBookingNotFound = errors.New("booking not found")
	ErrRouteNotFound   = errors.New("route not found")
	ErrInvalidDate     = errors.New("travel date is required")
)

// CorruptStoreError indica que o conteúdo persistido não é JSON válido.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("corrupt booking store %s: %v", e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }
