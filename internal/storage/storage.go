package storage

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrCreateFailed      = errors.New("failed to create")
	ErrUpdateFailed      = errors.New("failed to update")
	ErrDeleteFailed      = errors.New("failed to delete")
	ErrInvalidTransition = errors.New("invalid game status transition")
)
