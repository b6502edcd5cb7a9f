package system

import "github.com/pkg/errors"

var (
	ErrSystemExists   = errors.New("system already registered")
	ErrSystemNotFound = errors.New("system not found")
	ErrSystemPanic    = errors.New("system panicked")
	ErrWorldFailed    = errors.New("world has failed")
)
