package server

import "github.com/pkg/errors"

var (
	ErrServerClosed         = errors.New("server is closed")
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrFrameTooLarge        = errors.New("frame exceeds the size limit")
	ErrUnknownTransport     = errors.New("unknown replication transport")
)
