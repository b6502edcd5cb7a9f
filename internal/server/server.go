// Package server streams world snapshots to remote viewers.
package server

import (
	"context"
	"net"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/zeusync/physics/internal/config"
	"github.com/zeusync/physics/internal/core/observability/log"
	"github.com/zeusync/physics/internal/core/systems/physics"
	"github.com/zeusync/physics/internal/core/systems/physics/wire"
)

// Transport accepts viewers and drains their queues until ctx is done.
type Transport interface {
	Name() string
	Serve(ctx context.Context) error
	// Addr is the bound address once Serve is listening, nil before.
	Addr() net.Addr
}

// Server encodes snapshots every SnapshotEvery ticks and broadcasts them.
type Server struct {
	cfg       config.ReplicationConfig
	codec     wire.Codec
	hub       *Hub
	transport Transport
	logger    log.Log

	running atomic.Bool
	closed  atomic.Bool
}

func NewServer(cfg config.ReplicationConfig, logger log.Log) (*Server, error) {
	if logger == nil {
		logger = log.Provide()
	}
	logger = logger.With(log.String("component", "replication"))

	codec, err := wire.NewCodec(cfg.Format)
	if err != nil {
		return nil, err
	}

	hub := NewHub(cfg.SendBuffer)
	var transport Transport
	switch cfg.Transport {
	case config.TransportWebsocket:
		transport = NewWebsocketTransport(cfg.ListenAddr, cfg.Path, hub, logger)
	case config.TransportQUIC:
		tlsConfig, err := LoadTLSConfig(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, err
		}
		transport = NewQUICTransport(cfg.ListenAddr, tlsConfig, hub, logger)
	default:
		return nil, errors.Wrap(ErrUnknownTransport, cfg.Transport)
	}

	return &Server{cfg: cfg, codec: codec, hub: hub, transport: transport, logger: logger}, nil
}

func (s *Server) Hub() *Hub            { return s.hub }
func (s *Server) Codec() wire.Codec    { return s.codec }
func (s *Server) Transport() Transport { return s.transport }

// Run serves viewers until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}
	defer s.running.Store(false)

	s.logger.Info("replication started",
		log.String("transport", s.transport.Name()),
		log.String("listen_addr", s.cfg.ListenAddr),
		log.String("format", s.codec.Name()),
	)
	err := s.transport.Serve(ctx)
	s.hub.CloseAll()
	s.closed.Store(true)

	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("replication stopped", log.Error(err))
		return err
	}
	s.logger.Info("replication stopped")
	return nil
}

// Publish broadcasts a snapshot of store when tick falls on the snapshot
// cadence. Returns whether a frame was produced.
func (s *Server) Publish(tick uint64, store *physics.Store) (bool, error) {
	every := uint64(s.cfg.SnapshotEvery)
	if every > 1 && tick%every != 0 {
		return false, nil
	}
	if s.hub.Len() == 0 {
		return false, nil
	}

	frame, err := s.codec.Encode(wire.CaptureSnapshot(tick, store))
	if err != nil {
		return false, errors.Wrapf(err, "encode snapshot %d", tick)
	}

	if _, dropped := s.hub.Broadcast(frame); dropped > 0 {
		s.logger.Debug("snapshot dropped for slow viewers",
			log.Uint64("tick", tick),
			log.Int("dropped", dropped),
		)
	}
	return true, nil
}
