package config

import (
	"github.com/pkg/errors"
)

const (
	BroadphaseAll   = "all"
	BroadphaseSweep = "sweep"

	TransportWebsocket = "websocket"
	TransportQUIC      = "quic"
)

// Validate checks ranges, enumerations and scene references.
func (c *Config) Validate() error {
	sim := c.Simulation
	switch {
	case sim.TickRate <= 0:
		return invalid("simulation.tick_rate must be positive, got %d", sim.TickRate)
	case sim.CollisionEpsilon < 0:
		return invalid("simulation.collision_epsilon must not be negative, got %v", sim.CollisionEpsilon)
	case sim.PoseWorkers < 0:
		return invalid("simulation.pose_workers must not be negative, got %d", sim.PoseWorkers)
	case sim.Broadphase != BroadphaseAll && sim.Broadphase != BroadphaseSweep:
		return invalid("simulation.broadphase %q is not supported", sim.Broadphase)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return invalid("log.level %q", c.Log.Level)
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		return invalid("log.encoding %q", c.Log.Encoding)
	}

	rep := c.Replication
	switch rep.Transport {
	case TransportWebsocket, TransportQUIC:
	default:
		return invalid("replication.transport %q", rep.Transport)
	}
	switch rep.Format {
	case "binary", "msgpack":
	default:
		return invalid("replication.format %q", rep.Format)
	}
	if rep.SnapshotEvery < 1 {
		return invalid("replication.snapshot_every must be at least 1, got %d", rep.SnapshotEvery)
	}
	if rep.SendBuffer < 1 {
		return invalid("replication.send_buffer must be at least 1, got %d", rep.SendBuffer)
	}
	if rep.Enabled && rep.ListenAddr == "" {
		return invalid("replication.listen_addr is required")
	}
	if (rep.CertFile == "") != (rep.KeyFile == "") {
		return invalid("replication.cert_file and key_file must be set together")
	}

	return c.Scene.Validate()
}

func invalid(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidConfig, format, args...)
}
