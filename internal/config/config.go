// Package config loads the simulation server configuration from YAML.
package config

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Simulation  SimulationConfig  `yaml:"simulation"`
	Log         LogConfig         `yaml:"log"`
	Replication ReplicationConfig `yaml:"replication"`
	Scene       SceneConfig       `yaml:"scene"`
}

type SimulationConfig struct {
	TickRate         int     `yaml:"tick_rate"`
	CollisionEpsilon float64 `yaml:"collision_epsilon"`
	// PoseWorkers above 1 resolves independent hitbox trees concurrently.
	PoseWorkers int    `yaml:"pose_workers"`
	Broadphase  string `yaml:"broadphase"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

type ReplicationConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Transport     string `yaml:"transport"`
	ListenAddr    string `yaml:"listen_addr"`
	Path          string `yaml:"path"`
	Format        string `yaml:"format"`
	SnapshotEvery int    `yaml:"snapshot_every"`
	// SendBuffer is how many frames may queue per viewer before frames are dropped.
	SendBuffer int    `yaml:"send_buffer"`
	CertFile   string `yaml:"cert_file"`
	KeyFile    string `yaml:"key_file"`
}

// Default returns the configuration used for every key missing from a file.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickRate:   60,
			Broadphase: BroadphaseAll,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
		Replication: ReplicationConfig{
			Transport:     TransportWebsocket,
			ListenAddr:    ":8080",
			Path:          "/snapshots",
			Format:        "binary",
			SnapshotEvery: 2,
			SendBuffer:    16,
		},
	}
}

// Load reads and validates a YAML file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open config %s", path)
	}
	defer func() { _ = f.Close() }()

	cfg, err := LoadYAML(f)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// LoadYAML decodes YAML over the defaults and validates the result. An empty
// document yields the defaults.
func LoadYAML(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decode yaml")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TickDuration is the wall-clock length of one tick.
func (s SimulationConfig) TickDuration() time.Duration {
	return time.Second / time.Duration(s.TickRate)
}

// DT is the tick length in seconds.
func (s SimulationConfig) DT() float64 {
	return 1 / float64(s.TickRate)
}
