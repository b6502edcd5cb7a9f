package log

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected Level
	}{
		{"debug", LevelDebug},
		{"", LevelInfo},
		{"INFO", LevelInfo},
		{" warning ", LevelWarn},
		{"error", LevelError},
		{"fatal", LevelFatal},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}

	_, err := ParseLevel("loud")
	assert.True(t, errors.Is(err, ErrUnknownLevel))
}

func TestLogger_FieldsAndLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := &Logger{zapLogger: zap.New(core), zapLevel: zap.NewAtomicLevelAt(zap.InfoLevel)}

	logger.With(String("system", "tethers")).Info("applied",
		Int("count", 3),
		Uint32("entity", 7),
		Float64("dt", 0.5),
		Error(errors.New("boom")),
	)
	logger.Log(LevelDebug, "filtered by level")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "applied", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "tethers", fields["system"])
	assert.Equal(t, int64(3), fields["count"])
	assert.Equal(t, uint32(7), fields["entity"])
	assert.Equal(t, "boom", fields["error"])

	logger.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, logger.GetLevel())
	logger.Log(LevelDebug, "now visible")
	assert.Equal(t, 2, logs.Len())
}

func TestNopAndProvide(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Info("ignored", String("k", "v"))
		Provide().Debug("ignored")
	})
}

func TestProvide_ConcurrentWithNew(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := NewWithConfig(Config{Level: LevelError})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			assert.NotNil(t, Provide())
		}()
	}
	wg.Wait()

	first := Provide()
	require.NotNil(t, innerLogger.Load())
	assert.Same(t, first, Provide(), "the process-wide logger is fixed once built")
}
