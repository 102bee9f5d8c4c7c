package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"prizewheel/pkg/config"
)

func TestNewReplacesGlobals(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	cfg := &config.Config{AppEnv: "production", AppName: "prizewheel"}
	log, err := New(ConfigParams{Cfg: cfg})
	require.NoError(t, err)
	require.NotNil(t, log)
	require.Same(t, log, zap.L())
}

func TestNewWithoutConfig(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	log, err := New(ConfigParams{})
	require.NoError(t, err)
	require.True(t, log.Core().Enabled(zap.DebugLevel))
}

func TestNewHonoursLogLevel(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	log, err := New(ConfigParams{Cfg: &config.Config{LogLevel: "warn"}})
	require.NoError(t, err)
	require.False(t, log.Core().Enabled(zap.InfoLevel))
	require.True(t, log.Core().Enabled(zap.WarnLevel))

	_, err = New(ConfigParams{Cfg: &config.Config{LogLevel: "loud"}})
	require.Error(t, err)
}
