package exporters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"prizewheel/pkg/config"
)

func TestProvideHttp(t *testing.T) {
	cfg := &config.Config{}
	cfg.Otel.Endpoint = "127.0.0.1:4318"
	cfg.Otel.Insecure = true

	exp, err := ProvideHttp(cfg)
	require.NoError(t, err)
	require.NotNil(t, exp)
	require.NoError(t, exp.Shutdown(context.Background()))
}
