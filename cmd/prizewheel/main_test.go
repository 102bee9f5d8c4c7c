package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "DATA_DIR: " + dir + "\n" +
		"LOG_LEVEL: error\n" +
		"SPIN:\n  REVEAL_DELAY: 0s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, opts cliOptions, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), opts, args, &out)
	return out.String(), err
}

func TestUsageErrors(t *testing.T) {
	tests := [][]string{
		nil,
		{"dance"},
		{"link"},
		{"spin", "extra"},
	}
	for _, args := range tests {
		_, err := runCLI(t, cliOptions{}, args...)
		require.ErrorIs(t, err, errUsage, "args %v", args)
		require.Equal(t, 2, exitCode(err))
	}
}

func TestSpinLifecycle(t *testing.T) {
	opts := cliOptions{configFile: writeConfig(t), limit: 10}

	out, err := runCLI(t, opts, "status")
	require.NoError(t, err)
	require.Contains(t, out, "State: AVAILABLE")

	out, err = runCLI(t, opts, "spin")
	require.NoError(t, err)
	require.Contains(t, out, "You got:")
	require.Contains(t, out, "Next spin at:")

	out, err = runCLI(t, opts, "spin")
	require.Error(t, err)
	require.Equal(t, 3, exitCode(err))
	require.Contains(t, out, "The wheel is locked. Next spin in 2")

	out, err = runCLI(t, opts, "status")
	require.NoError(t, err)
	require.Contains(t, out, "State: LOCKED")

	out, err = runCLI(t, opts, "history")
	require.NoError(t, err)
	require.Contains(t, out, "SPUN AT")
	require.Equal(t, 2, strings.Count(out, "\n"), "header plus one row: %q", out)
}

func TestRewardsCommand(t *testing.T) {
	opts := cliOptions{configFile: writeConfig(t)}

	out, err := runCLI(t, opts, "rewards")
	require.NoError(t, err)
	require.Contains(t, out, "CHANCE")
	require.Contains(t, out, "pct10")
	require.Contains(t, out, "25.0%")
	require.Contains(t, out, "SPINS")
}

func TestRewardsCountsSpins(t *testing.T) {
	opts := cliOptions{configFile: writeConfig(t), limit: 10}

	_, err := runCLI(t, opts, "spin")
	require.NoError(t, err)

	out, err := runCLI(t, opts, "rewards")
	require.NoError(t, err)
	require.Contains(t, out, "100.0%")
}

func TestLinkCommand(t *testing.T) {
	opts := cliOptions{configFile: writeConfig(t), size: 128}
	opts.qr = filepath.Join(t.TempDir(), "pct10.png")

	out, err := runCLI(t, opts, "link", "pct10")
	require.NoError(t, err)
	require.Contains(t, out, "https://wa.me/5493512583838?text=")
	require.FileExists(t, opts.qr)

	opts.qr = ""
	_, err = runCLI(t, opts, "link", "try_again")
	require.Error(t, err)
	require.Equal(t, 1, exitCode(err))

	_, err = runCLI(t, opts, "link", "missing")
	require.Error(t, err)
}
