// Copyright 2026 The Detcore Authors
// This file is part of Detcore.

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/detcore/core/config"
)

func TestNewWithFileSinkWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detcore.log")
	logger, err := New(config.LogConfig{Level: "debug", File: path, MaxSizeMB: 1, MaxBackups: 1})
	require.NoError(t, err)

	logger.Info("hello")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello")
}

func TestNewWithoutFileDefaultsToStderr(t *testing.T) {
	logger, err := New(config.LogConfig{})
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestNewWithUnknownLevelFallsBackToInfo(t *testing.T) {
	logger, err := New(config.LogConfig{Level: "not-a-level"})
	require.NoError(t, err)
	require.NotNil(t, logger)
}
