// Copyright 2026 The Detcore Authors
// This file is part of Detcore.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/detcore/core/internal/numeric"
	"github.com/detcore/core/logdb"
)

func TestDefaultMatchesSpecHardCaps(t *testing.T) {
	cfg := Default()
	require.Equal(t, uint64(logdb.MaxKeySize), cfg.LogDB.MaxKeySize.Bytes())
	require.Equal(t, uint64(logdb.MaxValueSize), cfg.LogDB.MaxValueSize.Bytes())
}

func TestLoadOverridesOnlySpecifiedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
logdb:
  path: /var/lib/detcore/main.logdb
  max_value_size: 64KB
hdkey:
  compressed_default: false
  default_derive_index: "0x12345678"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "/var/lib/detcore/main.logdb", cfg.LogDB.Path)
	require.Equal(t, uint64(64*1024), cfg.LogDB.MaxValueSize.Bytes())
	// untouched field keeps the spec-exact default
	require.Equal(t, uint64(logdb.MaxKeySize), cfg.LogDB.MaxKeySize.Bytes())
	require.False(t, cfg.HDKey.CompressedDefault)
	require.Equal(t, numeric.HexOrDecimal32(0x12345678), cfg.HDKey.DefaultDeriveIndex)
	// logging section wasn't in the document at all
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestHDKeyDefaultDeriveIndexAcceptsDecimal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hdkey:\n  default_derive_index: \"42\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, numeric.HexOrDecimal32(42), cfg.HDKey.DefaultDeriveIndex)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}

func TestLogDBOptionsClampsZeroToSpecDefault(t *testing.T) {
	cfg := LogDBConfig{}
	maxKey, maxValue := cfg.LogDBOptions()
	require.Equal(t, logdb.MaxKeySize, maxKey)
	require.Equal(t, logdb.MaxValueSize, maxValue)
}
