// Copyright 2026 The Detcore Authors
// This file is part of Detcore.
//
// Detcore is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Detcore is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Detcore. If not, see <http://www.gnu.org/licenses/>.

// Package config loads the YAML configuration shared by the logdb and
// hdkey packages. It is additive to spec.md: neither package requires a
// config file to operate correctly, but an operator can use one to tune
// advisory size caps, rotation, and logging.
package config

import (
	"os"

	"github.com/c2h5oh/datasize"
	"gopkg.in/yaml.v3"

	"github.com/detcore/core/internal/numeric"
	"github.com/detcore/core/logdb"
)

// LogDBConfig configures one LogDB instance. MaxKeySize/MaxValueSize are
// advisory and can only tighten, never relax, the hard caps enforced by
// the logdb package itself (spec.md §3/§6: 4096/1048576 bytes).
type LogDBConfig struct {
	Path         string            `yaml:"path"`
	ReadOnly     bool              `yaml:"read_only"`
	MaxKeySize   datasize.ByteSize `yaml:"max_key_size"`
	MaxValueSize datasize.ByteSize `yaml:"max_value_size"`
}

// HDKeyConfig configures defaults used by callers that drive HDKey from a
// config file rather than supplying every Derive/SetMaster argument in
// code. HDKey itself always takes compressed and index as explicit
// arguments (spec.md §4.2); these defaults only exist for process/
// config-driven callers (e.g. a wallet daemon deriving a fixed account
// path on startup).
type HDKeyConfig struct {
	CompressedDefault bool `yaml:"compressed_default"`

	// DefaultDeriveIndex is the child index used when a config-driven
	// caller derives a single well-known account key without specifying
	// an index explicitly. Accepts either hex ("0x12345678") or decimal
	// in YAML.
	DefaultDeriveIndex numeric.HexOrDecimal32 `yaml:"default_derive_index"`
}

// LogConfig configures the shared zap/lumberjack logging sink.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Config is the top-level document read by Load.
type Config struct {
	LogDB   LogDBConfig `yaml:"logdb"`
	HDKey   HDKeyConfig `yaml:"hdkey"`
	Logging LogConfig   `yaml:"logging"`
}

// Default returns hardcoded defaults equal to spec.md's hard caps, so an
// operator who supplies no config file at all gets spec-exact behavior.
func Default() *Config {
	return &Config{
		LogDB: LogDBConfig{
			ReadOnly:     false,
			MaxKeySize:   datasize.ByteSize(logdb.MaxKeySize),
			MaxValueSize: datasize.ByteSize(logdb.MaxValueSize),
		},
		HDKey: HDKeyConfig{
			CompressedDefault:  true,
			DefaultDeriveIndex: 0,
		},
		Logging: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
}

// Load reads a YAML document at path, starting from Default() so that any
// field the document omits keeps its spec-exact default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogDBOptions returns the (maxKeySize, maxValueSize) pair to pass to
// logdb.WithSizeCaps. A zero (unset) size is replaced by the logdb hard cap.
func (c *LogDBConfig) LogDBOptions() (maxKeySize, maxValueSize int) {
	maxKeySize = int(c.MaxKeySize.Bytes())
	maxValueSize = int(c.MaxValueSize.Bytes())
	if maxKeySize <= 0 {
		maxKeySize = logdb.MaxKeySize
	}
	if maxValueSize <= 0 {
		maxValueSize = logdb.MaxValueSize
	}
	return maxKeySize, maxValueSize
}
