// Package config loads and saves the pidfile CLI configuration from TOML
// files on disk.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// File is the on-disk configuration shape.
type File struct {
	Pidfile PidfileConfig `toml:"pidfile"`
	Logging LoggingConfig `toml:"logging"`
}

// PidfileConfig controls where bare pidfile names resolve and how files are
// created.
type PidfileConfig struct {
	// Dir is the directory bare pidfile names are joined to.
	Dir string `toml:"dir"`
	// Perm is the octal permission string for created pidfiles.
	Perm string `toml:"perm"`
}

// LoggingConfig controls CLI log output.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() File {
	return File{
		Pidfile: PidfileConfig{
			Dir:  os.TempDir(),
			Perm: "0644",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the config at path, or returns defaults when the file is
// missing.
func Load(path string) (File, error) {
	if strings.TrimSpace(path) == "" {
		return File{}, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path) // #nosec G304 - path is controlled by the CLI
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return File{}, err
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return File{}, fmt.Errorf("parse config toml: %w", err)
	}

	return cfg, nil
}

// Save writes cfg to path in TOML format with inline documentation.
func Save(path string, cfg File) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is empty")
	}

	// #nosec G306 G304 - config is not secret, path is controlled by the CLI.
	return os.WriteFile(path, []byte(renderCommentedTOML(cfg)), 0o644)
}

// FilePerm parses the configured octal permission string, falling back to
// 0644 when it is empty or malformed.
func (f File) FilePerm() os.FileMode {
	s := strings.TrimSpace(f.Pidfile.Perm)
	if s == "" {
		return 0o644
	}
	bits, err := strconv.ParseUint(strings.TrimPrefix(s, "0o"), 8, 32)
	if err != nil || bits > 0o777 {
		return 0o644
	}
	return os.FileMode(bits)
}

func renderCommentedTOML(cfg File) string {
	return fmt.Sprintf(`# pidfile Configuration

# ── Pidfiles ─────────────────────────────────────────────────────
[pidfile]

# Directory that bare pidfile names are resolved into.
# Absolute paths passed on the command line are used as-is.
dir = %[1]q

# Octal permission bits for pidfiles created on acquisition.
perm = %[2]q

# ── Logging ──────────────────────────────────────────────────────
[logging]

# Minimum log level: debug, info, warn, error.
level = %[3]q
`,
		cfg.Pidfile.Dir,
		cfg.Pidfile.Perm,
		cfg.Logging.Level,
	)
}
