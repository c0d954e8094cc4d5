// Package config holds the settings for building a sprite sheet. Settings
// come from defaults, an optional TOML or YAML file and command-line flags,
// in that order.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"sprites.runesynergy.dev/internal/errors"
)

// Packing engines.
const (
	EngineTree   = "tree"
	EngineAzul3D = "azul3d"
)

// Config describes one sheet build.
type Config struct {
	// Output is the path of the PNG sheet; the manifest is written next to
	// it with a ".json" suffix.
	Output string `toml:"output" yaml:"output"`
	// Margin is the empty space around every sprite, in pixels.
	Margin int `toml:"margin" yaml:"margin"`
	// Recursive descends into subdirectories of input directories.
	Recursive bool `toml:"recursive" yaml:"recursive"`
	// Engine selects the packing algorithm.
	Engine string `toml:"engine" yaml:"engine"`
	// Dedupe turns byte-identical sprites into aliases of the first copy.
	Dedupe bool `toml:"dedupe" yaml:"dedupe"`
	// Prefix is prepended to every frame name.
	Prefix string `toml:"prefix" yaml:"prefix"`
	// StripDirs drops this many leading directories from frame names.
	StripDirs int `toml:"strip_dirs" yaml:"strip_dirs"`
	// Inputs are files or directories to pack when none are given on the
	// command line.
	Inputs []string `toml:"inputs" yaml:"inputs"`
}

// Default returns the settings used when nothing else is given.
func Default() Config {
	return Config{
		Output: "out.png",
		Margin: 4,
		Engine: EngineTree,
		Dedupe: true,
	}
}

// Load reads path on top of the defaults. The format is chosen by the file
// extension.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "reading config %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing %s", path)
		}
	default:
		return cfg, errors.New(errors.ErrCodeUnsupported, "config %s: unsupported format %q", path, filepath.Ext(path))
	}

	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Output == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "output path is empty")
	}
	if c.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "margin %d is negative", c.Margin)
	}
	if c.StripDirs < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "strip_dirs %d is negative", c.StripDirs)
	}
	switch c.Engine {
	case EngineTree, EngineAzul3D:
	default:
		return errors.New(errors.ErrCodeUnsupported, "unknown engine %q", c.Engine)
	}
	return nil
}

// ManifestPath is the path of the JSON manifest written beside Output.
func (c Config) ManifestPath() string {
	return c.Output + ".json"
}
