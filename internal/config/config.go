// Package config loads irbind.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up from the working directory
// upwards.
const FileName = "irbind.toml"

// Config is the decoded irbind.toml. Missing sections keep their defaults.
type Config struct {
	Engine   EngineConfig   `toml:"engine"`
	Probe    ProbeConfig    `toml:"probe"`
	Trace    TraceConfig    `toml:"trace"`
	Describe DescribeConfig `toml:"describe"`

	// Path is the file the configuration was read from; empty for defaults.
	Path string `toml:"-"`
}

type EngineConfig struct {
	// AddrSpace is the address space of pointers the probe derives.
	AddrSpace uint32 `toml:"addr_space"`
}

type ProbeConfig struct {
	Contexts int      `toml:"contexts"`
	Jobs     int      `toml:"jobs"`
	Widths   []uint32 `toml:"widths"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
	Format string `toml:"format"`
}

type DescribeConfig struct {
	Format       string `toml:"format"`
	MaxTypeWidth int    `toml:"max_type_width"`
	Cache        bool   `toml:"cache"`
	CacheDir     string `toml:"cache_dir"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Probe: ProbeConfig{
			Contexts: 4,
			Jobs:     0,
			Widths:   []uint32{1, 8, 16, 32, 64, 128, 7},
		},
		Trace: TraceConfig{
			Level:  "off",
			Output: "",
			Format: "auto",
		},
		Describe: DescribeConfig{
			Format:       "table",
			MaxTypeWidth: 60,
		},
	}
}

// Find walks from startDir to the filesystem root looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the file found by Find, or the defaults when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("probe", "widths") && len(cfg.Probe.Widths) == 0 {
		return Config{}, fmt.Errorf("%s: [probe].widths must not be empty", path)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Engine.AddrSpace >= 1<<24 {
		return fmt.Errorf("[engine].addr_space %d is out of range", c.Engine.AddrSpace)
	}
	if c.Probe.Contexts < 1 {
		return fmt.Errorf("[probe].contexts must be at least 1, got %d", c.Probe.Contexts)
	}
	if c.Probe.Jobs < 0 {
		return fmt.Errorf("[probe].jobs must not be negative, got %d", c.Probe.Jobs)
	}
	for _, w := range c.Probe.Widths {
		if w == 0 || w > 1<<23 {
			return fmt.Errorf("[probe].widths: %d is not a valid integer width", w)
		}
	}
	switch c.Describe.Format {
	case "table", "text", "msgpack":
	default:
		return fmt.Errorf("[describe].format: unknown format %q", c.Describe.Format)
	}
	if c.Describe.MaxTypeWidth < 0 {
		return fmt.Errorf("[describe].max_type_width must not be negative")
	}
	return nil
}
