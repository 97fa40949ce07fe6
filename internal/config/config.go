// Package config loads sharetexctl configuration from a file, SHARETEX_*
// environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sharetex/driver"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the sharetexctl configuration.
type Config struct {
	// Backend names the driver to use. Empty selects the highest priority
	// registered backend.
	Backend string `mapstructure:"backend"`

	Logging LoggingConfig `mapstructure:"logging"`
	Device  DeviceConfig  `mapstructure:"device"`
	Texture TextureConfig `mapstructure:"texture"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

// DeviceConfig is the off-screen device back buffer size.
type DeviceConfig struct {
	Width  uint32 `mapstructure:"width"`
	Height uint32 `mapstructure:"height"`
}

// TextureConfig describes the texture used by selftest.
type TextureConfig struct {
	Width  uint32 `mapstructure:"width"`
	Height uint32 `mapstructure:"height"`
	Format string `mapstructure:"format"` // bgra8, rgba8, r8
	Access string `mapstructure:"access"` // read-only, read-write, write-discard
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"backend":    "backend",
	"log-level":  "logging.level",
	"log-format": "logging.format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("device.width", 64)
	v.SetDefault("device.height", 64)
	v.SetDefault("texture.width", 256)
	v.SetDefault("texture.height", 256)
	v.SetDefault("texture.format", "bgra8")
	v.SetDefault("texture.access", "read-write")
}

// Load reads configuration. Precedence, highest first: flags that were
// set, SHARETEX_* environment variables, the config file, defaults. An
// empty path skips the file. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// SHARETEX_LOGGING_LEVEL=debug
	v.SetEnvPrefix("SHARETEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every value can be parsed.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: logging.format %q", ErrInvalid, c.Logging.Format)
	}
	if c.Device.Width == 0 || c.Device.Height == 0 {
		return fmt.Errorf("%w: device size %dx%d", ErrInvalid, c.Device.Width, c.Device.Height)
	}
	if c.Texture.Width == 0 || c.Texture.Height == 0 {
		return fmt.Errorf("%w: texture size %dx%d", ErrInvalid, c.Texture.Width, c.Texture.Height)
	}
	if _, err := ParseFormat(c.Texture.Format); err != nil {
		return err
	}
	if _, err := ParseAccess(c.Texture.Access); err != nil {
		return err
	}
	return nil
}

// ParseLevel parses a log level name.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: log level %q", ErrInvalid, s)
	}
}

// ParseFormat parses a texture format name.
func ParseFormat(s string) (gputypes.TextureFormat, error) {
	switch strings.ToLower(s) {
	case "bgra8":
		return gputypes.TextureFormatBGRA8Unorm, nil
	case "rgba8":
		return gputypes.TextureFormatRGBA8Unorm, nil
	case "r8":
		return gputypes.TextureFormatR8Unorm, nil
	default:
		return gputypes.TextureFormatUndefined, fmt.Errorf("%w: texture format %q", ErrInvalid, s)
	}
}

// ParseAccess parses an access mode name as printed by driver.Access.
func ParseAccess(s string) (driver.Access, error) {
	for _, a := range []driver.Access{driver.AccessReadOnly, driver.AccessReadWrite, driver.AccessWriteDiscard} {
		if strings.EqualFold(s, a.String()) {
			return a, nil
		}
	}
	return driver.AccessReadOnly, fmt.Errorf("%w: access %q", ErrInvalid, s)
}

// NewLogger builds a slog logger writing to w. A nil w means stderr.
func NewLogger(c LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
