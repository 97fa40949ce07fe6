package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sharetex/driver"
	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend != "" {
		t.Errorf("Backend = %q, want empty", cfg.Backend)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Device != (DeviceConfig{Width: 64, Height: 64}) {
		t.Errorf("Device = %+v, want 64x64", cfg.Device)
	}
	if cfg.Texture.Width != 256 || cfg.Texture.Format != "bgra8" {
		t.Errorf("Texture = %+v", cfg.Texture)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sharetex.yaml")
	data := "backend: wgpu\nlogging:\n  level: warn\ntexture:\n  width: 512\n  format: rgba8\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SHARETEX_LOGGING_LEVEL", "error")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("backend", "", "")
	flags.String("log-level", "", "")
	flags.String("log-format", "", "")
	if err := flags.Parse([]string{"--backend", "software"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend != "software" {
		t.Errorf("Backend = %q, want flag value", cfg.Backend)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want env value", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want default", cfg.Logging.Format)
	}
	if cfg.Texture.Width != 512 || cfg.Texture.Height != 256 || cfg.Texture.Format != "rgba8" {
		t.Errorf("Texture = %+v, want file values over defaults", cfg.Texture)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("Load(missing) error = nil")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Logging: LoggingConfig{Level: "info", Format: "text"},
			Device:  DeviceConfig{Width: 64, Height: 64},
			Texture: TextureConfig{Width: 1, Height: 1, Format: "bgra8", Access: "read-only"},
		}
	}
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"level", func(c *Config) { c.Logging.Level = "loud" }},
		{"format", func(c *Config) { c.Logging.Format = "xml" }},
		{"device size", func(c *Config) { c.Device.Width = 0 }},
		{"texture size", func(c *Config) { c.Texture.Height = 0 }},
		{"texture format", func(c *Config) { c.Texture.Format = "dxt1" }},
		{"access", func(c *Config) { c.Texture.Access = "exclusive" }},
	}

	c := valid()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate(valid) error = %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(&c)
			if err := c.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestParse(t *testing.T) {
	if f, err := ParseFormat("BGRA8"); err != nil || f != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("ParseFormat(BGRA8) = %v, %v", f, err)
	}
	if a, err := ParseAccess("write-discard"); err != nil || a != driver.AccessWriteDiscard {
		t.Errorf("ParseAccess(write-discard) = %v, %v", a, err)
	}
	if l, err := ParseLevel("WARNING"); err != nil || l != slog.LevelWarn {
		t.Errorf("ParseLevel(WARNING) = %v, %v", l, err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger(LoggingConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	l.Info("hidden")
	l.Warn("shown", "k", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("output = %q, want JSON warn record", out)
	}
}
