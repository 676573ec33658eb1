// Package config loads player settings from an ini file, a .env file and
// FABULA_* environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// DefaultPath is the settings file read when no -config flag is given.
const DefaultPath = "fabula.ini"

// Config holds front-end and logging settings. The game itself is never
// configured here.
type Config struct {
	Seed      int64 // 0 picks a seed from the clock
	LogLevel  slog.Level
	LogFile   string // empty discards logs
	LogFormat string // "text" or "json"
	Plain     bool   // force the line-oriented front end
	Reveal    bool   // timed text reveal in the TUI
	Wrap      int    // 0 wraps to the terminal width
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		LogLevel:  slog.LevelInfo,
		LogFormat: "text",
		Reveal:    true,
	}
}

// Load reads path (a missing file is not an error), then .env, then the
// environment. Values that fail to parse are reported together with the
// key they came from.
func Load(path string) (*Config, error) {
	file, err := ini.LooseLoad(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	// A missing .env is the common case.
	_ = godotenv.Load()

	sec := file.Section("")
	get := func(key, def string) string {
		if sec.HasKey(key) {
			def = sec.Key(key).String()
		}
		return getEnv("FABULA_"+strings.ToUpper(key), def)
	}

	cfg := Default()
	if v := get("seed", ""); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		cfg.Seed = seed
	}
	cfg.LogLevel = parseLogLevel(get("log_level", "info"))
	cfg.LogFile = get("log_file", "")

	switch f := strings.ToLower(get("log_format", cfg.LogFormat)); f {
	case "text", "json":
		cfg.LogFormat = f
	default:
		return nil, fmt.Errorf("log_format: unknown format %q", f)
	}

	if v := get("plain", ""); v != "" {
		plain, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("plain: %w", err)
		}
		cfg.Plain = plain
	}

	reveal, err := parseSwitch(get("reveal", "on"))
	if err != nil {
		return nil, fmt.Errorf("reveal: %w", err)
	}
	cfg.Reveal = reveal

	if v := get("wrap", ""); v != "" {
		wrap, err := strconv.Atoi(v)
		if err != nil || wrap < 0 {
			return nil, fmt.Errorf("wrap: invalid width %q", v)
		}
		cfg.Wrap = wrap
	}
	return cfg, nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "yes", "true", "1":
		return true, nil
	case "off", "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
