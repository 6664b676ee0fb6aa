package config

import (
	"fmt"
	"net/url"
	"strings"
)

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate rejects configurations the CLI cannot run with.
func Validate(cfg *Config) error {
	if _, err := cfg.Program(); err != nil {
		return fmt.Errorf("config: ProgramID %q: %w", cfg.ProgramID, err)
	}
	if _, ok := validLogLevels[strings.ToLower(strings.TrimSpace(cfg.LogLevel))]; !ok {
		return fmt.Errorf("config: unknown LogLevel %q", cfg.LogLevel)
	}
	if raw := strings.TrimSpace(cfg.PushGateway); raw != "" {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("config: PushGateway: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
			return fmt.Errorf("config: PushGateway %q must be an http(s) URL", raw)
		}
	}
	if r := cfg.Telemetry.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("config: telemetry.SampleRatio %v outside [0,1]", r)
	}
	if cfg.Telemetry.Enabled() && strings.TrimSpace(cfg.Telemetry.Endpoint) == "" {
		return fmt.Errorf("config: telemetry enabled without Endpoint")
	}
	return nil
}
