package main

import (
	"strings"
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/fyodorov-ai/tsiolkovsky/common/env"
)

// config is read from the environment (and .env via godotenv autoload).
type config struct {
	APIBase string
	Timeout time.Duration
}

// loadConfig reads SMOKE_API_BASE and SMOKE_TIMEOUT.
func loadConfig() (config, error) {
	cfg := config{
		APIBase: strings.TrimRight(strings.TrimSpace(env.String("SMOKE_API_BASE", defaultAPIBase)), "/"),
		Timeout: defaultTimeout,
	}
	if !strings.HasPrefix(cfg.APIBase, "http://") && !strings.HasPrefix(cfg.APIBase, "https://") {
		return config{}, errors.Errorf("SMOKE_API_BASE must be an http(s) url, got %q", cfg.APIBase)
	}

	if raw := strings.TrimSpace(env.String("SMOKE_TIMEOUT", "")); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return config{}, errors.Wrapf(err, "parse SMOKE_TIMEOUT %q", raw)
		}
		if timeout <= 0 {
			return config{}, errors.New("SMOKE_TIMEOUT must be positive")
		}
		cfg.Timeout = timeout
	}

	return cfg, nil
}
