package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if RANKDESK_CONFIG is set
//  3. env (prefix RANKDESK_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("RANKDESK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: RANKDESK_ADDR, RANKDESK_QUEUE_SIZE, ...
	// Map env keys like RANKDESK_QUEUE_SIZE -> queue_size (flat keys).
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("RANKDESK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "rankdesk_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.DBPath == "":
		return nil, fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case cfg.QueueSize < 1:
		return nil, fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case cfg.WorkerCount < 1:
		return nil, fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
