package main

import (
	"fmt"

	"github.com/halsteadcap/fundscribe/internal/backend"
	"github.com/halsteadcap/fundscribe/internal/config"
	"github.com/halsteadcap/fundscribe/internal/dispatch"
)

// debugLogPath is set by the root --debug-log flag.
var debugLogPath string

// buildRegistry constructs the tier table from configuration: an optional
// tier override file first, then per-tier timeout overrides on top.
func buildRegistry(cfg *config.Config) (*dispatch.Registry, error) {
	reg := dispatch.DefaultRegistry()
	if cfg.Defaults.TierFile != "" {
		loaded, err := dispatch.LoadRegistryFile(cfg.Defaults.TierFile)
		if err != nil {
			return nil, fmt.Errorf("load tier file: %w", err)
		}
		reg = loaded
	}

	if cfg.Timeouts.Fast == 0 && cfg.Timeouts.Balanced == 0 && cfg.Timeouts.Capable == 0 {
		return reg, nil
	}

	fast, balanced, capable := reg.Fast(), reg.Balanced(), reg.Capable()
	if cfg.Timeouts.Fast > 0 {
		fast.Timeout = cfg.Timeouts.Fast
	}
	if cfg.Timeouts.Balanced > 0 {
		balanced.Timeout = cfg.Timeouts.Balanced
	}
	if cfg.Timeouts.Capable > 0 {
		capable.Timeout = cfg.Timeouts.Capable
	}
	return dispatch.NewRegistry(dispatch.RegistryConfig{
		Fast:     &fast,
		Balanced: &balanced,
		Capable:  &capable,
	})
}

// buildDispatcher wires configuration, registry, and backend into a ready
// dispatcher. It fails fast when no API key is available.
func buildDispatcher(opts ...dispatch.Option) (*dispatch.Dispatcher, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	key, err := config.GetAPIKey(cfg)
	if err != nil && !cfg.Anthropic.UseAWSBedrock {
		return nil, nil, err
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return nil, nil, err
	}

	completer, err := backend.NewAnthropicCompleter(backend.AnthropicConfig{
		APIKey:        key,
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create backend: %w", err)
	}

	if debugLogPath != "" {
		trace, err := dispatch.NewDebugLogger(debugLogPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open debug log: %w", err)
		}
		opts = append(opts, dispatch.WithDebugLogger(trace))
	}

	return dispatch.NewDispatcher(reg, completer, opts...), cfg, nil
}
