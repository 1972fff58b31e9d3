/*
Package config provides type-safe configuration extraction from map[string]any.

# Overview

config wraps a map[string]any and provides typed accessor methods that handle
missing keys and type mismatches gracefully by returning default values.
It is the loading layer for bus settings (history size, dead-letter capacity,
sweep interval, backoff base) and feature-flag sets, without verbose type
assertions at every call site.

# Basic Usage

Create a Config from any map and extract values with defaults:

	cfg := config.New(map[string]any{
	    "sweep_interval": "30s",
	    "max_entries":    1000,
	    "gating":         true,
	})

	interval := cfg.Duration("sweep_interval", time.Minute) // 30s
	capacity := cfg.Int("max_entries", 500)                 // 1000
	gated := cfg.Bool("gating", false)                      // true

Nested sections come back as Configs themselves:

	dlq := cfg.Section("dead_letter")
	base := dlq.Duration("backoff_base", 60*time.Second)

# File Loading

Load configuration from YAML or JSON files:

	cfg, err := config.FromFile("pulse.yaml")
	if err != nil {
	    log.Fatal(err)
	}

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
