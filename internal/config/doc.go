// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for comply.
//
// Supports TOML, YAML and JSON configuration files, with defaults, .env
// loading, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: Backend location, timeout and client-side rate limit
//   - UserConfig: User and admin identities sent to the backend
//   - ValidateErrors: Every invalid setting found by Validate
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command-line flags (applied by the caller)
//   - Environment variables (COMPLY_*), including those from ./.env
//   - ~/.comply/config.toml, config.yaml, config.yml or config.json
//   - Built-in defaults
//
// # Usage
//
//	_ = config.LoadDotEnv("")
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	client := api.NewClientWithConfig(cfg.ClientConfig(log))
package config
