// Package config loads, normalizes, and validates ytcourier configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and resolves secrets from the environment
// (YTCOURIER_BOT_TOKEN, YTCOURIER_ADMIN_ID). The Config type centralizes
// every knob the daemon and CLI need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
