// Package config loads, normalizes, and validates lineage configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GRAMPS_PASSWORD and OPENAI_API_KEY. The Config type centralizes every knob
// the CLI needs: matcher thresholds, normalization confidences, Gramps Web
// API credentials, and extraction settings are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
