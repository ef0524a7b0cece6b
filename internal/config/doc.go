// Package config loads, normalizes, and validates artistdb configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ARTISTDB_REGISTRY_FILE. Always obtain settings through this package so
// downstream code receives absolute paths and a validated codec name.
package config
