// Package config loads, normalizes, and validates titledb configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// TITLEDB_DATA_DIR and TITLEDB_CERT_PATH. The Config type centralizes the
// catalog location, eShop endpoints, client credential paths, retry policy,
// and logging knobs so the CLI and the update runner discover them in one
// pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
