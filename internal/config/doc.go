// Package config loads, normalizes, and validates shipit configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SHIPIT_ROOT. The Config type centralizes every knob the pipeline and CLI
// need: the working root, the completed-items directory, sidecar naming, the
// three provider CLIs, relocation retry timing, logging, and the history
// ledger.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
