// Package config loads, normalizes, and validates fond-memory configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the FOND_MEMORY_DB environment override. Commands
// obtain the database location, capture command, export behaviour and log
// settings through this package rather than reading flags or files directly.
package config
