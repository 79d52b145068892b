// Package config loads and validates the TOML configuration file. The
// sync core never reads configuration itself; this package converts the
// file into the immutable value structs the pipeline consumes.
package config
