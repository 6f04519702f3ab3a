// Package config loads, validates, and defaults reelsync configuration.
//
// Configuration is a single TOML file. All consumers receive an explicit
// *Config; nothing in the repository reads configuration from package-level
// state.
package config
