// Package config loads, normalizes, and validates pausetrim configuration.
//
// Configuration is read from a TOML file (~/.config/pausetrim/config.toml
// or ./pausetrim.toml), then environment overrides are applied, then paths
// are expanded and values validated. Call Load to get a ready-to-use
// Config; Default returns the built-in values.
package config
