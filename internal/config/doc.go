// Package config loads semidx configuration: built-in defaults,
// layered with an optional .semidx.toml at the project root, then
// environment variable overrides, then validation.
package config
