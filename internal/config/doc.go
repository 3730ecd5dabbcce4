// Package config loads bitrate-lab settings from TOML, a .env file, and the
// process environment.
package config
