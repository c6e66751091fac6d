// Package config loads and validates the TOML configuration for the
// manifesto CLI: cache location, logging options, and parse strictness.
//
// Configuration is optional; every field has a working default so the tool
// runs with no config file present.
package config
