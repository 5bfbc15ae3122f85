// Package config handles configuration loading for the lumen gateway client.
//
// # Overview
//
// Configuration is loaded from a TOML file with environment variable
// expansion, then validated before the client starts.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from LUMEN_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/lumen/gateway.toml
//  3. ~/.config/lumen/gateway.toml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	[auth]
//	token = "${LUMEN_TOKEN}"
//
// Syntax: ${VAR_NAME}
//
// The auth token also falls back to the LUMEN_TOKEN environment variable
// when absent from the file entirely.
//
// # Configuration Sections
//
// Gateway endpoint and identify parameters:
//
//	[gateway]
//	api_base = "https://api.lumen.chat"  # REST base for URL resolution
//	url = "wss://gateway.lumen.chat"     # pinned URL, skips resolution
//	intents = 523                        # identify subscription bitmask
//
// Authentication:
//
//	[auth]
//	token = "${LUMEN_TOKEN}"
//
// Attempt journal:
//
//	[journal]
//	enabled = true
//	path = "/var/lib/lumen/journal.db"
//
// Logging:
//
//	[logging]
//	level = "info"  # debug, info, warn, error
//
// # Validation
//
// Load() validates:
//
//   - An auth token is present (file or LUMEN_TOKEN)
//   - At least one of gateway.api_base or gateway.url is set
//   - gateway.api_base uses http or https, gateway.url uses ws or wss
//   - journal.path is set when the journal is enabled
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
