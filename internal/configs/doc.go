// Package configs manages envault's two configuration layers.
//
// # Project config
//
// .envault/config.toml, committed with the repository. Identifies the
// project and maps stage names to local env file paths:
//
//	[project]
//	id = "2f1e9c3a-77b4-4f0e-9b61-0d2a5c8e4f10"
//	name = "my-service"
//
//	[stages]
//	development = ".env"
//	staging = ".env.staging"
//	production = ".env.production"
//
//	[remote]
//	endpoint = "https://blobs.example.com"
//
// The [remote] table is optional; it pins an endpoint for the whole
// team. It never carries credentials.
//
// # User settings
//
// $XDG_CONFIG_HOME/envault/config.toml plus ENVAULT_ environment
// variables, read through viper. Holds the remote endpoint, the bearer
// token, and HTTP tuning. Environment variables win over the file, and
// both win over the project config's pinned endpoint.
package configs
