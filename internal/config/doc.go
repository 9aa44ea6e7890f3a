// Package config loads the vhsrental client configuration.
//
// # Resolution
//
// Load reads a TOML file (by default ~/.config/vhsrental/config.toml). A
// missing file is not an error: every field has a default, so the client
// works against a local API without any configuration.
//
// Environment variables are applied last and win over the file:
//
//   - VHSRENTAL_API_URL: API base URL
//   - VHSRENTAL_LOG_LEVEL: zerolog level name
//   - VHSRENTAL_LOG_CONSOLE: when "1" or "true", log to stderr instead of the log file
//
// # TOML Format
//
//	api_url = "http://localhost:8080/api"
//	request_timeout = "30s"
//	refresh_timeout = "10s"
//	log_level = "info"
//	session_path = "~/.config/vhsrental/session.toml"
//	log_path = "~/.local/state/vhsrental/vhsrental.log"
//
// All fields are optional. Durations use Go duration syntax and paths accept
// a leading tilde.
package config
