// Package config loads the Helios TOML configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/helios/config.toml
//  3. If the file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing or blank, use defaults
//
// Files are read through an afero.Fs so tests can run against memory.
//
// # Default Values
//
//   - host_addr: 127.0.0.1:7488 (client dial target)
//   - listen: 127.0.0.1:7488 (host listen address)
//   - almanac_path: ~/.config/helios/almanac.yaml
//   - log_dir: ~/.local/share/helios/logs
//   - location: Berlin
//   - time_zone: Local
//
// The client log lives at <log_dir>/helios.log.
//
// # TOML Format
//
//	host_addr = "192.168.1.20:7488"
//	log_dir = "~/.local/share/helios/logs"
//	location = "Lisbon"
//	time_zone = "Europe/Lisbon"
//
// Every field is optional. Tilde expansion is applied to almanac_path and
// log_dir.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than a
// missing file, and TOML parse errors ("parse config"). A missing file is not
// an error.
package config
