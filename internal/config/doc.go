// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is looked up in the platform config directory
// (~/.config/cargotally/config.cue on Linux, ~/Library/Application Support/cargotally/config.cue
// on macOS, %APPDATA%\cargotally\config.cue on Windows) and then in ./cargotally.cue.
// Values from a .env file and CARGOTALLY_* environment variables override the file.
//
// Files are validated against the embedded CUE schema (config_schema.cue) before their
// values reach Viper.
package config
