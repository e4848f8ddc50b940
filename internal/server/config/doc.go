// Package config provides server configuration for SnapKeep.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Business validation (fail-closed security checks, paths)
//   - sanitize.go: Log sanitization (hide sensitive values)
//   - convert.go: Mapping onto component configurations
//
// Configuration is loaded via internal/infra/confloader and supports
// multiple sources: files and SNAPKEEP_ environment variables.
package config
