// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader that supports multiple
// sources using koanf as the underlying library.
//
// Features:
//
//   - Multiple Sources: YAML files, environment variables, maps
//   - Watch Support: Reload on config file changes via fsnotify
//   - Type Safety: Unmarshaling into typed structs
//   - Defaults: The target struct carries defaults before loading
//
// Priority (highest to lowest):
//
//  1. Environment variables (SNAPKEEP_ prefix)
//  2. Configuration files
//  3. Default values
package confloader
