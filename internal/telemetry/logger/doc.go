// Package logger provides structured logging for SnapKeep.
//
// This package wraps the standard library log/slog:
//
//   - logger.go: logger configuration, dynamic level and the global default
//   - context.go: context-aware logging with request IDs
//   - redact.go: sensitive attribute redaction
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering, adjustable at runtime (config hot reload)
//   - Automatic masking of passphrases and other secrets
//   - Context propagation for request tracing
package logger
