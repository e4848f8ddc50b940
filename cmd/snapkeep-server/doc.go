// Package main provides the entry point for snapkeep-server.
//
// The server takes point-in-time snapshots of the JSON documents under the
// configured data directory and serves the backup admin API:
//
//   - HTTP/HTTPS admin API under /admin/v1/backups
//   - the same admin API on a local Unix socket, when configured
//   - health, readiness and Prometheus metrics endpoints
//   - optional encryption of backup artifacts
//
// Usage:
//
//	snapkeep-server [flags]
//	snapkeep-server --config /etc/snapkeep/config.yaml
//
// Settings come from defaults, the config file and SNAPKEEP_* environment
// variables, in that order. Changing the log level in the config file takes
// effect without a restart.
package main
