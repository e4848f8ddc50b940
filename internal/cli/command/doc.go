// Package command defines the snapkeep-cli commands on top of urfave/cli/v2.
//
// The backup group drives the admin API: create, list, get, restore,
// delete, prune, stats and stale. The system group checks liveness and
// readiness. Every command parses its flags, calls the server through
// connection.HTTPClient and renders the result with the output package.
package command
