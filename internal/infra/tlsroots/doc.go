// Package tlsroots loads TLS material for snapkeep.
//
// Pool collects trusted roots for snapkeep-cli, combining the system store
// with an optional private CA. Watcher serves the server key pair and
// swaps it in place when the files on disk change, so certificates can be
// rotated without a restart.
package tlsroots
