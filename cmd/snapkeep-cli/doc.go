// Package main provides the entry point for snapkeep-cli.
//
// snapkeep-cli manages backups on a snapkeep-server over its admin API:
//
//	snapkeep-cli backup create --owner tenant-a --encrypt
//	snapkeep-cli backup list -o json
//	snapkeep-cli backup restore <id> --extract --out ./restored
//	snapkeep-cli system ready
//
// The server address comes from --server or SNAPKEEP_SERVER.
package main
