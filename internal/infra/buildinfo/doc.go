// Package buildinfo exposes the version of the snapkeep binaries.
//
// Release builds inject the values through ldflags:
//
//	go build -ldflags "-X github.com/yndnr/snapkeep/internal/infra/buildinfo.Version=v1.2.0"
//
// Development builds fall back to the VCS revision recorded by the go
// command.
package buildinfo
