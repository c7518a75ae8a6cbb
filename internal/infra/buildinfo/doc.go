// Package buildinfo provides build information for GymDesk.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/gymdesk-go/internal/infra/buildinfo.Version=v1.0.0"
//
// When Commit is not injected it falls back to the VCS revision recorded
// by the Go toolchain.
package buildinfo
