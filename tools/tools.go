//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// These tools are installed globally via `go install` and are not tracked in go.mod
// since they are development tools, not runtime dependencies.
package tools

// Development tools (install via `go install`):
//
// Air - Live reload for cmd/harmonia while editing templates and handlers
//   Install: go install github.com/air-verse/air@v1.63.0
//   Version: v1.63.0 (pinned 2025-01-01)
//   Docs: https://github.com/air-verse/air
//   Run with NODE_ENV=development so templates and static files load from disk.
//
// mockgen - Regenerates the page service mocks in internal/mocks
//   Runs through `go generate ./internal/mocks` using the go.uber.org/mock
//   version already pinned in go.mod.
