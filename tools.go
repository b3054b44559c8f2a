//go:build tools
// +build tools

package tools

// Dev tools pinned via go.mod. Run with `go run github.com/mgechev/revive ./...`
import (
	_ "github.com/cespare/reflex"
	_ "github.com/golang/mock/mockgen"
	_ "github.com/mgechev/revive"
)
