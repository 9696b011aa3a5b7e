//go:build tools
// +build tools

// Package tools pins the code generators used by go generate (mockgen).
package chat_inbox

import (
	_ "go.uber.org/mock/mockgen"
)
