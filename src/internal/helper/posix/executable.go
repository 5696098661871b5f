// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultExecutableName is used when the process arguments carry no program name.
const DefaultExecutableName = "mcp-demo-server"

// GetExecutableName returns the name of the running binary without extension.
// It is [ExecutableName] applied to os.Args.
func GetExecutableName() string {
	return ExecutableName(os.Args, DefaultExecutableName)
}

// ExecutableName extracts a clean command name from args[0].
//
// Both '/' and '\' are treated as separators so that a Windows path observed
// on a Unix host (or the reverse) still yields its last element. A trailing
// ".exe" is removed. fallback is returned when args is empty or args[0] is blank.
func ExecutableName(args []string, fallback string) string {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return fallback
	}

	name := filepath.Base(args[0])
	if strings.ContainsAny(name, `/\`) {
		parts := strings.FieldsFunc(name, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			name = parts[len(parts)-1]
		}
	}

	name = strings.TrimSuffix(name, ".exe")
	if name == "" || name == "." || name == string(filepath.Separator) {
		return fallback
	}
	return name
}
