package admin

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolveBinaryPath turns p into an absolute path to an existing file.
func ResolveBinaryPath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("service executable path is empty")
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path of %s: %w", p, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("the path %s does not exist: %w", p, err)
	}
	if fi.IsDir() {
		return "", fmt.Errorf("the path %s is a directory", abs)
	}
	return abs, nil
}
