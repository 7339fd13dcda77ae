package native

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DefaultLibraryPath locates the engine shared object for the running
// platform inside dir, following the engine's naming convention
// (libassistant_embedder_<machine>.so). It returns a path only when the file
// exists; otherwise it fails with [ErrUnsupportedPlatform].
func DefaultLibraryPath(dir string) (string, error) {
	return locate(runtime.GOOS, runtime.GOARCH, dir)
}

func locate(goos, goarch, dir string) (string, error) {
	if goos != "linux" {
		return "", fmt.Errorf("%s: %w", goos, ErrUnsupportedPlatform)
	}

	machine, ok := machineName(goarch)
	if !ok {
		return "", fmt.Errorf("%s: %w", goarch, ErrUnsupportedPlatform)
	}

	path := filepath.Join(dir, "libassistant_embedder_"+machine+".so")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%s: %w", machine, ErrUnsupportedPlatform)
	}

	return path, nil
}

// machineName maps a GOARCH to the machine name the engine libraries are
// published under (uname -m spelling).
func machineName(goarch string) (string, bool) {
	switch goarch {
	case "amd64":
		return "x86_64", true
	case "arm64":
		return "aarch64", true
	case "arm":
		return "armv7l", true
	default:
		return "", false
	}
}
