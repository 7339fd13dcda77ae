package native

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocateFindsLibraryForKnownArchitectures(t *testing.T) {
	dir := t.TempDir()
	for _, machine := range []string{"x86_64", "aarch64", "armv7l"} {
		name := "libassistant_embedder_" + machine + ".so"
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}

	for goarch, machine := range map[string]string{
		"amd64": "x86_64",
		"arm64": "aarch64",
		"arm":   "armv7l",
	} {
		path, err := locate("linux", goarch, dir)
		if err != nil {
			t.Fatalf("expected %s library to be located, got error: %v", goarch, err)
		}
		want := filepath.Join(dir, "libassistant_embedder_"+machine+".so")
		if path != want {
			t.Fatalf("expected %s, got %s", want, path)
		}
	}
}

func TestLocateRejectsNonLinux(t *testing.T) {
	_, err := locate("darwin", "amd64", t.TempDir())
	if !errors.Is(err, ErrUnsupportedPlatform) {
		t.Fatalf("expected ErrUnsupportedPlatform on non-Linux, got %v", err)
	}
}

func TestLocateRejectsUnknownArchitecture(t *testing.T) {
	_, err := locate("linux", "riscv64", t.TempDir())
	if !errors.Is(err, ErrUnsupportedPlatform) {
		t.Fatalf("expected ErrUnsupportedPlatform for unknown architecture, got %v", err)
	}
}

func TestLocateRejectsMissingLibraryFile(t *testing.T) {
	_, err := locate("linux", "amd64", t.TempDir())
	if !errors.Is(err, ErrUnsupportedPlatform) {
		t.Fatalf("expected ErrUnsupportedPlatform when the library file is missing, got %v", err)
	}
}
