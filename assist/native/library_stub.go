//go:build !linux

package native

import "fmt"

// Library is a loaded engine shared object. The engine only ships Linux
// builds; on other platforms loading always fails.
type Library struct{}

func Load(path string) (*Library, error) {
	return nil, fmt.Errorf("no engine library for this platform: %w", ErrUnsupportedPlatform)
}

func (l *Library) NewInstance(callback Callback) (Instance, error) {
	return nil, fmt.Errorf("no engine library for this platform: %w", ErrUnsupportedPlatform)
}
