package loader

import (
	"fmt"
	"os"

	"manifesto/internal/manifest"
)

// Load reads the whole file into memory and parses it.
func Load(path string) (*manifest.Manifest, error) {
	return LoadWithOptions(path, manifest.Options{})
}

// LoadWithOptions reads the whole file into memory and parses it with the
// given options.
func LoadWithOptions(path string, opts manifest.Options) (*manifest.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return manifest.ParseWithOptions(data, opts)
}

// Parse applies the core directly to an in-memory buffer, no I/O.
func Parse(data []byte) (*manifest.Manifest, error) {
	return manifest.Parse(data)
}
