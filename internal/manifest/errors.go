package manifest

import "errors"

var (
	// ErrMalformed marks input that cannot produce a Manifest at all: a
	// buffer too small to contain even a minimal binary header that is also
	// not a valid JSON manifest.
	ErrMalformed = errors.New("malformed manifest")

	// ErrIntegrity is returned only under Options.StrictIntegrity when the
	// payload hash does not match the header or decompression came up short.
	ErrIntegrity = errors.New("manifest integrity check failed")
)
