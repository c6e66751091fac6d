package manifest

import (
	"fmt"
	"log/slog"

	"manifesto/internal/binreader"
	"manifesto/internal/logging"
)

// Options adjusts Parse behavior. The zero value is the documented default:
// tolerant of truncation, corruption, and integrity mismatches.
type Options struct {
	// StrictIntegrity turns a payload hash mismatch or decompression
	// shortfall into a returned ErrIntegrity instead of an advisory.
	StrictIntegrity bool

	// Logger receives debug-level decode traces. Nil disables them.
	Logger *slog.Logger
}

// Parse decodes a manifest from an in-memory buffer with default options.
//
// Parse is a pure function: no I/O, no shared state, no internal
// concurrency. Concurrent calls are fully independent. It fails only when
// the input is too small to contain a minimal binary header and is not a
// valid JSON manifest; every other fault degrades into partial data plus
// advisories on the returned Manifest.
func Parse(data []byte) (*Manifest, error) {
	return ParseWithOptions(data, Options{})
}

// ParseWithOptions decodes a manifest from an in-memory buffer.
func ParseWithOptions(data []byte, opts Options) (*Manifest, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}

	r := binreader.New(data)
	header, ok, err := decodeHeader(r)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.Debug("no container magic, trying JSON manifest", "bytes", len(data))
		return decodeJSONManifest(data)
	}
	logger.Debug("binary manifest header decoded",
		"headerSize", header.HeaderSize,
		"version", header.Version,
		"storedAs", header.StoredAs)

	m := &Manifest{Header: header}
	if header.IsEncrypted() {
		// No key material exists on this side; the header is still useful.
		m.Advisories.Encrypted = true
		return m, nil
	}

	start, end := payloadRange(&header, len(data))
	verdict := decodePayload(data[start:end], &header, logger)
	m.Advisories.IntegrityMismatch = verdict.mismatch
	m.Advisories.PayloadShortfall = verdict.shortfall
	if opts.StrictIntegrity && (verdict.mismatch || verdict.shortfall > 0) {
		return nil, fmt.Errorf("%w: mismatch=%v shortfall=%d",
			ErrIntegrity, verdict.mismatch, verdict.shortfall)
	}

	payload := binreader.New(verdict.data)
	m.Meta = decodeMeta(payload, logger)
	m.ChunkList = decodeChunkList(payload, logger)
	m.FileList = decodeFileList(payload, m.ChunkList, &m.Advisories, logger)
	return m, nil
}
