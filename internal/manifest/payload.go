package manifest

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"log/slog"
	"strings"

	"github.com/klauspost/compress/zlib"
)

// Largest payload this decoder will allocate for. Declared sizes beyond this
// are treated as corrupt and clamped, so adversarial headers cannot force
// huge allocations.
const maxPayloadSize = 1 << 30

// payloadVerdict carries the decoded payload bytes together with the
// integrity and completeness findings of the payload stage. The findings are
// advisory: section parsing proceeds on whatever bytes were recovered.
type payloadVerdict struct {
	data      []byte
	shortfall int
	mismatch  bool
}

// decodePayload inflates the payload when the header marks it compressed and
// independently verifies its SHA-1 against the header-declared hash. A short
// zlib stream keeps its partial output; the missing byte count is recorded
// rather than discarding what inflated cleanly.
func decodePayload(raw []byte, h *ManifestHeader, logger *slog.Logger) payloadVerdict {
	declared := int(h.DataSizeUncompressed)
	if declared < 0 {
		declared = 0
	}
	if declared > maxPayloadSize {
		declared = maxPayloadSize
	}

	var v payloadVerdict
	if h.IsCompressed() {
		v.data = inflate(raw, declared, logger)
	} else {
		v.data = raw
	}
	if missing := declared - len(v.data); missing > 0 {
		v.shortfall = missing
	}

	sum := sha1.Sum(v.data)
	got := hex.EncodeToString(sum[:])
	want := strings.ToLower(h.SHA1Hash)
	if want != "" && got != want {
		v.mismatch = true
		logger.Debug("payload hash mismatch", "declared", want, "computed", got)
	}
	return v
}

func inflate(raw []byte, declared int, logger *slog.Logger) []byte {
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		logger.Debug("zlib stream unreadable", "error", err)
		return nil
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, int64(declared)))
	if err != nil {
		// Keep the partial output: downstream sections may still decode.
		logger.Debug("zlib stream ended early", "recovered", len(out), "declared", declared, "error", err)
	}
	return out
}
