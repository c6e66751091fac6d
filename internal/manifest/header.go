package manifest

import (
	"encoding/hex"
	"fmt"

	"manifesto/internal/binreader"
)

// Container magic at offset 0 of every binary manifest.
const manifestMagic = 0x44BEC00C

// Stored-as flag bits.
const (
	StoredCompressed = 1 << 0
	StoredEncrypted  = 1 << 1
)

// ManifestHeader is the fixed-size container header of a binary manifest.
type ManifestHeader struct {
	HeaderSize           int32  `json:"headerSize"`
	DataSizeUncompressed int32  `json:"dataSizeUncompressed"`
	DataSizeCompressed   int32  `json:"dataSizeCompressed"`
	SHA1Hash             string `json:"sha1Hash"`
	StoredAs             uint8  `json:"storedAs"`
	Version              int32  `json:"version"`
	GUID                 string `json:"guid"`
	RollingHash          int64  `json:"rollingHash"`
	HashType             uint32 `json:"hashType"`
}

// IsCompressed reports whether the stored-as flags mark the payload as
// zlib-compressed.
func (h *ManifestHeader) IsCompressed() bool { return h.StoredAs&StoredCompressed != 0 }

// IsEncrypted reports whether the stored-as flags mark the payload as
// encrypted.
func (h *ManifestHeader) IsEncrypted() bool { return h.StoredAs&StoredEncrypted != 0 }

// decodeHeader reads the container header at offset 0. It returns ok=false
// when the magic does not match, which routes the orchestrator to the JSON
// path; that is format detection, not an error. A buffer that carries the
// magic but ends inside the 37-byte fixed header is malformed: the magic
// commits the input to the binary form, and the fixed fields are the minimal
// structure; tolerance starts after them. On success the reader is positioned at
// the start of the payload (headerSize, clamped to the buffer).
//
// Fields past the stored-as byte were added over the format's history and
// are gated on the declared header size, so older headers decode with
// defaults.
func decodeHeader(r *binreader.Reader) (ManifestHeader, bool, error) {
	var h ManifestHeader
	if r.Uint32() != manifestMagic || r.Exhausted() {
		return h, false, nil
	}
	h.HeaderSize = r.Int32()
	h.DataSizeUncompressed = r.Int32()
	h.DataSizeCompressed = r.Int32()
	if sha := r.Bytes(20); sha != nil {
		h.SHA1Hash = hex.EncodeToString(sha)
	}
	h.StoredAs = r.Uint8()
	if r.Exhausted() {
		return h, true, fmt.Errorf("%w: %d bytes is shorter than the fixed container header", ErrMalformed, r.Len())
	}
	if h.HeaderSize > 37 {
		h.Version = r.Int32()
	}
	if h.HeaderSize > 41 {
		h.GUID = r.GUID()
	}
	if h.HeaderSize > 57 {
		h.RollingHash = r.Int64()
	}
	if h.HeaderSize > 65 {
		h.HashType = r.Uint32()
	}
	if h.HeaderSize >= 0 {
		r.SeekTo(int(h.HeaderSize))
	}
	return h, true, nil
}

// payloadRange returns the byte range [start, end) of the payload within the
// full buffer, clamped to the actual buffer length so a declared size that
// overruns truncated input still yields whatever bytes are present.
func payloadRange(h *ManifestHeader, bufLen int) (int, int) {
	start := int(h.HeaderSize)
	if start < 0 || start > bufLen {
		start = bufLen
	}
	declared := int64(h.DataSizeCompressed)
	if !h.IsCompressed() {
		declared = int64(h.DataSizeUncompressed)
	}
	if declared < 0 {
		declared = 0
	}
	end := int64(start) + declared
	if end > int64(bufLen) {
		end = int64(bufLen)
	}
	return start, int(end)
}
