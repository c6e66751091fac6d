package manifest

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"

	"manifesto/internal/binreader"
)

// Chunk is one content-addressed, independently compressed unit of file data
// shared across files and builds for deduplication.
//
// FileSize is the on-disk (compressed) byte length of the chunk, kept as a
// decimal string because its range can exceed the 53-bit safe-integer limit
// of consuming environments; WindowSize is the uncompressed length. Hash is
// the 64-bit rolling/content hash rendered as 16 hex digits.
type Chunk struct {
	GUID       string `json:"guid"`
	Hash       string `json:"hash"`
	SHAHash    string `json:"shaHash"`
	Group      uint8  `json:"group"`
	WindowSize uint32 `json:"windowSize"`
	FileSize   string `json:"fileSize"`
}

// FileSizeBytes returns the chunk's on-disk size as an integer, or 0 when
// the field is empty or unparsable.
func (c *Chunk) FileSizeBytes() uint64 {
	n, err := strconv.ParseUint(c.FileSize, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ChunkDataList is the deduplicated chunk catalog. Elements preserve catalog
// order and stay the single source of truth for chunk data; the GUID lookup
// maps to indexes, never to copies.
type ChunkDataList struct {
	DataSize    uint32  `json:"dataSize"`
	DataVersion uint8   `json:"dataVersion"`
	Count       uint32  `json:"count"`
	Elements    []Chunk `json:"elements"`

	lookup map[string]int
}

// Lookup returns the index of the chunk with the given canonical GUID
// string.
func (l *ChunkDataList) Lookup(guid string) (int, bool) {
	idx, ok := l.lookup[guid]
	return idx, ok
}

// TotalDownloadSize returns the sum of all chunk on-disk sizes.
func (l *ChunkDataList) TotalDownloadSize() uint64 {
	var total uint64
	for i := range l.Elements {
		total += l.Elements[i].FileSizeBytes()
	}
	return total
}

// TotalInstalledSize returns the sum of all chunk window sizes, falling back
// to the on-disk size for chunks without a recorded window.
func (l *ChunkDataList) TotalInstalledSize() uint64 {
	var total uint64
	for i := range l.Elements {
		if w := l.Elements[i].WindowSize; w != 0 {
			total += uint64(w)
		} else {
			total += l.Elements[i].FileSizeBytes()
		}
	}
	return total
}

// buildLookup indexes the catalog by GUID in one pass. Duplicate GUIDs keep
// the first occurrence; a duplicate is a soft inconsistency in the input,
// not a fault.
func (l *ChunkDataList) buildLookup() {
	l.lookup = make(map[string]int, len(l.Elements))
	for i := range l.Elements {
		if _, seen := l.lookup[l.Elements[i].GUID]; !seen {
			l.lookup[l.Elements[i].GUID] = i
		}
	}
}

// Serialized size of one chunk record across the struct-of-arrays layout:
// 16-byte GUID + 8-byte hash + 20-byte SHA + group byte + 4-byte window +
// 8-byte file size.
const chunkRecordSize = 16 + 8 + 20 + 1 + 4 + 8

// decodeChunkList reads the chunk catalog. The wire layout is
// struct-of-arrays: all GUIDs, then all hashes, SHA hashes, groups, window
// sizes, and file sizes. Truncation mid-array leaves the remaining fields of
// later elements at their defaults; len(Elements) is authoritative over the
// declared count for every consumer.
func decodeChunkList(r *binreader.Reader, logger *slog.Logger) *ChunkDataList {
	start := r.Pos()
	dataSize := r.Uint32()
	if r.Exhausted() || dataSize == 0 {
		return nil
	}
	sec := r.SectionFrom(start, dataSize)

	l := &ChunkDataList{DataSize: dataSize}
	l.DataVersion = r.Uint8()
	l.Count = r.Uint32()
	if r.Exhausted() {
		l.buildLookup()
		sec.Close()
		return l
	}

	hint := int(l.Count)
	if max := r.Remaining() / chunkRecordSize; hint > max {
		hint = max + 1
	}
	l.Elements = make([]Chunk, 0, hint)
	for i := 0; i < int(l.Count) && !r.Exhausted(); i++ {
		guid := r.GUID()
		if r.Exhausted() {
			break
		}
		l.Elements = append(l.Elements, Chunk{GUID: guid})
	}
	for i := range l.Elements {
		if r.Exhausted() {
			break
		}
		if h := r.Uint64(); !r.Exhausted() {
			l.Elements[i].Hash = fmt.Sprintf("%016x", h)
		}
	}
	for i := range l.Elements {
		if sha := r.Bytes(20); sha != nil {
			l.Elements[i].SHAHash = hex.EncodeToString(sha)
		} else {
			break
		}
	}
	for i := range l.Elements {
		if r.Exhausted() {
			break
		}
		l.Elements[i].Group = r.Uint8()
	}
	for i := range l.Elements {
		if r.Exhausted() {
			break
		}
		l.Elements[i].WindowSize = r.Uint32()
	}
	for i := range l.Elements {
		if r.Exhausted() {
			break
		}
		if size := r.Uint64(); !r.Exhausted() {
			l.Elements[i].FileSize = strconv.FormatUint(size, 10)
		}
	}

	l.buildLookup()
	logger.Debug("chunk list decoded",
		"dataSize", dataSize,
		"declaredCount", l.Count,
		"elements", len(l.Elements))
	sec.Close()
	return l
}
