package manifest

import (
	"encoding/hex"
	"log/slog"
	"mime"
	"path"
	"strings"

	"manifesto/internal/binreader"
)

// File meta flag bits.
const (
	FileReadOnly       = 1 << 0
	FileCompressed     = 1 << 1
	FileUnixExecutable = 1 << 2
)

// ChunkPart references a byte range within one chunk; concatenating a file's
// parts in order reconstructs the file. ChunkIndex points into the owning
// catalog's Elements and is -1 when the parent GUID has no catalog entry, a
// data-consistency fault recorded as an advisory, not a parse failure.
type ChunkPart struct {
	DataSize   uint32 `json:"dataSize"`
	ParentGUID string `json:"parentGuid"`
	Offset     uint32 `json:"offset"`
	Size       uint32 `json:"size"`
	ChunkIndex int    `json:"chunkIndex"`
}

// Resolved reports whether the part's parent GUID was found in the chunk
// catalog.
func (p *ChunkPart) Resolved() bool { return p.ChunkIndex >= 0 }

// FileManifest describes one logical file of the build.
type FileManifest struct {
	Filename      string      `json:"filename"`
	SymlinkTarget string      `json:"symlinkTarget"`
	SHAHash       string      `json:"shaHash"`
	FileMetaFlags uint8       `json:"fileMetaFlags"`
	InstallTags   []string    `json:"installTags"`
	ChunkParts    []ChunkPart `json:"chunkParts"`
	FileSize      int64       `json:"fileSize"`
	MimeType      string      `json:"mimeType"`
}

// IsReadOnly reports the read-only meta flag.
func (f *FileManifest) IsReadOnly() bool { return f.FileMetaFlags&FileReadOnly != 0 }

// IsCompressed reports the compressed meta flag.
func (f *FileManifest) IsCompressed() bool { return f.FileMetaFlags&FileCompressed != 0 }

// IsUnixExecutable reports the unix-executable meta flag.
func (f *FileManifest) IsUnixExecutable() bool { return f.FileMetaFlags&FileUnixExecutable != 0 }

// IsSymlink reports whether the file is a symlink (non-empty target).
func (f *FileManifest) IsSymlink() bool { return f.SymlinkTarget != "" }

// UnresolvedParts counts chunk parts without a catalog entry.
func (f *FileManifest) UnresolvedParts() int {
	n := 0
	for i := range f.ChunkParts {
		if !f.ChunkParts[i].Resolved() {
			n++
		}
	}
	return n
}

// FileManifestList is the decoded file list section.
type FileManifestList struct {
	DataSize    uint32         `json:"dataSize"`
	DataVersion uint8          `json:"dataVersion"`
	Count       uint32         `json:"count"`
	Files       []FileManifest `json:"fileManifestList"`
}

// decodeFileList reads the file list section and resolves every chunk part
// against the already-built catalog. Like the chunk list, the wire layout is
// struct-of-arrays: filenames, symlink targets, SHA hashes, meta flags,
// install tags, then per-file chunk part arrays. Data version 2 appends
// per-file hash arrays, MIME types, and trailing hashes.
//
// FileSize is derived as the sum of part sizes whether or not every part
// resolved, so size accounting stays correct under partial resolution.
func decodeFileList(r *binreader.Reader, chunks *ChunkDataList, adv *Advisories, logger *slog.Logger) *FileManifestList {
	start := r.Pos()
	dataSize := r.Uint32()
	if r.Exhausted() || dataSize == 0 {
		return nil
	}
	sec := r.SectionFrom(start, dataSize)

	l := &FileManifestList{DataSize: dataSize}
	l.DataVersion = r.Uint8()
	l.Count = r.Uint32()
	if r.Exhausted() {
		sec.Close()
		return l
	}

	hint := int(l.Count)
	if max := r.Remaining() / 8; hint > max {
		hint = max + 1
	}
	l.Files = make([]FileManifest, 0, hint)
	for i := 0; i < int(l.Count) && !r.Exhausted(); i++ {
		name := r.String()
		if r.Exhausted() {
			break
		}
		l.Files = append(l.Files, FileManifest{Filename: name})
	}
	for i := range l.Files {
		if r.Exhausted() {
			break
		}
		l.Files[i].SymlinkTarget = r.String()
	}
	for i := range l.Files {
		if sha := r.Bytes(20); sha != nil {
			l.Files[i].SHAHash = hex.EncodeToString(sha)
		} else {
			break
		}
	}
	for i := range l.Files {
		if r.Exhausted() {
			break
		}
		l.Files[i].FileMetaFlags = r.Uint8()
	}
	for i := range l.Files {
		if r.Exhausted() {
			break
		}
		l.Files[i].InstallTags = r.StringArray()
	}
	for i := range l.Files {
		if r.Exhausted() {
			break
		}
		decodeChunkParts(r, &l.Files[i], chunks, adv)
	}

	if l.DataVersion >= 2 {
		// Per-file 16-byte hash arrays this decoder does not interpret.
		for range l.Files {
			if r.Exhausted() {
				break
			}
			n := r.Uint32()
			r.Skip(int(n) * 16)
		}
		for i := range l.Files {
			if r.Exhausted() {
				break
			}
			l.Files[i].MimeType = r.String()
		}
		// Trailing 32-byte per-file hashes, likewise skipped.
		for range l.Files {
			if r.Exhausted() {
				break
			}
			r.Skip(32)
		}
	}

	for i := range l.Files {
		if l.Files[i].MimeType == "" {
			l.Files[i].MimeType = mimeTypeFor(l.Files[i].Filename)
		}
	}

	logger.Debug("file list decoded",
		"dataSize", dataSize,
		"declaredCount", l.Count,
		"files", len(l.Files),
		"unresolvedParts", adv.UnresolvedParts)
	sec.Close()
	return l
}

// decodeChunkParts reads one file's count-prefixed part array. Each record
// carries its own serialized size, so records from newer schema revisions
// with extra fields are skipped to their declared end.
func decodeChunkParts(r *binreader.Reader, f *FileManifest, chunks *ChunkDataList, adv *Advisories) {
	count := int(r.Uint32())
	if r.Exhausted() || count == 0 {
		return
	}
	hint := count
	if max := r.Remaining() / chunkPartRecordSize; hint > max {
		hint = max + 1
	}
	parts := make([]ChunkPart, 0, hint)
	var total int64
	for i := 0; i < count && !r.Exhausted(); i++ {
		recordStart := r.Pos()
		p := ChunkPart{ChunkIndex: -1}
		p.DataSize = r.Uint32()
		p.ParentGUID = r.GUID()
		p.Offset = r.Uint32()
		p.Size = r.Uint32()
		if r.Exhausted() {
			break
		}
		if int(p.DataSize) > chunkPartRecordSize {
			r.SeekTo(recordStart + int(p.DataSize))
		}
		if chunks != nil {
			if idx, ok := chunks.Lookup(p.ParentGUID); ok {
				p.ChunkIndex = idx
			}
		}
		if !p.Resolved() {
			adv.UnresolvedParts++
		}
		total += int64(p.Size)
		parts = append(parts, p)
	}
	f.ChunkParts = parts
	f.FileSize = total
}

// Fixed layout of a chunk part record: 4-byte record size, 16-byte GUID,
// 4-byte offset, 4-byte size.
const chunkPartRecordSize = 4 + 16 + 4 + 4

// mimeTypeFor derives a best-effort MIME type from the filename extension.
func mimeTypeFor(filename string) string {
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(filename))); t != "" {
		return t
	}
	return "application/octet-stream"
}
