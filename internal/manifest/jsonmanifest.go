package manifest

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// jsonManifest mirrors the legacy JSON wire form of a manifest: a flat
// document with no header, no compression, and no section framing. Field
// names follow the upstream distribution format.
type jsonManifest struct {
	ManifestFileVersion string             `json:"ManifestFileVersion"`
	IsFileData          bool               `json:"bIsFileData"`
	AppID               string             `json:"AppID"`
	AppNameString       string             `json:"AppNameString"`
	BuildVersionString  string             `json:"BuildVersionString"`
	LaunchExeString     string             `json:"LaunchExeString"`
	LaunchCommand       string             `json:"LaunchCommand"`
	PrereqIds           []string           `json:"PrereqIds"`
	PrereqName          string             `json:"PrereqName"`
	PrereqPath          string             `json:"PrereqPath"`
	PrereqArgs          string             `json:"PrereqArgs"`
	FileManifestList    []jsonFileManifest `json:"FileManifestList"`
}

type jsonFileManifest struct {
	Filename         string              `json:"Filename"`
	FileHash         string              `json:"FileHash"`
	IsUnixExecutable bool                `json:"bIsUnixExecutable"`
	FileChunkParts   []jsonFileChunkPart `json:"FileChunkParts"`
}

type jsonFileChunkPart struct {
	GUID   string `json:"Guid"`
	Offset string `json:"Offset"`
	Size   string `json:"Size"`
}

// decodeJSONManifest interprets the whole input as a UTF-8 JSON manifest and
// maps it onto the same model the binary path produces. This is the fallback
// when the container magic is absent, and a document that cannot be decoded
// here is the one fatal format failure in the system.
func decodeJSONManifest(data []byte) (*Manifest, error) {
	var doc jsonManifest
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: not a binary container and not valid JSON: %v", ErrMalformed, err)
	}
	if doc.ManifestFileVersion == "" && doc.FileManifestList == nil {
		return nil, fmt.Errorf("%w: JSON document is not a manifest", ErrMalformed)
	}

	m := &Manifest{
		Header: ManifestHeader{Version: parseJSONVersion(doc.ManifestFileVersion)},
		Meta: &ManifestMeta{
			IsFileData:    doc.IsFileData,
			AppID:         parseJSONAppID(doc.AppID),
			AppName:       doc.AppNameString,
			BuildVersion:  doc.BuildVersionString,
			LaunchExe:     doc.LaunchExeString,
			LaunchCommand: doc.LaunchCommand,
			PrereqIDs:     doc.PrereqIds,
			PrereqName:    doc.PrereqName,
			PrereqPath:    doc.PrereqPath,
			PrereqArgs:    doc.PrereqArgs,
		},
	}

	// The JSON form carries chunks only implicitly, as references inside
	// file chunk parts. Collect them in first-reference order so the catalog
	// is deterministic.
	chunkList := &ChunkDataList{}
	chunkList.lookup = make(map[string]int)
	addChunk := func(guid string, size uint64) int {
		if idx, ok := chunkList.lookup[guid]; ok {
			return idx
		}
		idx := len(chunkList.Elements)
		chunkList.Elements = append(chunkList.Elements, Chunk{
			GUID:     guid,
			FileSize: strconv.FormatUint(size, 10),
		})
		chunkList.lookup[guid] = idx
		return idx
	}

	fileList := &FileManifestList{}
	for _, jf := range doc.FileManifestList {
		f := FileManifest{
			Filename: jf.Filename,
			SHAHash:  parseJSONFileHash(jf.FileHash),
			MimeType: mimeTypeFor(jf.Filename),
		}
		if jf.IsUnixExecutable {
			f.FileMetaFlags |= FileUnixExecutable
		}
		for _, jp := range jf.FileChunkParts {
			guid, err := uuid.Parse(jp.GUID)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid chunk GUID %q: %v", ErrMalformed, jp.GUID, err)
			}
			offset := parseHexField(jp.Offset)
			size := parseHexField(jp.Size)
			p := ChunkPart{
				ParentGUID: guid.String(),
				Offset:     uint32(offset),
				Size:       uint32(size),
				ChunkIndex: addChunk(guid.String(), size),
			}
			f.FileSize += int64(p.Size)
			f.ChunkParts = append(f.ChunkParts, p)
		}
		fileList.Files = append(fileList.Files, f)
	}
	chunkList.Count = uint32(len(chunkList.Elements))
	fileList.Count = uint32(len(fileList.Files))

	m.ChunkList = chunkList
	m.FileList = fileList
	return m, nil
}

// parseJSONVersion maps the decimal ManifestFileVersion onto the header
// version field. Oversized values keep their trailing eight digits, matching
// the historical behavior for padded version strings.
func parseJSONVersion(s string) int32 {
	if len(s) > 8 {
		s = s[len(s)-8:]
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return int32(v)
}

func parseJSONAppID(s string) int32 {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return int32(v)
}

// parseHexField decodes the hex-encoded numeric fields of JSON chunk parts.
func parseHexField(s string) uint64 {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseJSONFileHash decodes the JSON file hash encoding: twenty bytes, each
// rendered as exactly three decimal digits. Returns "" on any other shape.
func parseJSONFileHash(s string) string {
	if len(s) != 60 {
		return ""
	}
	var hash [20]byte
	for i := range hash {
		b, err := strconv.ParseUint(s[i*3:i*3+3], 10, 16)
		if err != nil || b > 255 {
			return ""
		}
		hash[i] = byte(b)
	}
	return hex.EncodeToString(hash[:])
}
