package manifest

// Manifest is the decoded description of a distributable build. It is
// assembled once by Parse and never mutated afterwards; consumers only read.
//
// Meta, ChunkList, and FileList are nil only when their section failed to
// decode at all. A section that decoded partially (truncated input) is
// present with defaults for the unread fields, which is distinct from
// absence.
type Manifest struct {
	Header     ManifestHeader    `json:"header"`
	Meta       *ManifestMeta     `json:"meta,omitempty"`
	ChunkList  *ChunkDataList    `json:"chunkList,omitempty"`
	FileList   *FileManifestList `json:"fileList,omitempty"`
	Advisories Advisories        `json:"advisories"`
}

// Advisories records non-fatal faults observed while decoding. They never
// prevent a Manifest from being returned; the caller decides their severity.
type Advisories struct {
	// Encrypted is set when the stored-as flags mark the payload encrypted.
	// Decryption is unsupported, so sections are absent.
	Encrypted bool `json:"encrypted,omitempty"`

	// IntegrityMismatch is set when the SHA-1 of the decoded payload does
	// not match the hash declared in the header.
	IntegrityMismatch bool `json:"integrityMismatch,omitempty"`

	// PayloadShortfall is the number of declared payload bytes that could
	// not be recovered (truncated input or a short zlib stream).
	PayloadShortfall int `json:"payloadShortfall,omitempty"`

	// UnresolvedParts counts chunk parts whose parent GUID has no entry in
	// the chunk catalog. The parts themselves are kept with ChunkIndex -1.
	UnresolvedParts int `json:"unresolvedParts,omitempty"`
}

// Clean reports whether no advisory condition was recorded.
func (a Advisories) Clean() bool {
	return a == Advisories{}
}
