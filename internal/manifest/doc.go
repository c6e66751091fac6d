// Package manifest decodes game-distribution build manifests into an
// immutable in-memory model.
//
// A manifest describes a downloadable build: identity and launch metadata, a
// deduplicated content-addressed chunk catalog, and a file list mapping
// logical files to byte ranges within chunks. Two wire forms exist: a packed
// binary container (magic-tagged header, optionally zlib-compressed payload,
// three length-framed sections) and a flat JSON document. Both decode to the
// same Manifest value.
//
// Parse is deliberately tolerant: truncated or corrupted input degrades into
// partial data plus advisories rather than an error, because manifests are
// routinely inspected even when damaged. The only fatal condition is input
// that is neither a binary container nor valid JSON.
package manifest
