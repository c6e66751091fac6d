// Package manifestcache persists summaries of parsed manifests in SQLite so
// repeat inspections can list history without re-decoding large files.
//
// Only derived summary rows are stored (identity, counts, sizes, integrity
// verdict), never chunk data and never the manifest bytes themselves. A
// file lock serializes cross-process access on top of SQLite's own busy
// handling, since several CLI invocations may touch the same database.
package manifestcache
