// Package loader provides the file and buffer entry points around the
// manifest parsing core.
//
// The core is a pure function over an in-memory buffer; this package adds
// the thin adapters callers actually use: a synchronous file load, an
// asynchronous file load delivering its result through a Future, and a
// buffer passthrough. All three produce structurally identical results for
// the same underlying bytes.
package loader
