// Package binreader provides a bounds-checked little-endian cursor over an
// in-memory byte slice, plus section framing for length-declared regions.
//
// Every primitive read that would run past the end of the buffer latches the
// reader into an exhausted state and returns the type's zero value instead of
// failing. Callers check Exhausted at the granularity their tolerance policy
// requires; nothing here panics or reads out of bounds. This is the single
// mechanism that lets truncated or corrupted manifests still decode into
// partial results.
package binreader
