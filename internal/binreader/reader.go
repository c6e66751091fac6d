package binreader

import (
	"encoding/binary"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
)

// Reader walks a byte slice front to back. The zero value is unusable; use
// New. Once a read would cross the end of the slice the reader is exhausted:
// that read and every later one return zero values.
type Reader struct {
	data      []byte
	pos       int
	exhausted bool
}

// New wraps data in a reader positioned at offset 0.
func New(data []byte) *Reader {
	return &Reader{data: data}
}

// Exhausted reports whether a read has run past the end of the buffer.
func (r *Reader) Exhausted() bool { return r.exhausted }

// Pos returns the current read offset.
func (r *Reader) Pos() int { return r.pos }

// Len returns the total buffer length.
func (r *Reader) Len() int { return len(r.data) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

// take consumes n bytes, or latches exhaustion and returns nil when fewer
// than n remain.
func (r *Reader) take(n int) []byte {
	if r.exhausted || n < 0 || n > len(r.data)-r.pos {
		r.exhausted = true
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

// Skip advances the position by n bytes, latching exhaustion on overrun.
func (r *Reader) Skip(n int) {
	_ = r.take(n)
}

// SeekTo moves the position to an absolute offset, clamped to the buffer
// length. Seeking never latches exhaustion; it is used to jump to a section
// boundary regardless of how much of the section was readable.
func (r *Reader) SeekTo(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(r.data) {
		pos = len(r.data)
	}
	r.pos = pos
}

// Bytes returns the next n bytes, or nil on exhaustion.
func (r *Reader) Bytes(n int) []byte { return r.take(n) }

// Uint8 reads one byte.
func (r *Reader) Uint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Int8 reads one signed byte.
func (r *Reader) Int8() int8 { return int8(r.Uint8()) }

// Bool reads one byte and reports whether it is non-zero.
func (r *Reader) Bool() bool { return r.Uint8() != 0 }

// Uint16 reads a little-endian 16-bit value.
func (r *Reader) Uint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// Int16 reads a little-endian signed 16-bit value.
func (r *Reader) Int16() int16 { return int16(r.Uint16()) }

// Uint32 reads a little-endian 32-bit value.
func (r *Reader) Uint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// Int32 reads a little-endian signed 32-bit value.
func (r *Reader) Int32() int32 { return int32(r.Uint32()) }

// Uint64 reads a little-endian 64-bit value.
func (r *Reader) Uint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// Int64 reads a little-endian signed 64-bit value.
func (r *Reader) Int64() int64 { return int64(r.Uint64()) }

// GUID reads 16 raw bytes, reinterprets them as four little-endian 32-bit
// words, and renders the canonical dash-delimited lowercase form. Returns ""
// on exhaustion.
func (r *Reader) GUID() string {
	raw := r.take(16)
	if raw == nil {
		return ""
	}
	var be [16]byte
	for i := 0; i < 4; i++ {
		binary.BigEndian.PutUint32(be[i*4:], binary.LittleEndian.Uint32(raw[i*4:]))
	}
	id, err := uuid.FromBytes(be[:])
	if err != nil {
		return ""
	}
	return id.String()
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// String reads a 4-byte length-prefixed string. A positive length counts
// UTF-8 bytes; a negative length counts UTF-16LE code units. Trailing NUL
// bytes inside the prefixed length are trimmed. Returns "" on exhaustion.
func (r *Reader) String() string {
	length := r.Int32()
	switch {
	case r.exhausted || length == 0:
		return ""
	case length < 0:
		units := int(-int64(length))
		raw := r.take(units * 2)
		if raw == nil {
			return ""
		}
		decoded, err := utf16le.NewDecoder().Bytes(raw)
		if err != nil {
			return ""
		}
		return strings.TrimRight(string(decoded), "\x00")
	default:
		raw := r.take(int(length))
		if raw == nil {
			return ""
		}
		return strings.TrimRight(string(raw), "\x00")
	}
}

// StringArray reads a 4-byte count followed by that many length-prefixed
// strings. Truncation mid-array yields the strings read so far.
func (r *Reader) StringArray() []string {
	count := int(r.Uint32())
	if r.exhausted || count == 0 {
		return nil
	}
	// Each entry needs at least its 4-byte length prefix.
	hint := count
	if max := r.Remaining() / 4; hint > max {
		hint = max
	}
	out := make([]string, 0, hint)
	for i := 0; i < count && !r.exhausted; i++ {
		s := r.String()
		if r.exhausted {
			break
		}
		out = append(out, s)
	}
	return out
}
