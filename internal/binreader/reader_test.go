package binreader

import (
	"encoding/binary"
	"regexp"
	"testing"
)

func appendU32(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

func TestPrimitiveReads(t *testing.T) {
	var data []byte
	data = append(data, 0x7F)
	data = binary.LittleEndian.AppendUint16(data, 0xBEEF)
	data = appendU32(data, 0xDEADBEEF)
	data = binary.LittleEndian.AppendUint64(data, 0x0102030405060708)
	data = append(data, 1)

	r := New(data)
	if got := r.Uint8(); got != 0x7F {
		t.Fatalf("Uint8 = %#x", got)
	}
	if got := r.Uint16(); got != 0xBEEF {
		t.Fatalf("Uint16 = %#x", got)
	}
	if got := r.Uint32(); got != 0xDEADBEEF {
		t.Fatalf("Uint32 = %#x", got)
	}
	if got := r.Uint64(); got != 0x0102030405060708 {
		t.Fatalf("Uint64 = %#x", got)
	}
	if !r.Bool() {
		t.Fatal("Bool = false, want true")
	}
	if r.Exhausted() {
		t.Fatal("reader exhausted after exact-length reads")
	}
	if r.Remaining() != 0 {
		t.Fatalf("Remaining = %d", r.Remaining())
	}
}

func TestExhaustionLatches(t *testing.T) {
	r := New([]byte{0x01, 0x02})
	if got := r.Uint32(); got != 0 {
		t.Fatalf("short Uint32 = %#x, want 0", got)
	}
	if !r.Exhausted() {
		t.Fatal("reader not exhausted after overrun")
	}
	// Every later read keeps returning zero values.
	if got := r.Uint8(); got != 0 {
		t.Fatalf("Uint8 after exhaustion = %#x", got)
	}
	if got := r.String(); got != "" {
		t.Fatalf("String after exhaustion = %q", got)
	}
}

func TestStringUTF8(t *testing.T) {
	var data []byte
	data = appendU32(data, 9)
	data = append(data, []byte("Game.exe\x00")...)
	r := New(data)
	if got := r.String(); got != "Game.exe" {
		t.Fatalf("String = %q, want %q (trailing NUL trimmed)", got, "Game.exe")
	}
}

func TestStringUTF16(t *testing.T) {
	// Negative length prefix counts UTF-16 code units.
	var data []byte
	data = appendU32(data, 0xFFFFFFFC) // -4: four UTF-16 code units
	for _, r := range "abc\x00" {
		data = binary.LittleEndian.AppendUint16(data, uint16(r))
	}
	r := New(data)
	if got := r.String(); got != "abc" {
		t.Fatalf("UTF-16 String = %q, want %q", got, "abc")
	}
}

func TestStringOverlongIsExhaustion(t *testing.T) {
	var data []byte
	data = appendU32(data, 1<<30)
	data = append(data, 'x')
	r := New(data)
	if got := r.String(); got != "" {
		t.Fatalf("String = %q, want empty", got)
	}
	if !r.Exhausted() {
		t.Fatal("overlong string must exhaust the reader")
	}
}

func TestStringArrayTruncated(t *testing.T) {
	var data []byte
	data = appendU32(data, 3) // declares three strings
	data = appendU32(data, 2)
	data = append(data, []byte("ab")...)
	data = appendU32(data, 2)
	data = append(data, []byte("cd")...)
	// third string missing
	r := New(data)
	got := r.StringArray()
	if len(got) != 2 || got[0] != "ab" || got[1] != "cd" {
		t.Fatalf("StringArray = %v", got)
	}
	if !r.Exhausted() {
		t.Fatal("truncated array must exhaust the reader")
	}
}

var guidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

func TestGUIDCanonicalForm(t *testing.T) {
	raw := []byte{
		0x44, 0x33, 0x22, 0x11,
		0x88, 0x77, 0x66, 0x55,
		0xCC, 0xBB, 0xAA, 0x99,
		0x00, 0xFF, 0xEE, 0xDD,
	}
	r := New(raw)
	got := r.GUID()
	if !guidPattern.MatchString(got) {
		t.Fatalf("GUID %q does not match canonical pattern", got)
	}
	// Four little-endian words rendered in order.
	if got != "11223344-5566-7788-99aa-bbccddeeff00" {
		t.Fatalf("GUID = %q", got)
	}
}

func TestGUIDArbitraryBytesCanonical(t *testing.T) {
	for seed := byte(0); seed < 16; seed++ {
		raw := make([]byte, 16)
		for i := range raw {
			raw[i] = seed*17 + byte(i)*31
		}
		got := New(raw).GUID()
		if !guidPattern.MatchString(got) {
			t.Fatalf("GUID %q for seed %d not canonical", got, seed)
		}
	}
}

func TestSectionStopsAtDeclaredEnd(t *testing.T) {
	var data []byte
	data = appendU32(data, 8) // section size, counted from its own offset
	data = appendU32(data, 42)
	data = appendU32(data, 99) // beyond the declared section

	r := New(data)
	start := r.Pos()
	size := r.Uint32()
	sec := r.SectionFrom(start, size)
	if !sec.Open() {
		t.Fatal("section closed before reading its fields")
	}
	if got := r.Uint32(); got != 42 {
		t.Fatalf("field = %d", got)
	}
	if sec.Open() {
		t.Fatal("section still open at declared end")
	}
	sec.Close()
	if got := r.Uint32(); got != 99 {
		t.Fatalf("read after section = %d, want 99", got)
	}
}

func TestSectionTruncated(t *testing.T) {
	var data []byte
	data = appendU32(data, 100) // declares more than the buffer holds
	data = appendU32(data, 7)

	r := New(data)
	start := r.Pos()
	size := r.Uint32()
	sec := r.SectionFrom(start, size)
	if !sec.Truncated() {
		t.Fatal("section should report truncation")
	}
	if got := r.Uint32(); got != 7 {
		t.Fatalf("field = %d", got)
	}
	if sec.Open() {
		t.Fatal("section open with no bytes left")
	}
	sec.Close()
	if r.Exhausted() {
		t.Fatal("Close must not latch exhaustion")
	}
	if r.Pos() != len(data) {
		t.Fatalf("Pos = %d, want %d", r.Pos(), len(data))
	}
}

func TestSkipAndSeek(t *testing.T) {
	r := New(make([]byte, 10))
	r.Skip(4)
	if r.Pos() != 4 {
		t.Fatalf("Pos = %d", r.Pos())
	}
	r.SeekTo(100)
	if r.Pos() != 10 {
		t.Fatalf("clamped Pos = %d", r.Pos())
	}
	if r.Exhausted() {
		t.Fatal("SeekTo latched exhaustion")
	}
	r.Skip(1)
	if !r.Exhausted() {
		t.Fatal("Skip past end must latch exhaustion")
	}
}
