package binreader

// Section frames a length-declared region of the buffer. The declared size
// counts from the first byte of the section, so a caller opens the section
// before reading the size field itself once it knows where the section
// starts.
type Section struct {
	r     *Reader
	start int
	size  int
}

// Section frames a region of size bytes beginning at the current position.
func (r *Reader) Section(size uint32) Section {
	return Section{r: r, start: r.pos, size: int(size)}
}

// SectionFrom frames a region of size bytes beginning at an absolute offset,
// for sections whose declared size counts the size field itself.
func (r *Reader) SectionFrom(start int, size uint32) Section {
	return Section{r: r, start: start, size: int(size)}
}

// Open reports whether more of the section remains readable: the declared
// length has not been reached and the buffer is not exhausted. Optional
// trailing fields check Open before each read so that both "declared length
// reached" and "buffer ran out" stop the walk cleanly.
func (s Section) Open() bool {
	return !s.r.exhausted && s.r.pos < s.start+s.size && s.r.pos < len(s.r.data)
}

// Consumed returns the number of bytes read since the section started.
func (s Section) Consumed() int { return s.r.pos - s.start }

// Truncated reports whether the declared section extends past the end of the
// buffer.
func (s Section) Truncated() bool { return s.start+s.size > len(s.r.data) }

// End returns the absolute offset of the declared section end, clamped to
// the buffer length.
func (s Section) End() int {
	end := s.start + s.size
	if end > len(s.r.data) {
		end = len(s.r.data)
	}
	return end
}

// Close jumps to the declared end of the section (clamped to the buffer), so
// fields this decoder does not understand are skipped rather than
// interpreted.
func (s Section) Close() {
	s.r.SeekTo(s.End())
}
