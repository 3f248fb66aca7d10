package transport

// Frame is a fixed-capacity byte buffer holding one logical packet's
// payload, with a length counter and a read cursor. It is shared
// structure between the send side (append, no cursor use) and the
// receive side (load once, then cursor reads).
//
// Invariant: 0 <= cursor <= length <= capacity. The backing array is
// allocated once at construction and never grows.
type Frame struct {
	buf    []byte
	length int
	cursor int
}

// NewFrame allocates a frame with the given capacity. Capacities of
// zero or less are treated as a request for a zero-capacity frame,
// which rejects all writes.
func NewFrame(capacity int) *Frame {
	if capacity < 0 {
		capacity = 0
	}
	return &Frame{buf: make([]byte, capacity)}
}

// Cap returns the fixed capacity of the frame.
func (f *Frame) Cap() int {
	return len(f.buf)
}

// Len returns the number of payload bytes currently held.
func (f *Frame) Len() int {
	return f.length
}

// Available returns the number of unread bytes: length minus cursor.
func (f *Frame) Available() int {
	return f.length - f.cursor
}

// Reset discards the payload and rewinds the cursor.
func (f *Frame) Reset() {
	f.length = 0
	f.cursor = 0
}

// Append copies p into the frame after the current payload and returns
// the number of bytes actually stored. Bytes beyond capacity are
// dropped; the return value reflects only what was kept.
func (f *Frame) Append(p []byte) int {
	room := len(f.buf) - f.length
	if room <= 0 {
		return 0
	}
	n := copy(f.buf[f.length:], p)
	f.length += n
	return n
}

// AppendByte stores a single byte, returning 1 on success and 0 when
// the frame is full.
func (f *Frame) AppendByte(b byte) int {
	if f.length >= len(f.buf) {
		return 0
	}
	f.buf[f.length] = b
	f.length++
	return 1
}

// Load replaces the payload with p and rewinds the cursor, returning
// the number of bytes stored. Input longer than the capacity is
// truncated.
func (f *Frame) Load(p []byte) int {
	f.cursor = 0
	f.length = copy(f.buf, p)
	return f.length
}

// ReadByte returns the byte at the cursor and advances it. The second
// return value is false when no unread bytes remain.
func (f *Frame) ReadByte() (byte, bool) {
	if f.cursor >= f.length {
		return 0, false
	}
	b := f.buf[f.cursor]
	f.cursor++
	return b, true
}

// Peek returns the byte at the cursor without advancing it. The second
// return value is false when no unread bytes remain.
func (f *Frame) Peek() (byte, bool) {
	if f.cursor >= f.length {
		return 0, false
	}
	return f.buf[f.cursor], true
}

// Read copies up to len(p) unread bytes into p, advances the cursor by
// the amount copied, and returns that count. It never reads past the
// payload length.
func (f *Frame) Read(p []byte) int {
	n := copy(p, f.buf[f.cursor:f.length])
	f.cursor += n
	return n
}

// Skip discards remaining unread bytes by moving the cursor to the
// payload length.
func (f *Frame) Skip() {
	f.cursor = f.length
}

// Bytes returns the full payload as a slice of the internal buffer.
// The slice is only valid until the next Reset, Append, or Load.
func (f *Frame) Bytes() []byte {
	return f.buf[:f.length]
}
