package spdm

import "encoding/binary"

// Writer binds to a caller-owned byte slice and a cursor. Every write
// either advances the cursor or fails with ErrInsufficientSpace. A
// failing single-field write leaves the cursor unchanged; WriteHeader
// and WriteVarBytes may already have written their leading fields when
// they fail.
type Writer struct {
	buf []byte
	pos int
}

// NewWriter binds a Writer to buf. buf is borrowed for the lifetime of
// the Writer; the Writer never allocates.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.pos }

// Remaining returns the number of bytes still available in the backing
// buffer.
func (w *Writer) Remaining() int { return len(w.buf) - w.pos }

// Bytes returns the sub-slice of the backing buffer written so far.
func (w *Writer) Bytes() []byte { return w.buf[:w.pos] }

func (w *Writer) reserve(n int) ([]byte, error) {
	if w.Remaining() < n {
		return nil, ErrInsufficientSpace
	}
	b := w.buf[w.pos : w.pos+n]
	w.pos += n
	return b, nil
}

// WriteUint8 writes a single byte.
func (w *Writer) WriteUint8(v uint8) error {
	b, err := w.reserve(1)
	if err != nil {
		return err
	}
	b[0] = v
	return nil
}

// WriteUint16 writes v little-endian.
func (w *Writer) WriteUint16(v uint16) error {
	b, err := w.reserve(2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b, v)
	return nil
}

// WriteUint32 writes v little-endian.
func (w *Writer) WriteUint32(v uint32) error {
	b, err := w.reserve(4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, v)
	return nil
}

// WriteReserved writes n zero bytes.
func (w *Writer) WriteReserved(n int) error {
	b, err := w.reserve(n)
	if err != nil {
		return err
	}
	for i := range b {
		b[i] = 0
	}
	return nil
}

// WriteBytes writes p verbatim with no length prefix.
func (w *Writer) WriteBytes(p []byte) error {
	b, err := w.reserve(len(p))
	if err != nil {
		return err
	}
	copy(b, p)
	return nil
}

// WriteVarBytes writes a two-byte little-endian length prefix followed
// by p. Used for signatures, opaque data, measurement values and
// measurement summaries; certificate chunks (whose length travels in
// PortionLength) and fixed-size digests are written with WriteBytes.
func (w *Writer) WriteVarBytes(p []byte) error {
	if len(p) > 0xFFFF {
		return ErrInsufficientSpace
	}
	if err := w.WriteUint16(uint16(len(p))); err != nil {
		return err
	}
	return w.WriteBytes(p)
}

// WriteHeader writes the shared four-byte message header: SPDMVersion,
// RequestResponseCode, Param1, Param2.
func (w *Writer) WriteHeader(v ProtocolVersion, code MessageCode, param1, param2 uint8) error {
	if err := w.WriteUint8(v.byte()); err != nil {
		return err
	}
	if err := w.WriteUint8(uint8(code)); err != nil {
		return err
	}
	if err := w.WriteUint8(param1); err != nil {
		return err
	}
	return w.WriteUint8(param2)
}

// Reader is the dual of Writer: it binds to an input slice and exposes
// typed, bounds-checked reads. Every read either advances the cursor or
// fails with ErrTruncated/ErrUnexpectedValue/ErrInvalidEncoding. A
// truncated single-field read leaves the cursor unchanged; SkipReserved
// and ReadVarBytes may already have consumed bytes when they fail.
type Reader struct {
	buf []byte
	pos int
}

// NewReader binds a Reader to buf. The returned byte slices from
// ReadBytes/ReadVarBytes are sub-slices of buf, not copies: the caller
// that owns buf continues to own the memory.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the number of bytes consumed so far.
func (r *Reader) Len() int { return r.pos }

// Remaining returns the number of unconsumed bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) take(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, ErrTruncated
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadUint8 reads a single byte.
func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads a little-endian uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadUint32 reads a little-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// SkipReserved consumes n bytes and requires them to be zero.
func (r *Reader) SkipReserved(n int) error {
	b, err := r.take(n)
	if err != nil {
		return err
	}
	for _, c := range b {
		if c != 0 {
			return ErrUnexpectedValue
		}
	}
	return nil
}

// ReadBytes returns the next n bytes as a sub-slice of the Reader's
// backing buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	return r.take(n)
}

// ReadVarBytes reads a two-byte little-endian length prefix followed by
// that many bytes. maxLen bounds the accepted length (the compile-time
// buffer the caller intends to copy into); a declared length exceeding
// maxLen fails with ErrInvalidEncoding rather than attempting the read.
func (r *Reader) ReadVarBytes(maxLen int) ([]byte, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	if int(n) > maxLen {
		return nil, ErrInvalidEncoding
	}
	return r.take(int(n))
}

// ReadHeader reads the shared four-byte message header.
func (r *Reader) ReadHeader() (v ProtocolVersion, code MessageCode, param1, param2 uint8, err error) {
	vb, err := r.ReadUint8()
	if err != nil {
		return ProtocolVersion{}, 0, 0, 0, err
	}
	cb, err := r.ReadUint8()
	if err != nil {
		return ProtocolVersion{}, 0, 0, 0, err
	}
	p1, err := r.ReadUint8()
	if err != nil {
		return ProtocolVersion{}, 0, 0, 0, err
	}
	p2, err := r.ReadUint8()
	if err != nil {
		return ProtocolVersion{}, 0, 0, 0, err
	}
	return versionFromByte(vb), MessageCode(cb), p1, p2, nil
}

// PeekCode reports the RequestResponseCode byte of buf without
// consuming anything, for dispatchers that must route to the correct
// message type before calling Decode. It fails with ErrTruncated if buf
// is shorter than the shared header.
func PeekCode(buf []byte) (MessageCode, error) {
	if len(buf) < 4 {
		return 0, ErrTruncated
	}
	return MessageCode(buf[1]), nil
}

// Message is the contract every SPDM request/response type satisfies:
// Code identifies it, Encode writes header-plus-body into a Writer and
// returns the number of bytes written, and Decode reads the body after
// the caller has peeked and consumed the shared header.
type Message interface {
	Code() MessageCode
	Encode(v ProtocolVersion, w *Writer) (int, error)
	Decode(v ProtocolVersion, param1, param2 uint8, r *Reader) error
}

// EncodeMessage is a convenience wrapper: it calls m.Encode and returns
// the written sub-slice of buf, the form every façade-level API returns.
func EncodeMessage(m Message, v ProtocolVersion, buf []byte) ([]byte, error) {
	w := NewWriter(buf)
	n, err := m.Encode(v, w)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}
