// Package wire implements the binary protocol exchanged between the
// simulation core and connected clients: a fixed-width framing header
// wrapping a discriminated message body, every multi-byte field little
// endian, every variable-length field (strings, vectors) prefixed with
// its element/byte count as a u64. Floats cross the wire as IEEE-754
// single precision; the simulation itself stays in float64 and converts
// at the boundary.
package wire

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/google/uuid"
)

// ErrShortBuffer is returned by any Read* call that runs past the end
// of the underlying buffer.
var ErrShortBuffer = errors.New("wire: short buffer")

// LengthPrefixSize is the size, in bytes, of the outer frame's length
// prefix ahead of every message body.
const LengthPrefixSize = 4

// Writer serializes primitive wire values into a growable byte buffer.
// The zero value is not usable; use NewWriter.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with capacity preallocated for a
// typically-sized message.
func NewWriter(capHint int) *Writer {
	return &Writer{buf: make([]byte, 0, capHint)}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Reset clears the buffer for reuse without releasing its capacity.
func (w *Writer) Reset() { w.buf = w.buf[:0] }

func (w *Writer) WriteU8(v uint8) { w.buf = append(w.buf, v) }

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteU8(1)
	} else {
		w.WriteU8(0)
	}
}

func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) WriteF32(v float64) {
	w.WriteU32(math.Float32bits(float32(v)))
}

// WriteString writes a u64 byte-length prefix followed by the raw
// UTF-8 bytes.
func (w *Writer) WriteString(s string) {
	w.WriteU64(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteBytes writes a u64 byte-length prefix followed by raw bytes,
// used for the UUID wire representation.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteU64(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteUUID writes a 128-bit id as a length-prefixed 16-byte vector.
func (w *Writer) WriteUUID(id uuid.UUID) {
	w.WriteBytes(id[:])
}

// Reader deserializes primitive wire values from a fixed byte slice,
// advancing an internal cursor. Every method returns ErrShortBuffer
// instead of panicking if the buffer is exhausted.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential reading.
func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

// Remaining reports how many bytes are left unread.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, ErrShortBuffer
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadU8()
	return v != 0, err
}

func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) ReadF32() (float64, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return float64(math.Float32frombits(v)), nil
}

func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadU64()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	return r.take(int(n))
}

func (r *Reader) ReadUUID() (uuid.UUID, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return uuid.UUID{}, err
	}
	if len(b) != 16 {
		return uuid.UUID{}, errors.New("wire: uuid field is not 16 bytes")
	}
	var id uuid.UUID
	copy(id[:], b)
	return id, nil
}

// PutFrame prepends a u32 little-endian length prefix to body, the
// outer framing every message travels in.
func PutFrame(body []byte) []byte {
	framed := make([]byte, LengthPrefixSize+len(body))
	binary.LittleEndian.PutUint32(framed, uint32(len(body)))
	copy(framed[LengthPrefixSize:], body)
	return framed
}

// ReadFrameLength decodes the u32 length prefix at the start of buf.
func ReadFrameLength(buf []byte) (uint32, error) {
	if len(buf) < LengthPrefixSize {
		return 0, ErrShortBuffer
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// Unframe strips buf's outer length prefix and returns the body it
// declares, the inverse of PutFrame. Returns ErrShortBuffer if buf is
// too short to hold the prefix or the body it claims.
func Unframe(buf []byte) ([]byte, error) {
	n, err := ReadFrameLength(buf)
	if err != nil {
		return nil, err
	}
	end := LengthPrefixSize + int(n)
	if end > len(buf) {
		return nil, ErrShortBuffer
	}
	return buf[LengthPrefixSize:end], nil
}
