package encoding

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

var (
	ErrShortBuffer = errors.New("buffer too short")
	ErrMalformed   = errors.New("malformed value")
)

// Writer appends little-endian 4- and 8-byte fields to a growing buffer.
// Real quantities are narrowed to float32, booleans are the floats 1 and 0.
type Writer struct {
	buf []byte
}

func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

func (w *Writer) Float32(v float64) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(float32(v)))
}

func (w *Writer) Bool(v bool) {
	if v {
		w.Float32(1)
	} else {
		w.Float32(0)
	}
}

func (w *Writer) Uint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) Int32(v int32) {
	w.Uint32(uint32(v))
}

func (w *Writer) Uint64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// Raw appends b unchanged.
func (w *Writer) Raw(b []byte) {
	w.buf = append(w.buf, b...)
}

// Bytes returns the written data. It aliases the internal buffer until the
// next write or Reset.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) Len() int { return len(w.buf) }

// Reset empties the writer and keeps its capacity.
func (w *Writer) Reset() { w.buf = w.buf[:0] }

// Reader consumes fields written by Writer. The first failure is sticky:
// later reads return zero values and Err reports it.
type Reader struct {
	data []byte
	off  int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.data)-r.off < n {
		r.err = errors.Wrapf(ErrShortBuffer, "need %d bytes at offset %d, have %d", n, r.off, len(r.data)-r.off)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) Float32() float64 {
	b := r.next(4)
	if b == nil {
		return 0
	}
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}

// Bool accepts only the floats 1 and 0.
func (r *Reader) Bool() bool {
	v := r.Float32()
	switch v {
	case 1:
		return true
	case 0:
		return false
	default:
		r.fail(errors.Wrapf(ErrMalformed, "bool field holds %v", v))
		return false
	}
}

func (r *Reader) Uint32() uint32 {
	b := r.next(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) Int32() int32 {
	return int32(r.Uint32())
}

func (r *Reader) Uint64() uint64 {
	b := r.next(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// Count reads a uint32 element count and rejects counts that cannot fit in
// the remaining bytes at minSize bytes per element.
func (r *Reader) Count(minSize int) int {
	n := int(r.Uint32())
	if r.err == nil && minSize > 0 && n > r.Remaining()/minSize {
		r.fail(errors.Wrapf(ErrMalformed, "count %d exceeds remaining %d bytes", n, r.Remaining()))
		return 0
	}
	return n
}

func (r *Reader) Remaining() int { return len(r.data) - r.off }

func (r *Reader) Offset() int { return r.off }

func (r *Reader) Err() error { return r.err }

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}
