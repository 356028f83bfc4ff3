package wire

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Reader consumes fields from a frame body. The first error is sticky and
// every later read returns zero values.
type Reader struct {
	buf []byte
	off int
	err error
}

func NewReader(body []byte) *Reader {
	return &Reader{buf: body}
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.buf) {
		r.err = errors.Wrapf(ErrShortFrame, "need %d bytes at offset %d", n, r.off)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) Byte() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Bytes returns a copy of the next n bytes.
func (r *Reader) Bytes(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

func (r *Reader) BCD(n int) uint64 {
	b := r.take(n)
	if b == nil {
		return 0
	}
	v, err := DecodeBCD(b)
	if err != nil {
		r.err = err
		return 0
	}
	return v
}

func (r *Reader) Uint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) Uint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// Remaining reports how many unread bytes are left.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

func (r *Reader) Err() error {
	return r.err
}

// Writer appends fields to a frame body.
type Writer struct {
	buf []byte
	err error
}

func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

func (w *Writer) Byte(b byte) {
	w.buf = append(w.buf, b)
}

func (w *Writer) Bytes(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *Writer) BCD(v uint64, n int) {
	b, err := EncodeBCD(v, n)
	if err != nil {
		if w.err == nil {
			w.err = errors.Wrapf(err, "bcd value %d in %d bytes", v, n)
		}
		b = make([]byte, n)
	}
	w.buf = append(w.buf, b...)
}

func (w *Writer) Uint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *Writer) Uint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) Body() []byte {
	return w.buf
}

func (w *Writer) Err() error {
	return w.err
}
