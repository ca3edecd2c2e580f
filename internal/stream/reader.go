// Package stream provides byte-order-aware binary reading for MRC file parsing.
package stream

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Reader converts raw bytes from an underlying seekable source into
// host-ordered numeric values. The byte order is fixed at construction;
// reading with a different order requires constructing a new Reader.
type Reader struct {
	r     io.ReaderAt
	order binary.ByteOrder
	pos   int64
}

// NewReader creates a reader over r using the given byte order, positioned
// at offset 0.
func NewReader(r io.ReaderAt, order binary.ByteOrder) *Reader {
	return &Reader{r: r, order: order}
}

// At returns a new reader positioned at the given offset. The new reader
// shares the underlying source but has an independent position.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{r: r.r, order: r.order, pos: offset}
}

// Pos returns the current read position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// Seek moves the read position to an absolute offset.
func (r *Reader) Seek(offset int64) {
	r.pos = offset
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int64) {
	r.pos += n
}

// ByteOrder returns the configured byte order.
func (r *Reader) ByteOrder() binary.ByteOrder {
	return r.order
}

// ReadInto fills buf from the current position, advancing it on success.
// A short read is reported as an error.
func (r *Reader) ReadInto(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	n, err := r.r.ReadAt(buf, r.pos)
	if n < len(buf) {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	r.pos += int64(len(buf))
	return nil
}

// ReadBytes reads exactly n bytes from the current position.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if err := r.ReadInto(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Peek reads n bytes without advancing the position.
func (r *Reader) Peek(n int) ([]byte, error) {
	save := r.pos
	buf, err := r.ReadBytes(n)
	r.pos = save
	return buf, err
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	var b [1]byte
	if err := r.ReadInto(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadInt8 reads a signed 8-bit integer.
func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

// ReadUint16 reads an unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	var b [2]byte
	if err := r.ReadInto(b[:]); err != nil {
		return 0, err
	}
	return r.order.Uint16(b[:]), nil
}

// ReadInt16 reads a signed 16-bit integer.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads an unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	var b [4]byte
	if err := r.ReadInto(b[:]); err != nil {
		return 0, err
	}
	return r.order.Uint32(b[:]), nil
}

// ReadInt32 reads a signed 32-bit integer.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads an unsigned 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	var b [8]byte
	if err := r.ReadInto(b[:]); err != nil {
		return 0, err
	}
	return r.order.Uint64(b[:]), nil
}

// ReadFloat32 reads an IEEE 754 32-bit float.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64 reads an IEEE 754 64-bit float.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// Bulk readers fill a pre-sized destination slice in one pass, converting
// byte order per element. The caller supplies a scratch byte buffer that
// bounds the intermediate allocation; requests larger than the scratch are
// read in chunks. The scratch must hold at least one element.

// ReadUint8Into fills dst with unsigned bytes.
func (r *Reader) ReadUint8Into(dst []uint8) error {
	return r.ReadInto(dst)
}

// ReadInt8Into fills dst with signed bytes via scratch.
func (r *Reader) ReadInt8Into(dst []int8, scratch []byte) error {
	if err := checkScratch(len(scratch), 1); err != nil {
		return err
	}
	for len(dst) > 0 {
		n := min(len(scratch), len(dst))
		chunk := scratch[:n]
		if err := r.ReadInto(chunk); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			dst[i] = int8(chunk[i])
		}
		dst = dst[n:]
	}
	return nil
}

// ReadInt16Into fills dst with signed 16-bit integers via scratch.
func (r *Reader) ReadInt16Into(dst []int16, scratch []byte) error {
	const width = 2
	if err := checkScratch(len(scratch), width); err != nil {
		return err
	}
	per := len(scratch) / width
	for len(dst) > 0 {
		n := min(per, len(dst))
		chunk := scratch[:n*width]
		if err := r.ReadInto(chunk); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			dst[i] = int16(r.order.Uint16(chunk[i*width:]))
		}
		dst = dst[n:]
	}
	return nil
}

// ReadUint16Into fills dst with unsigned 16-bit integers via scratch.
func (r *Reader) ReadUint16Into(dst []uint16, scratch []byte) error {
	const width = 2
	if err := checkScratch(len(scratch), width); err != nil {
		return err
	}
	per := len(scratch) / width
	for len(dst) > 0 {
		n := min(per, len(dst))
		chunk := scratch[:n*width]
		if err := r.ReadInto(chunk); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			dst[i] = r.order.Uint16(chunk[i*width:])
		}
		dst = dst[n:]
	}
	return nil
}

// ReadInt32Into fills dst with signed 32-bit integers via scratch.
func (r *Reader) ReadInt32Into(dst []int32, scratch []byte) error {
	const width = 4
	if err := checkScratch(len(scratch), width); err != nil {
		return err
	}
	per := len(scratch) / width
	for len(dst) > 0 {
		n := min(per, len(dst))
		chunk := scratch[:n*width]
		if err := r.ReadInto(chunk); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			dst[i] = int32(r.order.Uint32(chunk[i*width:]))
		}
		dst = dst[n:]
	}
	return nil
}

// ReadFloat32Into fills dst with 32-bit floats via scratch.
func (r *Reader) ReadFloat32Into(dst []float32, scratch []byte) error {
	const width = 4
	if err := checkScratch(len(scratch), width); err != nil {
		return err
	}
	per := len(scratch) / width
	for len(dst) > 0 {
		n := min(per, len(dst))
		chunk := scratch[:n*width]
		if err := r.ReadInto(chunk); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			dst[i] = math.Float32frombits(r.order.Uint32(chunk[i*width:]))
		}
		dst = dst[n:]
	}
	return nil
}

// ReadFloat64Into fills dst with 64-bit floats via scratch.
func (r *Reader) ReadFloat64Into(dst []float64, scratch []byte) error {
	const width = 8
	if err := checkScratch(len(scratch), width); err != nil {
		return err
	}
	per := len(scratch) / width
	for len(dst) > 0 {
		n := min(per, len(dst))
		chunk := scratch[:n*width]
		if err := r.ReadInto(chunk); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			dst[i] = math.Float64frombits(r.order.Uint64(chunk[i*width:]))
		}
		dst = dst[n:]
	}
	return nil
}

func checkScratch(have, need int) error {
	if have < need {
		return fmt.Errorf("scratch buffer too small: %d bytes, need at least %d", have, need)
	}
	return nil
}
