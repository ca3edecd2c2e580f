// Package mrc provides a pure Go decoder for MRC files, the binary container
// format used in cryo-electron microscopy for 3D volumes, 2D images, and
// image/volume stacks.
//
// A file consists of a fixed header, an optional extended header, and a raw
// uncompressed pixel block whose element type and dimensions the header
// declares. Decoding is performed either one section (Z-slice) at a time,
// bounding peak memory for large volumes, or by random access to a single
// section. All allocations are checked against configurable Limits before
// they happen, so corrupt or adversarial size fields cannot force unbounded
// allocation.
//
// A Decoder instance is not safe for unsynchronized concurrent use.
package mrc

import (
	"fmt"
	"io"
	"os"

	"github.com/robert-malhotra/go-mrc/internal/stream"
)

// decodeState tracks the section decoding state machine.
type decodeState int

const (
	stateNotStarted decodeState = iota
	stateDecoding
	stateDone
	stateFailed
)

// sectionCursor tracks sequential decoding progress: the next section index,
// the total section count, and the absolute byte offset of the next section.
type sectionCursor struct {
	next   int
	total  int
	offset int64
}

// Decoder reads MRC data from a seekable byte source. Construction parses
// and validates the full header; a Decoder is never partially initialized.
type Decoder struct {
	r      *stream.Reader
	closer io.Closer
	closed bool

	header    *Header
	format    PixelFormat
	limits    Limits
	dataStart int64

	sectionElems int   // elements per section (nx * ny * multiplicity)
	sectionBytes int64 // bytes per section, constant once the mode is resolved

	state   decodeState
	cursor  sectionCursor
	failure error
	scratch []byte
}

// NewDecoder constructs a decoder over src. It fails with a FormatError,
// UnsupportedError, I/O error, or ErrLimitsExceeded if the header cannot be
// parsed, the mode cannot be resolved, or a single section would already
// exceed the decoding-buffer ceiling.
func NewDecoder(src io.ReaderAt, opts ...Option) (*Decoder, error) {
	o := defaultDecoderOptions()
	for _, opt := range opts {
		opt(o)
	}

	hdr, dataStart, err := parseHeader(src, o.limits)
	if err != nil {
		return nil, err
	}

	format, err := ResolveMode(hdr.Mode)
	if err != nil {
		return nil, err
	}

	elems, ok := mulUint64(uint64(hdr.NX), uint64(hdr.NY))
	if ok {
		elems, ok = mulUint64(elems, uint64(format.Multiplicity))
	}
	if !ok {
		return nil, ErrLimitsExceeded
	}
	if err := o.limits.checkBuffer(elems, format.ElementBytes()); err != nil {
		return nil, err
	}

	return &Decoder{
		r:            stream.NewReader(src, hdr.ByteOrder),
		header:       hdr,
		format:       format,
		limits:       o.limits,
		dataStart:    dataStart,
		sectionElems: int(elems),
		sectionBytes: int64(elems) * int64(format.ElementBytes()),
	}, nil
}

// Open opens the MRC file at path. The returned decoder owns the file
// handle; release it with Close.
func Open(path string, opts ...Option) (*Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	d, err := NewDecoder(f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	d.closer = f
	return d, nil
}

// Close releases the underlying file handle, if the decoder owns one.
// Subsequent decode calls return ErrClosed.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

// Header returns the parsed header. The header is immutable; callers must
// not modify it.
func (d *Decoder) Header() *Header {
	return d.header
}

// Dimensions returns the resolved data dimensions (columns, rows, sections).
func (d *Decoder) Dimensions() (nx, ny, nz int) {
	return d.header.Dimensions()
}

// PixelFormat returns the pixel format resolved from the header's mode.
func (d *Decoder) PixelFormat() PixelFormat {
	return d.format
}

// NumSections returns the total section count (nz).
func (d *Decoder) NumSections() int {
	return int(d.header.NZ)
}

// Limits returns the decoding limits in effect.
func (d *Decoder) Limits() Limits {
	return d.limits
}

// DecodeNextSection decodes the next section in ascending order and returns
// it as a caller-owned buffer of nx*ny*multiplicity elements. After the last
// section it returns ErrEndOfVolume. Once a decode fails, the identical
// failure is returned on every subsequent call and the stream is never read
// again.
func (d *Decoder) DecodeNextSection() (*DecodingBuffer, error) {
	if d.closed {
		return nil, ErrClosed
	}
	switch d.state {
	case stateFailed:
		return nil, d.failure
	case stateDone:
		return nil, ErrEndOfVolume
	case stateNotStarted:
		d.cursor = sectionCursor{total: int(d.header.NZ), offset: d.dataStart}
		d.state = stateDecoding
		if d.cursor.total == 0 {
			d.state = stateDone
			return newDecodingBuffer(d.format, 0), nil
		}
	}

	buf, err := d.decodeAt(d.cursor.offset, d.sectionElems)
	if err != nil {
		d.fail(fmt.Errorf("decoding section %d: %w", d.cursor.next, err))
		return nil, d.failure
	}

	d.cursor.next++
	d.cursor.offset += d.sectionBytes
	if d.cursor.next == d.cursor.total {
		d.state = stateDone
	}
	return buf, nil
}

// DecodeSection decodes the section at the given index via an independent
// seek and read. It does not consult or advance the sequential cursor, but
// it shares the underlying stream with sequential decoding, so a decoder
// instance must not be used concurrently.
func (d *Decoder) DecodeSection(index int) (*DecodingBuffer, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if d.state == stateFailed {
		return nil, d.failure
	}
	if index < 0 || index >= int(d.header.NZ) {
		return nil, fmt.Errorf("mrc: section index %d out of range [0, %d)", index, d.header.NZ)
	}

	offset := d.dataStart + int64(index)*d.sectionBytes
	buf, err := d.decodeAt(offset, d.sectionElems)
	if err != nil {
		d.fail(fmt.Errorf("decoding section %d: %w", index, err))
		return nil, d.failure
	}
	return buf, nil
}

// DecodeAll decodes the entire pixel block into a single buffer of
// nx*ny*nz*multiplicity elements, subject to the decoding-buffer ceiling.
func (d *Decoder) DecodeAll() (*DecodingBuffer, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if d.state == stateFailed {
		return nil, d.failure
	}

	elems, ok := mulUint64(uint64(d.sectionElems), uint64(d.header.NZ))
	if !ok {
		return nil, ErrLimitsExceeded
	}
	if err := d.limits.checkBuffer(elems, d.format.ElementBytes()); err != nil {
		return nil, err
	}

	buf, err := d.decodeAt(d.dataStart, int(elems))
	if err != nil {
		d.fail(fmt.Errorf("decoding volume: %w", err))
		return nil, d.failure
	}
	return buf, nil
}

// decodeAt allocates a buffer of the given element count and fills it from
// the absolute byte offset. Limits must already have been checked.
func (d *Decoder) decodeAt(offset int64, elements int) (*DecodingBuffer, error) {
	buf := newDecodingBuffer(d.format, elements)
	if elements == 0 {
		return buf, nil
	}
	d.r.Seek(offset)
	if err := buf.fill(d.r, d.scratchBuf()); err != nil {
		return nil, err
	}
	return buf, nil
}

// fail latches the state machine into Failed; the recorded error is
// re-returned verbatim by every later decode call.
func (d *Decoder) fail(err error) {
	d.state = stateFailed
	d.failure = err
}

// scratchBuf returns the reusable intermediate read buffer, sized to one
// section but capped by the intermediate-buffer ceiling.
func (d *Decoder) scratchBuf() []byte {
	if d.scratch == nil {
		n := d.sectionBytes
		if limit := int64(d.limits.IntermediateBufferSize); n > limit {
			n = limit
		}
		if w := int64(d.format.ElementBytes()); n < w {
			n = w
		}
		d.scratch = make([]byte, n)
	}
	return d.scratch
}
