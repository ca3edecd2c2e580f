package mrc

import (
	"fmt"

	"github.com/robert-malhotra/go-mrc/internal/stream"
)

// DecodingBuffer holds one decoded unit of pixel data (a section or a whole
// volume) as a typed, contiguous slice. The buffer is owned by the caller
// once returned and never aliases the decoder's header or stream state.
type DecodingBuffer struct {
	format PixelFormat
	data   any
}

// newDecodingBuffer allocates a buffer for the given element count. Callers
// must check Limits before invoking it.
func newDecodingBuffer(format PixelFormat, elements int) *DecodingBuffer {
	b := &DecodingBuffer{format: format}
	switch format.Kind {
	case Int8:
		b.data = make([]int8, elements)
	case Int16:
		b.data = make([]int16, elements)
	case Int32:
		b.data = make([]int32, elements)
	case Uint8:
		b.data = make([]uint8, elements)
	case Uint16:
		b.data = make([]uint16, elements)
	case Float32:
		b.data = make([]float32, elements)
	case Float64:
		b.data = make([]float64, elements)
	}
	return b
}

// fill reads the buffer's elements from r in one pass, converting byte
// order per element. scratch bounds the intermediate read size.
func (b *DecodingBuffer) fill(r *stream.Reader, scratch []byte) error {
	switch data := b.data.(type) {
	case []int8:
		return r.ReadInt8Into(data, scratch)
	case []int16:
		return r.ReadInt16Into(data, scratch)
	case []int32:
		return r.ReadInt32Into(data, scratch)
	case []uint8:
		return r.ReadUint8Into(data)
	case []uint16:
		return r.ReadUint16Into(data, scratch)
	case []float32:
		return r.ReadFloat32Into(data, scratch)
	case []float64:
		return r.ReadFloat64Into(data, scratch)
	default:
		return fmt.Errorf("mrc: no decoder for element kind %s", b.format.Kind)
	}
}

// PixelFormat returns the format the buffer was decoded with.
func (b *DecodingBuffer) PixelFormat() PixelFormat {
	return b.format
}

// Len returns the number of elements in the buffer. For complex and RGB
// formats this counts scalar elements, not pixels.
func (b *DecodingBuffer) Len() int {
	switch data := b.data.(type) {
	case []int8:
		return len(data)
	case []int16:
		return len(data)
	case []int32:
		return len(data)
	case []uint8:
		return len(data)
	case []uint16:
		return len(data)
	case []float32:
		return len(data)
	case []float64:
		return len(data)
	default:
		return 0
	}
}

// Data returns the underlying typed slice as one of []int8, []int16,
// []int32, []uint8, []uint16, []float32, []float64.
func (b *DecodingBuffer) Data() any {
	return b.data
}

// Int8 returns the data as []int8, or nil if the element kind differs.
func (b *DecodingBuffer) Int8() []int8 {
	v, _ := b.data.([]int8)
	return v
}

// Int16 returns the data as []int16, or nil if the element kind differs.
func (b *DecodingBuffer) Int16() []int16 {
	v, _ := b.data.([]int16)
	return v
}

// Int32 returns the data as []int32, or nil if the element kind differs.
func (b *DecodingBuffer) Int32() []int32 {
	v, _ := b.data.([]int32)
	return v
}

// Uint8 returns the data as []uint8, or nil if the element kind differs.
func (b *DecodingBuffer) Uint8() []uint8 {
	v, _ := b.data.([]uint8)
	return v
}

// Uint16 returns the data as []uint16, or nil if the element kind differs.
func (b *DecodingBuffer) Uint16() []uint16 {
	v, _ := b.data.([]uint16)
	return v
}

// Float32 returns the data as []float32, or nil if the element kind differs.
func (b *DecodingBuffer) Float32() []float32 {
	v, _ := b.data.([]float32)
	return v
}

// Float64 returns the data as []float64, or nil if the element kind differs.
func (b *DecodingBuffer) Float64() []float64 {
	v, _ := b.data.([]float64)
	return v
}
