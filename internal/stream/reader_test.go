package stream

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"
)

func TestScalarReadsLittleEndian(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint16(0x1234))
	binary.Write(&buf, binary.LittleEndian, int16(-5))
	binary.Write(&buf, binary.LittleEndian, uint32(0xDEADBEEF))
	binary.Write(&buf, binary.LittleEndian, int32(-70000))
	binary.Write(&buf, binary.LittleEndian, uint64(1<<40))
	binary.Write(&buf, binary.LittleEndian, float32(1.5))
	binary.Write(&buf, binary.LittleEndian, float64(-2.25))

	r := NewReader(bytes.NewReader(buf.Bytes()), binary.LittleEndian)

	if v, err := r.ReadUint16(); err != nil || v != 0x1234 {
		t.Errorf("ReadUint16 = %v, %v", v, err)
	}
	if v, err := r.ReadInt16(); err != nil || v != -5 {
		t.Errorf("ReadInt16 = %v, %v", v, err)
	}
	if v, err := r.ReadUint32(); err != nil || v != 0xDEADBEEF {
		t.Errorf("ReadUint32 = %v, %v", v, err)
	}
	if v, err := r.ReadInt32(); err != nil || v != -70000 {
		t.Errorf("ReadInt32 = %v, %v", v, err)
	}
	if v, err := r.ReadUint64(); err != nil || v != 1<<40 {
		t.Errorf("ReadUint64 = %v, %v", v, err)
	}
	if v, err := r.ReadFloat32(); err != nil || v != 1.5 {
		t.Errorf("ReadFloat32 = %v, %v", v, err)
	}
	if v, err := r.ReadFloat64(); err != nil || v != -2.25 {
		t.Errorf("ReadFloat64 = %v, %v", v, err)
	}
	if r.Pos() != int64(buf.Len()) {
		t.Errorf("Pos = %d, want %d", r.Pos(), buf.Len())
	}
}

func TestScalarReadsBigEndian(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, int32(42))
	binary.Write(&buf, binary.BigEndian, float32(3.5))

	r := NewReader(bytes.NewReader(buf.Bytes()), binary.BigEndian)

	if v, err := r.ReadInt32(); err != nil || v != 42 {
		t.Errorf("ReadInt32 = %v, %v", v, err)
	}
	if v, err := r.ReadFloat32(); err != nil || v != 3.5 {
		t.Errorf("ReadFloat32 = %v, %v", v, err)
	}
}

func TestShortRead(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x01, 0x02}), binary.LittleEndian)
	if _, err := r.ReadUint32(); err == nil {
		t.Fatal("expected error on short read")
	}
	// Position must not advance on a failed read.
	if r.Pos() != 0 {
		t.Errorf("Pos advanced to %d after failed read", r.Pos())
	}
}

func TestAtIndependentPosition(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	r := NewReader(bytes.NewReader(data), binary.LittleEndian)

	r2 := r.At(4)
	if v, err := r2.ReadUint8(); err != nil || v != 5 {
		t.Errorf("At(4).ReadUint8 = %v, %v", v, err)
	}
	if r.Pos() != 0 {
		t.Errorf("original reader position moved to %d", r.Pos())
	}
}

func TestPeekDoesNotAdvance(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{9, 8, 7}), binary.LittleEndian)
	b, err := r.Peek(2)
	if err != nil || !bytes.Equal(b, []byte{9, 8}) {
		t.Fatalf("Peek = %v, %v", b, err)
	}
	if r.Pos() != 0 {
		t.Errorf("Peek advanced position to %d", r.Pos())
	}
}

func TestSeekSkip(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0, 1, 2, 3}), binary.LittleEndian)
	r.Seek(2)
	r.Skip(1)
	if v, err := r.ReadUint8(); err != nil || v != 3 {
		t.Errorf("after Seek+Skip ReadUint8 = %v, %v", v, err)
	}
}

func TestReadUint16IntoChunked(t *testing.T) {
	want := []uint16{1, 2, 3, 4, 5}
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, want)

	r := NewReader(bytes.NewReader(buf.Bytes()), binary.BigEndian)
	dst := make([]uint16, len(want))
	// 3-byte scratch forces one element per chunk.
	if err := r.ReadUint16Into(dst, make([]byte, 3)); err != nil {
		t.Fatalf("ReadUint16Into: %v", err)
	}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], want[i])
		}
	}
}

func TestReadFloat32Into(t *testing.T) {
	want := []float32{0.5, -1.5, 1e6}
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, want)

	r := NewReader(bytes.NewReader(buf.Bytes()), binary.LittleEndian)
	dst := make([]float32, len(want))
	if err := r.ReadFloat32Into(dst, make([]byte, 64)); err != nil {
		t.Fatalf("ReadFloat32Into: %v", err)
	}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %g, want %g", i, dst[i], want[i])
		}
	}
}

func TestReadFloat64Into(t *testing.T) {
	want := []float64{math.Pi, -0.125}
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, want)

	r := NewReader(bytes.NewReader(buf.Bytes()), binary.BigEndian)
	dst := make([]float64, len(want))
	if err := r.ReadFloat64Into(dst, make([]byte, 8)); err != nil {
		t.Fatalf("ReadFloat64Into: %v", err)
	}
	if dst[0] != math.Pi || dst[1] != -0.125 {
		t.Errorf("dst = %v, want %v", dst, want)
	}
}

func TestReadInt8Into(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xFF, 0x7F, 0x80}), binary.LittleEndian)
	dst := make([]int8, 3)
	if err := r.ReadInt8Into(dst, make([]byte, 2)); err != nil {
		t.Fatalf("ReadInt8Into: %v", err)
	}
	want := []int8{-1, 127, -128}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], want[i])
		}
	}
}

func TestBulkReadTruncated(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0, 1, 2}), binary.LittleEndian)
	dst := make([]uint16, 4)
	err := r.ReadUint16Into(dst, make([]byte, 8))
	if err == nil {
		t.Fatal("expected error on truncated bulk read")
	}
	if err != io.ErrUnexpectedEOF && err != io.EOF {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestScratchTooSmall(t *testing.T) {
	r := NewReader(bytes.NewReader(make([]byte, 16)), binary.LittleEndian)
	dst := make([]float64, 2)
	if err := r.ReadFloat64Into(dst, make([]byte, 4)); err == nil {
		t.Fatal("expected error for scratch smaller than one element")
	}
}
