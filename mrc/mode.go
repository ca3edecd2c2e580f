package mrc

import "fmt"

// ElementKind identifies the in-memory element type of decoded pixel data.
type ElementKind int

const (
	Int8 ElementKind = iota
	Int16
	Int32
	Uint8
	Uint16
	Float32
	Float64
)

// ByteWidth returns the size of one element in bytes.
func (k ElementKind) ByteWidth() int {
	switch k {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

func (k ElementKind) String() string {
	switch k {
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("ElementKind(%d)", int(k))
	}
}

// Mode codes defined by the MRC/MRC2014 convention plus vendor extensions
// in practical use.
const (
	ModeInt8           int32 = 0  // signed 8-bit integer
	ModeInt16          int32 = 1  // signed 16-bit integer
	ModeFloat32        int32 = 2  // IEEE 32-bit float
	ModeComplexInt16   int32 = 3  // complex: pair of signed 16-bit integers
	ModeComplexFloat32 int32 = 4  // complex: pair of 32-bit floats
	ModeUint16         int32 = 6  // unsigned 16-bit integer (UCSF tomography)
	ModeInt32          int32 = 7  // signed 32-bit integer (IMOD)
	ModeRGB            int32 = 16 // RGB: three unsigned bytes (IMOD)
)

// PixelFormat describes the on-disk element layout selected by a header's
// mode field: element type, width, and how many elements make up one pixel
// (1 for scalar modes, 2 for complex modes, 3 for RGB). Vendor records the
// provenance of non-core codes; it is an annotation, not a wire value.
type PixelFormat struct {
	Mode         int32
	Kind         ElementKind
	Multiplicity int
	Vendor       string
}

// ElementBytes returns the byte width of one scalar element.
func (f PixelFormat) ElementBytes() int {
	return f.Kind.ByteWidth()
}

// PixelBytes returns the byte width of one full pixel (all elements).
func (f PixelFormat) PixelBytes() int {
	return f.Kind.ByteWidth() * f.Multiplicity
}

// IsComplex reports whether the mode stores complex-valued pixels.
func (f PixelFormat) IsComplex() bool {
	return f.Mode == ModeComplexInt16 || f.Mode == ModeComplexFloat32
}

func (f PixelFormat) String() string {
	s := fmt.Sprintf("mode %d (%s", f.Mode, f.Kind)
	if f.Multiplicity > 1 {
		s += fmt.Sprintf(" x%d", f.Multiplicity)
	}
	s += ")"
	if f.Vendor != "" {
		s += " [" + f.Vendor + "]"
	}
	return s
}

var modeTable = map[int32]PixelFormat{
	ModeInt8:           {Mode: ModeInt8, Kind: Int8, Multiplicity: 1},
	ModeInt16:          {Mode: ModeInt16, Kind: Int16, Multiplicity: 1},
	ModeFloat32:        {Mode: ModeFloat32, Kind: Float32, Multiplicity: 1},
	ModeComplexInt16:   {Mode: ModeComplexInt16, Kind: Int16, Multiplicity: 2},
	ModeComplexFloat32: {Mode: ModeComplexFloat32, Kind: Float32, Multiplicity: 2},
	ModeUint16:         {Mode: ModeUint16, Kind: Uint16, Multiplicity: 1, Vendor: "UCSF tomography"},
	ModeInt32:          {Mode: ModeInt32, Kind: Int32, Multiplicity: 1, Vendor: "IMOD"},
	ModeRGB:            {Mode: ModeRGB, Kind: Uint8, Multiplicity: 3, Vendor: "IMOD"},
}

// ResolveMode maps a header's mode code to its pixel format. An unrecognized
// code is an UnsupportedError, never a FormatError: the code itself is
// syntactically valid, just not implemented.
func ResolveMode(code int32) (PixelFormat, error) {
	f, ok := modeTable[code]
	if !ok {
		return PixelFormat{}, &UnsupportedError{Feature: fmt.Sprintf("mode %d", code)}
	}
	return f, nil
}
