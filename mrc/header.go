package mrc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/robert-malhotra/go-mrc/internal/stream"
)

// Fixed layout constants of the MRC container.
const (
	// FixedHeaderSize is the size in bytes of the fixed header block.
	FixedHeaderSize = 224

	// LabelSize is the size in bytes of one text label record.
	LabelSize = 80

	// MaxLabels is the maximum number of label records a file may carry.
	MaxLabels = 10
)

// Byte offsets within the fixed header.
const (
	magicOffset = 208
	stampOffset = 212
)

// magic is the 4-byte file-type identifier every MRC file carries.
var magic = [4]byte{'M', 'A', 'P', ' '}

// Machine stamp patterns. The first two stamp bytes encode the byte order
// used to write every other multi-byte header field; the trailing two bytes
// are unused in practice.
const (
	stampLittleEndian = 0x44
	stampBigEndian    = 0x11
)

// ExtType identifies the kind of metadata held in the extended header.
type ExtType string

// Extended-header type tags agreed in the MRC2014 convention.
const (
	ExtCCP4 ExtType = "CCP4" // CCP4 suite format
	ExtMRCO ExtType = "MRCO" // MRC format
	ExtSERI ExtType = "SERI" // SerialEM
	ExtAGAR ExtType = "AGAR" // Agard
	ExtFEI1 ExtType = "FEI1" // FEI software (EPU, Xplore3D, Amira, Avizo)
	ExtFEI2 ExtType = "FEI2" // FEI software, extended layout
	ExtHDF5 ExtType = "HDF5" // metadata in HDF5 format
)

var knownExtTypes = map[ExtType]bool{
	ExtCCP4: true,
	ExtMRCO: true,
	ExtSERI: true,
	ExtAGAR: true,
	ExtFEI1: true,
	ExtFEI2: true,
	ExtHDF5: true,
}

// Header is the parsed and validated MRC header. It is immutable after
// construction: the parser either produces a fully valid Header or none
// at all.
type Header struct {
	// NX, NY, NZ are the dimensions of the data array in grid points:
	// columns (fast axis), rows (medium axis), sections (slow axis).
	NX, NY, NZ int32

	// Mode selects the on-disk pixel encoding. Always present after a
	// successful parse.
	Mode int32

	// NXStart, NYStart, NZStart locate the first column/row/section in
	// the map.
	NXStart, NYStart, NZStart int32

	// MX, MY, MZ are the unit-cell sampling intervals. Fields the file
	// leaves unset default to NX, NY, NZ respectively.
	MX, MY, MZ int32

	// XLen, YLen, ZLen are the unit-cell lengths in angstroms.
	XLen, YLen, ZLen float32

	// Alpha, Beta, Gamma are the unit-cell angles in degrees.
	Alpha, Beta, Gamma float32

	// MapC, MapR, MapS declare which of X/Y/Z (1/2/3) correspond to
	// columns, rows, and sections.
	MapC, MapR, MapS int32

	// AMin, AMax, AMean are the density statistics. See the *Determined
	// predicates before trusting them.
	AMin, AMax, AMean float32

	// ISpg is the space-group code: 0 for a 2D image or image stack, the
	// actual space group (1 for EM) for a single volume, and space group
	// + 400 for a volume stack.
	ISpg int32

	// NSymBT is the extended-header length in bytes.
	NSymBT int32

	// ExtType identifies the extended-header metadata kind when the tag
	// is recognized; empty otherwise.
	ExtType ExtType

	// NVersion is the MRC format version (year*10 + revision), valid only
	// when ExtType is recognized.
	NVersion int32

	// OriginX, OriginY, OriginZ locate the map origin. For transform modes
	// this is the phase origin of the transformed image in pixels.
	OriginX, OriginY, OriginZ float32

	// RMS is the map's rms deviation from the mean density.
	RMS float32

	// ByteOrder is the byte order decoded from the machine stamp.
	ByteOrder binary.ByteOrder

	// Labels holds the file's text labels with trailing padding stripped.
	Labels []string

	// Extended holds the raw extended-header bytes. Vendor sub-schemas are
	// opaque to this implementation.
	Extended []byte
}

// headerStage accumulates fields during parsing. Fields with documented
// defaults are filled in finalize; validation happens before a Header is
// produced, never after.
type headerStage struct {
	Header
}

// parseHeader reads and validates the header region of an MRC stream,
// returning the frozen Header and the absolute offset of the pixel data
// block. The byte order is discovered from the machine stamp before any
// multi-byte field is interpreted; the fixed block is then re-read with
// the discovered order (two-pass strategy).
func parseHeader(src io.ReaderAt, limits Limits) (*Header, int64, error) {
	raw := make([]byte, FixedHeaderSize)
	if n, err := src.ReadAt(raw, 0); n < len(raw) {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, 0, fmt.Errorf("reading fixed header: %w", err)
	}

	if !bytes.Equal(raw[magicOffset:magicOffset+4], magic[:]) {
		return nil, 0, formatErrorf("magic %q at offset %d, want %q",
			raw[magicOffset:magicOffset+4], magicOffset, magic)
	}

	order, err := decodeMachineStamp(raw[stampOffset : stampOffset+4])
	if err != nil {
		return nil, 0, err
	}

	st := &headerStage{}
	st.ByteOrder = order
	if err := st.parseFixed(raw, order); err != nil {
		return nil, 0, err
	}
	if err := st.validate(); err != nil {
		return nil, 0, err
	}

	// Label records follow the fixed block, the extended header follows
	// the labels, and the pixel data follows the extended header.
	r := stream.NewReader(src, order).At(FixedHeaderSize)
	if err := st.readLabels(r); err != nil {
		return nil, 0, err
	}
	if err := st.readExtended(r, limits); err != nil {
		return nil, 0, err
	}

	hdr := st.finalize()
	return hdr, r.Pos(), nil
}

// decodeMachineStamp maps the stamp bytes to a byte order. Only the two
// patterns in practical use are recognized; anything else leaves the rest
// of the header uninterpretable.
func decodeMachineStamp(stamp []byte) (binary.ByteOrder, error) {
	switch {
	case stamp[0] == stampLittleEndian && stamp[1] == stampLittleEndian:
		return binary.LittleEndian, nil
	case stamp[0] == stampBigEndian && stamp[1] == stampBigEndian:
		return binary.BigEndian, nil
	default:
		return nil, formatErrorf("unrecognized machine stamp % x", stamp)
	}
}

// parseFixed interprets the raw fixed-header block with the discovered
// byte order, consuming fields in their defined offset order.
func (st *headerStage) parseFixed(raw []byte, order binary.ByteOrder) error {
	r := stream.NewReader(bytes.NewReader(raw), order)

	ints := []*int32{
		&st.NX, &st.NY, &st.NZ, &st.Mode,
		&st.NXStart, &st.NYStart, &st.NZStart,
		&st.MX, &st.MY, &st.MZ,
	}
	for _, p := range ints {
		v, err := r.ReadInt32()
		if err != nil {
			return fmt.Errorf("reading header field: %w", err)
		}
		*p = v
	}

	floats := []*float32{
		&st.XLen, &st.YLen, &st.ZLen,
		&st.Alpha, &st.Beta, &st.Gamma,
	}
	for _, p := range floats {
		v, err := r.ReadFloat32()
		if err != nil {
			return fmt.Errorf("reading header field: %w", err)
		}
		*p = v
	}

	for _, p := range []*int32{&st.MapC, &st.MapR, &st.MapS} {
		v, err := r.ReadInt32()
		if err != nil {
			return fmt.Errorf("reading header field: %w", err)
		}
		*p = v
	}

	for _, p := range []*float32{&st.AMin, &st.AMax, &st.AMean} {
		v, err := r.ReadFloat32()
		if err != nil {
			return fmt.Errorf("reading header field: %w", err)
		}
		*p = v
	}

	var err error
	if st.ISpg, err = r.ReadInt32(); err != nil {
		return fmt.Errorf("reading ispg: %w", err)
	}
	if st.NSymBT, err = r.ReadInt32(); err != nil {
		return fmt.Errorf("reading nsymbt: %w", err)
	}

	// The extended-header descriptor lives inside the extra region:
	// EXTTYP at bytes 104-107, NVERSION at 108-111.
	r.Seek(104)
	tag, err := r.ReadBytes(4)
	if err != nil {
		return fmt.Errorf("reading exttyp: %w", err)
	}
	nversion, err := r.ReadInt32()
	if err != nil {
		return fmt.Errorf("reading nversion: %w", err)
	}
	if t := ExtType(tag); knownExtTypes[t] {
		st.ExtType = t
		st.NVersion = nversion
	}

	r.Seek(196)
	for _, p := range []*float32{&st.OriginX, &st.OriginY, &st.OriginZ} {
		v, err := r.ReadFloat32()
		if err != nil {
			return fmt.Errorf("reading origin: %w", err)
		}
		*p = v
	}

	r.Seek(216)
	if st.RMS, err = r.ReadFloat32(); err != nil {
		return fmt.Errorf("reading rms: %w", err)
	}

	nlabl, err := r.ReadInt32()
	if err != nil {
		return fmt.Errorf("reading nlabl: %w", err)
	}
	if nlabl < 0 || nlabl > MaxLabels {
		return formatErrorf("nlabl %d outside [0, %d]", nlabl, MaxLabels)
	}
	st.Labels = make([]string, nlabl)
	return nil
}

func (st *headerStage) validate() error {
	if st.NX < 0 || st.NY < 0 || st.NZ < 0 {
		return formatErrorf("negative dimensions %d x %d x %d", st.NX, st.NY, st.NZ)
	}
	if st.NSymBT < 0 {
		return formatErrorf("negative extended-header length %d", st.NSymBT)
	}
	return nil
}

// readLabels reads the label records reserved by nlabl, stripping trailing
// NUL and space padding.
func (st *headerStage) readLabels(r *stream.Reader) error {
	for i := range st.Labels {
		rec, err := r.ReadBytes(LabelSize)
		if err != nil {
			return fmt.Errorf("reading label %d: %w", i, err)
		}
		st.Labels[i] = strings.TrimRight(string(rec), "\x00 ")
	}
	return nil
}

// readExtended reads the nsymbt-byte extended-header region as an opaque
// blob, guarded by the metadata ceiling before allocation.
func (st *headerStage) readExtended(r *stream.Reader, limits Limits) error {
	if st.NSymBT == 0 {
		return nil
	}
	if err := limits.checkMetadata(int64(st.NSymBT)); err != nil {
		return err
	}
	blob, err := r.ReadBytes(int(st.NSymBT))
	if err != nil {
		return fmt.Errorf("reading extended header: %w", err)
	}
	st.Extended = blob
	return nil
}

// finalize applies documented defaults and freezes the staged header.
func (st *headerStage) finalize() *Header {
	if st.MX <= 0 {
		st.MX = st.NX
	}
	if st.MY <= 0 {
		st.MY = st.NY
	}
	if st.MZ <= 0 {
		st.MZ = st.NZ
	}
	h := st.Header
	return &h
}

// Dimensions returns the data-array dimensions (columns, rows, sections).
func (h *Header) Dimensions() (nx, ny, nz int) {
	return int(h.NX), int(h.NY), int(h.NZ)
}

// VoxelSize returns the sampling step along each axis in angstroms,
// derived from the unit-cell lengths and intervals. Axes with no sampling
// information yield 0.
func (h *Header) VoxelSize() (x, y, z float64) {
	if h.MX > 0 {
		x = float64(h.XLen) / float64(h.MX)
	}
	if h.MY > 0 {
		y = float64(h.YLen) / float64(h.MY)
	}
	if h.MZ > 0 {
		z = float64(h.ZLen) / float64(h.MZ)
	}
	return x, y, z
}

// IsImage reports whether the file holds a 2D image or image stack
// (space group 0).
func (h *Header) IsImage() bool {
	return h.ISpg == 0
}

// IsVolume reports whether the file holds a single volume.
func (h *Header) IsVolume() bool {
	return h.ISpg >= 1 && h.ISpg <= 400
}

// IsVolumeStack reports whether the file holds a stack of volumes
// (space group + 400 convention).
func (h *Header) IsVolumeStack() bool {
	return h.ISpg >= 401
}

// DensityRangeDetermined reports whether amin/amax are well determined.
// Writers signal a stale range with amax < amin; this is informational,
// not an error.
func (h *Header) DensityRangeDetermined() bool {
	return h.AMax >= h.AMin
}

// MeanDetermined reports whether amean is well determined.
func (h *Header) MeanDetermined() bool {
	return h.AMean >= min(h.AMin, h.AMax)
}

// RMSDetermined reports whether rms is well determined.
func (h *Header) RMSDetermined() bool {
	return h.RMS >= 0
}
