package mrc

import "math/bits"

// Limits bounds the memory a decoder may allocate, protecting against
// corrupt or adversarial headers declaring arbitrarily large dimensions.
// A Limits value is consulted before every buffer allocation and never
// mutated during decoding.
type Limits struct {
	// DecodingBufferSize is the maximum size in bytes of any single decoded
	// buffer. For whole-volume decoding this bounds the volume; for
	// section-by-section decoding it bounds one section.
	DecodingBufferSize int

	// MetadataSize is the maximum size in bytes of any single metadata
	// value, such as the extended header.
	MetadataSize int

	// IntermediateBufferSize is the maximum size in bytes of the scratch
	// buffer used for byte-order conversion during bulk reads.
	IntermediateBufferSize int
}

// DefaultLimits returns the default decoding limits: 256 MiB per decoded
// buffer, 1 MiB per metadata value, 128 MiB of intermediate scratch.
func DefaultLimits() Limits {
	return Limits{
		DecodingBufferSize:     256 * 1024 * 1024,
		MetadataSize:           1024 * 1024,
		IntermediateBufferSize: 128 * 1024 * 1024,
	}
}

// checkBuffer verifies that a buffer of the given element count and width
// fits under the decoding-buffer ceiling. The multiplication is
// overflow-checked so oversized headers cannot wrap around to a false pass.
func (l Limits) checkBuffer(elements uint64, elementBytes int) error {
	total, ok := mulUint64(elements, uint64(elementBytes))
	if !ok || total > uint64(l.DecodingBufferSize) {
		return ErrLimitsExceeded
	}
	return nil
}

// checkMetadata verifies that a metadata value of n bytes fits under the
// metadata ceiling.
func (l Limits) checkMetadata(n int64) error {
	if n < 0 || n > int64(l.MetadataSize) {
		return ErrLimitsExceeded
	}
	return nil
}

// mulUint64 multiplies with overflow detection.
func mulUint64(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, false
	}
	return lo, true
}
