package mrc

// Option configures a decoder at construction.
type Option func(*decoderOptions)

type decoderOptions struct {
	limits Limits
}

func defaultDecoderOptions() *decoderOptions {
	return &decoderOptions{
		limits: DefaultLimits(),
	}
}

// WithLimits overrides the default decoding limits.
func WithLimits(l Limits) Option {
	return func(o *decoderOptions) {
		o.limits = l
	}
}

// WithDecodingBufferSize overrides only the per-buffer ceiling in bytes.
func WithDecodingBufferSize(n int) Option {
	return func(o *decoderOptions) {
		if n > 0 {
			o.limits.DecodingBufferSize = n
		}
	}
}

// WithMetadataSize overrides only the metadata-value ceiling in bytes.
func WithMetadataSize(n int) Option {
	return func(o *decoderOptions) {
		if n > 0 {
			o.limits.MetadataSize = n
		}
	}
}
