package dst

import "errors"

var (
	// ErrCodedFrame indicates a DST coded frame was given to a decoder that
	// only handles plain frames.
	ErrCodedFrame = errors.New("DST coded frame not supported")

	// ErrInvalidFrame indicates a frame header that can't be parsed.
	ErrInvalidFrame = errors.New("invalid DST frame")

	// ErrInvalidChannels indicates an unusable channel count.
	ErrInvalidChannels = errors.New("invalid channel count")

	// ErrDecoderClosed indicates Decode was called after Close.
	ErrDecoderClosed = errors.New("decoder closed")
)
