// Package dst defines the contract between the DSDIFF transcoder and a DST
// frame decoder.
//
// A Decoder turns one compressed DST frame into the interleaved DSD bytes of
// that frame. Decoded bytes are handed back through an emit callback while
// Decode runs; the slices passed to emit are only valid during the call.
//
// The package also provides PlainDecoder, which handles frames stored without
// DST coding. Decoding DST coded frames requires an external implementation
// plugged in through NewDecoderFunc.
package dst

const (
	// MaxBitsPerFramePerChannel is the number of DSD bits per channel in
	// one frame: 588 samples of 64 bits at 75 frames per second.
	MaxBitsPerFramePerChannel = 588 * 64
	// FrameRate is the number of DST frames per second.
	FrameRate = 75
)

// Decoder decodes DST frames.
type Decoder interface {
	// Decode decodes a single frame. emit may be called any number of
	// times, in order, before Decode returns. A returned error means the
	// frame couldn't be decoded.
	Decode(frame []byte, emit func(decoded []byte) error) error
	// Close releases the decoder.
	Close() error
}

// NewDecoderFunc creates a decoder bound to a channel count.
type NewDecoderFunc func(numChans int) (Decoder, error)

// FrameBytes returns the decoded size in bytes of one frame.
func FrameBytes(numChans int) int {
	return MaxBitsPerFramePerChannel / 8 * numChans
}
