package dst

import "fmt"

// maxChannels is the highest channel count a DST stream can carry.
const maxChannels = 6

// PlainDecoder decodes frames stored with processing mode 0, where the frame
// holds raw DSD data after a one byte header.
type PlainDecoder struct {
	numChans int
	buf      []byte
	closed   bool
}

// NewPlainDecoder creates a plain frame decoder. It satisfies NewDecoderFunc.
func NewPlainDecoder(numChans int) (Decoder, error) {
	if numChans < 1 || numChans > maxChannels {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, numChans)
	}

	return &PlainDecoder{
		numChans: numChans,
		buf:      make([]byte, FrameBytes(numChans)),
	}, nil
}

// Decode implements Decoder. A short payload is zero filled and a long one
// truncated so every frame yields exactly FrameBytes bytes.
func (d *PlainDecoder) Decode(frame []byte, emit func([]byte) error) error {
	if d.closed {
		return ErrDecoderClosed
	}

	if len(frame) == 0 {
		return fmt.Errorf("%w: empty frame", ErrInvalidFrame)
	}

	// first bit: processing mode, 1 = DST coded
	if frame[0]&0x80 != 0 {
		return ErrCodedFrame
	}

	// the remaining 7 header bits are reserved
	if frame[0]&0x7f != 0 {
		return fmt.Errorf("%w: reserved header bits 0x%02x", ErrInvalidFrame, frame[0]&0x7f)
	}

	n := copy(d.buf, frame[1:])
	clear(d.buf[n:])

	return emit(d.buf)
}

// Close implements Decoder.
func (d *PlainDecoder) Close() error {
	d.closed = true
	d.buf = nil

	return nil
}
