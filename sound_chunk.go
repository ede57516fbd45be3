package dff

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// transcodeSound replaces the "DST " chunk described by hdr with a "DSD "
// chunk holding the decoded frames. The "DSD " size is written as 0 and
// patched once every frame went through the decoder.
func (t *Transcoder) transcodeSound(hdr ChunkHeader) error {
	if t.dec == nil {
		return fmt.Errorf("%w: sound data before property chunk", ErrMalformedProperty)
	}

	sizePos := t.out.mark()

	err := t.out.writeHeader(CIDDSD, 0)
	if err != nil {
		return err
	}

	t.DecodedSize = 0
	end := t.in.pos + int64(hdr.Size)

	for t.in.pos < end {
		sub, err := t.in.readHeader()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: sound data chunk ended early", ErrTruncated)
			}

			return err
		}

		if int64(sub.Size) > end-t.in.pos {
			return fmt.Errorf("%w: %s overruns the sound data chunk", ErrTruncated, sub)
		}

		ch := t.in.chunk(sub)

		handled, err := t.soundChunks.Transcode(t, ch)
		if err != nil {
			return err
		}

		if !handled {
			t.logger().Debug("skipping sound data chunk", "id", string(sub.ID[:]), "size", sub.Size)
		}

		if err := t.in.finish(ch); err != nil {
			return err
		}
	}

	if t.NumFrames > 0 && t.DecodedSize != t.ExpectedSize {
		t.logger().Warn("decoded size differs from frame information",
			"decoded", t.DecodedSize,
			"expected", t.ExpectedSize,
			"frames", t.framesDecoded,
		)
	}

	// rewrite the sound data chunk length header
	err = t.out.patchSize(sizePos, t.DecodedSize)
	if err != nil {
		return err
	}

	return t.out.writePad(t.DecodedSize)
}

// emitDecoded writes a span of decoded DSD bytes.
func (t *Transcoder) emitDecoded(p []byte) error {
	err := t.out.writeRaw(p)
	if err != nil {
		t.emitErr = fmt.Errorf("failed to write decoded data: %w", err)

		return t.emitErr
	}

	t.DecodedSize += uint64(len(p))

	return nil
}

// parseFrameInfo returns the frame count and frame rate of a FRTE payload.
func parseFrameInfo(order byteOrder, data []byte) (uint32, uint16, error) {
	if len(data) < 6 {
		return 0, 0, fmt.Errorf("%w: frame information chunk is %d bytes", ErrMalformedProperty, len(data))
	}

	return order.uint32(data[:4]), uint16(data[4])<<8 | uint16(data[5]), nil
}

type frameInfoChunkHandler struct{}

func (h *frameInfoChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == CIDFrameInfo
}

func (h *frameInfoChunkHandler) Transcode(t *Transcoder, ch *riff.Chunk) error {
	data, err := t.in.readPayload(ch)
	if err != nil {
		return err
	}

	t.NumFrames, t.FrameRate, err = parseFrameInfo(t.in.order, data)
	if err != nil {
		return err
	}

	t.ExpectedSize = expectedDecodedSize(t.NumChans, t.NumFrames)

	t.logger().Debug("frame information",
		"frames", t.NumFrames,
		"rate", t.FrameRate,
		"size", t.ExpectedSize,
	)

	if t.Reporter != nil {
		t.Reporter.StreamInfo(t.StreamInfo())
	}

	return nil
}

type frameChunkHandler struct{}

func (h *frameChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == CIDFrame
}

func (h *frameChunkHandler) Transcode(t *Transcoder, ch *riff.Chunk) error {
	frame, err := t.in.readPayload(ch)
	if err != nil {
		return err
	}

	t.framesDecoded++

	err = t.dec.Decode(frame, t.emitDecoded)
	if t.emitErr != nil {
		return t.emitErr
	}

	if err != nil {
		return &FrameError{Frame: t.framesDecoded, Err: err}
	}

	if t.Reporter != nil {
		t.Reporter.FrameDecoded(t.framesDecoded, t.NumFrames)
	}

	return nil
}

// frameCRCChunkHandler drops DSTC chunks, the CRC of a compressed frame is
// meaningless once decoded.
type frameCRCChunkHandler struct{}

func (h *frameCRCChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == CIDFrameCRC
}

func (h *frameCRCChunkHandler) Transcode(_ *Transcoder, _ *riff.Chunk) error {
	return nil
}
