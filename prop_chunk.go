package dff

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// cmprSizeDelta is how much larger the "not compressed" CMPR payload is than
// the usual "DST Encoded" one.
const cmprSizeDelta = 4

// transcodeProperty copies the PROP chunk described by hdr, rewriting the
// compression type. The PROP size is written as hdr.Size+4 and patched when
// the sub-chunks end up with a different length.
func (t *Transcoder) transcodeProperty(hdr ChunkHeader) error {
	if hdr.Size < 4 {
		return fmt.Errorf("%w: %s", ErrMalformedProperty, hdr)
	}

	sizePos := t.out.mark()
	placeholder := hdr.Size + cmprSizeDelta

	err := t.out.writeHeader(CIDProp, placeholder)
	if err != nil {
		return err
	}

	end := t.in.pos + int64(hdr.Size)

	propType, err := t.in.readID()
	if err != nil {
		return fmt.Errorf("failed to read property type: %w", err)
	}

	if propType != PropSound {
		return fmt.Errorf("%w: property type %q", ErrMalformedProperty, propType[:])
	}

	if err := t.out.writeRaw(propType[:]); err != nil {
		return err
	}

	for t.in.pos < end {
		sub, err := t.in.readHeader()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: property chunk ended early", ErrTruncated)
			}

			return err
		}

		if int64(sub.Size) > end-t.in.pos {
			return fmt.Errorf("%w: %s overruns the property chunk", ErrMalformedProperty, sub)
		}

		t.logger().Debug("property chunk", "id", string(sub.ID[:]), "size", sub.Size)

		ch := t.in.chunk(sub)

		handled, err := t.propChunks.Transcode(t, ch)
		if err != nil {
			return err
		}

		if !handled {
			if err := t.copyChunk(sub, ch); err != nil {
				return err
			}
		}

		if err := t.in.finish(ch); err != nil {
			return err
		}
	}

	if t.in.pos != end {
		return fmt.Errorf("%w: sub-chunks overrun the declared size by %d bytes", ErrMalformedProperty, t.in.pos-end)
	}

	if t.NumChans == 0 {
		return fmt.Errorf("%w: missing channel count", ErrMalformedProperty)
	}

	written := uint64(t.out.pos-int64(sizePos)) - headerSize
	if written != placeholder {
		t.logger().Debug("patching property size", "declared", hdr.Size, "written", written)

		return t.out.patchSize(sizePos, written)
	}

	return nil
}

// copyChunk writes a chunk header and its payload unchanged.
func (t *Transcoder) copyChunk(hdr ChunkHeader, r io.Reader) error {
	err := t.out.writeHeader(hdr.ID, hdr.Size)
	if err != nil {
		return err
	}

	if err := t.out.copyRaw(r, hdr.Size); err != nil {
		return fmt.Errorf("%q payload: %w", hdr.ID[:], err)
	}

	return t.out.writePad(hdr.Size)
}

func parseChannels(data []byte) (uint32, error) {
	if len(data) < 2 {
		return 0, fmt.Errorf("%w: channels chunk is %d bytes", ErrMalformedProperty, len(data))
	}

	// low byte of the big endian channel count
	return uint32(data[1]), nil
}

func parseSampleRate(order byteOrder, data []byte) (uint32, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("%w: sample rate chunk is %d bytes", ErrMalformedProperty, len(data))
	}

	return order.uint32(data[:4]), nil
}

// parseCompression returns the compression type and its pstring name.
func parseCompression(data []byte) ([4]byte, string, error) {
	var id [4]byte

	if len(data) < 4 {
		return id, "", fmt.Errorf("%w: compression chunk is %d bytes", ErrMalformedProperty, len(data))
	}

	copy(id[:], data[:4])

	if len(data) < 5 {
		return id, "", nil
	}

	count := int(data[4])
	text := data[5:]

	if count < len(text) {
		text = text[:count]
	}

	return id, string(text), nil
}

type channelsChunkHandler struct{}

func (h *channelsChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == CIDChannels
}

func (h *channelsChunkHandler) Transcode(t *Transcoder, ch *riff.Chunk) error {
	data, err := t.in.readPayload(ch)
	if err != nil {
		return err
	}

	t.NumChans, err = parseChannels(data)
	if err != nil {
		return err
	}

	return t.out.writeChunk(ch.ID, data)
}

type sampleRateChunkHandler struct{}

func (h *sampleRateChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == CIDSampleRate
}

func (h *sampleRateChunkHandler) Transcode(t *Transcoder, ch *riff.Chunk) error {
	data, err := t.in.readPayload(ch)
	if err != nil {
		return err
	}

	t.SampleRate, err = parseSampleRate(t.in.order, data)
	if err != nil {
		return err
	}

	return t.out.writeChunk(ch.ID, data)
}

type compressionChunkHandler struct{}

func (h *compressionChunkHandler) CanHandle(chunkID [4]byte) bool {
	return chunkID == CIDCompression
}

func (h *compressionChunkHandler) Transcode(t *Transcoder, ch *riff.Chunk) error {
	data, err := t.in.readPayload(ch)
	if err != nil {
		return err
	}

	id, name, err := parseCompression(data)
	if err != nil {
		return err
	}

	if id == CIDDSD {
		return ErrNotDSTEncoded
	}

	t.CompressionName = name

	return t.out.writeChunk(ch.ID, notCompressed)
}
