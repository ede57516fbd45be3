package dff

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/cwbudde/dff/dst"
)

// Transcoder converts a DST compressed DSDIFF stream into a plain DSDIFF
// stream in a single pass.
type Transcoder struct {
	in         *chunkReader
	out        *chunkWriter
	newDecoder dst.NewDecoderFunc
	dec        dst.Decoder

	// Reporter receives stream information and progress, nil disables it.
	Reporter Reporter
	// Logger receives a debug record per chunk. Nothing is logged when nil.
	Logger *slog.Logger
	// SourceName and OutputName are only used for reporting.
	SourceName string
	OutputName string

	NumChans        uint32
	SampleRate      uint32
	CompressionName string
	NumFrames       uint32
	FrameRate       uint16
	// ExpectedSize is the decoded size derived from the frame information.
	ExpectedSize uint64
	// DecodedSize is the number of decoded bytes written so far.
	DecodedSize uint64

	framesDecoded uint32
	emitErr       error
	propChunks    *ChunkRegistry
	soundChunks   *ChunkRegistry
}

// NewTranscoder creates a transcoder reading r and writing w. newDecoder is
// called with the channel count once the property chunk was read; nil
// selects dst.NewPlainDecoder.
func NewTranscoder(r io.Reader, w io.WriteSeeker, newDecoder dst.NewDecoderFunc) (*Transcoder, error) {
	order, err := resolveByteOrder()
	if err != nil {
		return nil, err
	}

	return newTranscoder(r, w, order, newDecoder), nil
}

func newTranscoder(r io.Reader, w io.WriteSeeker, order byteOrder, newDecoder dst.NewDecoderFunc) *Transcoder {
	if newDecoder == nil {
		newDecoder = dst.NewPlainDecoder
	}

	return &Transcoder{
		in:          newChunkReader(r, order),
		out:         newChunkWriter(w, order),
		newDecoder:  newDecoder,
		propChunks:  newPropertyChunkRegistry(),
		soundChunks: newSoundChunkRegistry(),
	}
}

// PropertyChunks returns the registry used for PROP sub-chunks so custom
// handlers can be added. Unhandled sub-chunks are copied.
func (t *Transcoder) PropertyChunks() *ChunkRegistry {
	return t.propChunks
}

// SoundChunks returns the registry used for "DST " sub-chunks. Unhandled
// sub-chunks are dropped.
func (t *Transcoder) SoundChunks() *ChunkRegistry {
	return t.soundChunks
}

// Transcode runs the conversion. The output is complete and all size
// fields are patched when it returns nil; the underlying writer is NOT
// closed.
func (t *Transcoder) Transcode() (err error) {
	defer func() {
		cerr := t.closeDecoder()
		if cerr != nil && err == nil {
			err = cerr
		}
	}()

	hdr, err := t.in.readHeader()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty input", ErrInvalidForm)
		}

		return err
	}

	if hdr.ID != CIDForm {
		return fmt.Errorf("%w: %q", ErrInvalidForm, hdr.ID[:])
	}

	formType, err := t.in.readID()
	if err != nil {
		return fmt.Errorf("failed to read form type: %w", err)
	}

	if formType != CIDDSD {
		return fmt.Errorf("%w: form type %q", ErrInvalidForm, formType[:])
	}

	formPos := t.out.mark()

	// form size, to update later on.
	err = t.out.writeHeader(CIDForm, hdr.Size)
	if err != nil {
		return err
	}

	if err := t.out.writeRaw(formType[:]); err != nil {
		return err
	}

	for {
		hdr, err = t.in.readHeader()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return err
		}

		t.logger().Debug("chunk", "id", string(hdr.ID[:]), "size", hdr.Size)

		err = t.transcodeChunk(hdr)
		if err != nil {
			return err
		}
	}

	// go back and write total size in header
	err = t.out.patchSize(formPos, uint64(t.out.pos)-headerSize)
	if err != nil {
		return err
	}

	if t.Reporter != nil {
		t.Reporter.Done()
	}

	return nil
}

func (t *Transcoder) transcodeChunk(hdr ChunkHeader) error {
	switch hdr.ID {
	case CIDProp:
		err := t.transcodeProperty(hdr)
		if err != nil {
			return err
		}

		if err := t.in.skipPad(hdr.Size); err != nil {
			return err
		}

		return t.openDecoder()
	case CIDDSD:
		// a DST encoded file has no DSD sound data chunk.
		return ErrNotDSTEncoded
	case CIDDST:
		err := t.transcodeSound(hdr)
		if err != nil {
			return err
		}

		if err := t.in.skipPad(hdr.Size); err != nil {
			return err
		}

		return t.closeDecoder()
	case CIDFrameIndex:
		// the frame index points into the compressed data only.
		return t.in.skip(hdr.padded())
	default:
		err := t.copyChunk(hdr, t.in)
		if err != nil {
			return err
		}

		return t.in.skipPad(hdr.Size)
	}
}

func (t *Transcoder) openDecoder() error {
	err := t.closeDecoder()
	if err != nil {
		return err
	}

	dec, err := t.newDecoder(int(t.NumChans))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDecoderInit, err)
	}

	if dec == nil {
		return ErrDecoderInit
	}

	t.dec = dec

	return nil
}

func (t *Transcoder) closeDecoder() error {
	if t.dec == nil {
		return nil
	}

	err := t.dec.Close()
	t.dec = nil

	if err != nil {
		return fmt.Errorf("failed to close DST decoder: %w", err)
	}

	return nil
}

func (t *Transcoder) logger() *slog.Logger {
	if t.Logger == nil {
		return discardLogger
	}

	return t.Logger
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
