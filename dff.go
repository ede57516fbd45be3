package dff

import (
	"errors"
	"fmt"

	"github.com/cwbudde/dff/dst"
)

var (
	// CIDForm is the chunk ID of the top level form chunk.
	CIDForm = [4]byte{'F', 'R', 'M', '8'}
	// CIDProp is the chunk ID of the property chunk.
	CIDProp = [4]byte{'P', 'R', 'O', 'P'}
	// CIDChannels is the chunk ID of the channels property.
	CIDChannels = [4]byte{'C', 'H', 'N', 'L'}
	// CIDSampleRate is the chunk ID of the sample rate property.
	CIDSampleRate = [4]byte{'F', 'S', ' ', ' '}
	// CIDCompression is the chunk ID of the compression type property.
	CIDCompression = [4]byte{'C', 'M', 'P', 'R'}
	// CIDDSD is the chunk ID of plain DSD sound data. It is also the form
	// type and the "not compressed" compression type.
	CIDDSD = [4]byte{'D', 'S', 'D', ' '}
	// CIDDST is the chunk ID of DST compressed sound data.
	CIDDST = [4]byte{'D', 'S', 'T', ' '}
	// CIDFrameInfo is the chunk ID of the DST frame information chunk.
	CIDFrameInfo = [4]byte{'F', 'R', 'T', 'E'}
	// CIDFrame is the chunk ID of a single DST frame.
	CIDFrame = [4]byte{'D', 'S', 'T', 'F'}
	// CIDFrameCRC is the chunk ID of a DST frame CRC chunk.
	CIDFrameCRC = [4]byte{'D', 'S', 'T', 'C'}
	// CIDFrameIndex is the chunk ID of the DST sound index chunk.
	CIDFrameIndex = [4]byte{'D', 'S', 'T', 'I'}
	// PropSound is the property type of the sound property chunk.
	PropSound = [4]byte{'S', 'N', 'D', ' '}

	// ErrNotDSDIFF is returned when the input path is not a .dff file.
	ErrNotDSDIFF = errors.New("input file is not DSDIFF file")
	// ErrInvalidForm is returned when the file doesn't start with a FRM8/DSD form.
	ErrInvalidForm = errors.New("invalid form DSD chunk header")
	// ErrNotDSTEncoded is returned when the input already holds plain DSD data.
	ErrNotDSTEncoded = errors.New("input file is not DST encoded")
	// ErrMalformedProperty is returned for property chunks that can't be used.
	ErrMalformedProperty = errors.New("malformed property chunk")
	// ErrTruncated is returned when a chunk ends before its declared size.
	ErrTruncated = errors.New("truncated chunk")
	// ErrChunkTooLarge is returned when a payload that must be buffered
	// doesn't fit in memory limits.
	ErrChunkTooLarge = errors.New("chunk too large to buffer")
	// ErrDecoderInit is returned when the DST decoder can't be created.
	ErrDecoderInit = errors.New("DST decoder cannot be initialized")
)

const (
	// MaxBitsPerFramePerChannel is the DSD bit budget of one DST frame for a
	// single channel (588 samples * 64).
	MaxBitsPerFramePerChannel = dst.MaxBitsPerFramePerChannel

	// headerSize is the size of a chunk ID and its 64-bit size field.
	headerSize = 12
	// maxBufferedChunk bounds the payloads read into memory (property
	// sub-chunks and DST frames).
	maxBufferedChunk = 64 << 20
)

// notCompressed is the CMPR payload of a plain DSD file: compression type,
// pstring count, text and the pad byte keeping the pstring even.
var notCompressed = []byte("DSD \x0enot compressed\x00")

// FrameError reports a DST frame that couldn't be decoded.
type FrameError struct {
	// Frame is the 1-based index of the failing frame.
	Frame uint32
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("invalid DST data in frame %d, cannot process continuously: %v", e.Frame, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

func expectedDecodedSize(numChans, numFrames uint32) uint64 {
	return uint64(MaxBitsPerFramePerChannel/8*numChans) * uint64(numFrames)
}
