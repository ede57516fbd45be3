package dff

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
)

// Info is the chunk inventory and stream description of a DSDIFF file.
type Info struct {
	FormSize uint64
	// Chunks lists the top level chunks in file order.
	Chunks []ChunkHeader
	// Properties lists the PROP sub-chunks in file order.
	Properties []ChunkHeader

	NumChans        uint32
	SampleRate      uint32
	Compression     [4]byte
	CompressionName string
	NumFrames       uint32
	FrameRate       uint16
	// SoundSize is the payload size of the sound data chunk.
	SoundSize uint64
}

// Compressed returns true if the sound data is DST encoded.
func (i *Info) Compressed() bool {
	return i.Compression == CIDDST
}

// Format returns the audio format of the file.
func (i *Info) Format() *audio.Format {
	if i == nil {
		return nil
	}

	return &audio.Format{
		NumChannels: int(i.NumChans),
		SampleRate:  int(i.SampleRate),
	}
}

// ReadInfo walks a DSDIFF stream without decoding it.
func ReadInfo(r io.Reader) (*Info, error) {
	order, err := resolveByteOrder()
	if err != nil {
		return nil, err
	}

	cr := newChunkReader(r, order)

	hdr, err := cr.readHeader()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrInvalidForm)
		}

		return nil, err
	}

	if hdr.ID != CIDForm {
		return nil, fmt.Errorf("%w: %q", ErrInvalidForm, hdr.ID[:])
	}

	formType, err := cr.readID()
	if err != nil {
		return nil, fmt.Errorf("failed to read form type: %w", err)
	}

	if formType != CIDDSD {
		return nil, fmt.Errorf("%w: form type %q", ErrInvalidForm, formType[:])
	}

	info := &Info{FormSize: hdr.Size}

	for {
		hdr, err = cr.readHeader()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return info, err
		}

		info.Chunks = append(info.Chunks, hdr)

		switch hdr.ID {
		case CIDProp:
			err = info.readProperty(cr, hdr)
		case CIDDST:
			info.SoundSize = hdr.Size
			err = info.readFrameInfo(cr, hdr)
		case CIDDSD:
			info.SoundSize = hdr.Size
			err = cr.skip(hdr.padded())
		default:
			err = cr.skip(hdr.padded())
		}

		if err != nil {
			return info, fmt.Errorf("%q chunk: %w", hdr.ID[:], err)
		}
	}

	return info, nil
}

func (i *Info) readProperty(cr *chunkReader, hdr ChunkHeader) error {
	end := cr.pos + int64(hdr.Size)

	propType, err := cr.readID()
	if err != nil {
		return err
	}

	if propType != PropSound {
		return cr.skip(uint64(end-cr.pos) + hdr.Size%2)
	}

	for cr.pos < end {
		sub, err := cr.readHeader()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: property chunk ended early", ErrTruncated)
			}

			return err
		}

		i.Properties = append(i.Properties, sub)

		ch := cr.chunk(sub)

		switch sub.ID {
		case CIDChannels, CIDSampleRate, CIDCompression:
			data, err := cr.readPayload(ch)
			if err != nil {
				return err
			}

			switch sub.ID {
			case CIDChannels:
				i.NumChans, err = parseChannels(data)
			case CIDSampleRate:
				i.SampleRate, err = parseSampleRate(cr.order, data)
			default:
				i.Compression, i.CompressionName, err = parseCompression(data)
			}

			if err != nil {
				return err
			}
		}

		if err := cr.finish(ch); err != nil {
			return err
		}
	}

	return cr.skipPad(hdr.Size)
}

// readFrameInfo reads the FRTE chunk of a DST sound data chunk and skips
// the frames.
func (i *Info) readFrameInfo(cr *chunkReader, hdr ChunkHeader) error {
	end := cr.pos + int64(hdr.Size)

	for cr.pos < end {
		sub, err := cr.readHeader()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: sound data chunk ended early", ErrTruncated)
			}

			return err
		}

		ch := cr.chunk(sub)

		if sub.ID == CIDFrameInfo {
			data, err := cr.readPayload(ch)
			if err != nil {
				return err
			}

			i.NumFrames, i.FrameRate, err = parseFrameInfo(cr.order, data)
			if err != nil {
				return err
			}
		}

		if err := cr.finish(ch); err != nil {
			return err
		}
	}

	return cr.skipPad(hdr.Size)
}
