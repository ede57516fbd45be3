package dff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/dff/dst"
)

type testChunk struct {
	id   string
	size uint64
	data []byte
}

var (
	errFileTooSmall         = errors.New("file too small")
	errInvalidFormHdr       = errors.New("invalid FRM8/DSD header")
	errChunkExceedsFileSize = errors.New("chunk exceeds file size")
)

// chunkBytes encodes a chunk with its pad byte.
func chunkBytes(id string, data []byte) []byte {
	out := make([]byte, 12, 12+len(data)+1)
	copy(out, id)
	binary.BigEndian.PutUint64(out[4:], uint64(len(data)))
	out = append(out, data...)

	if len(data)%2 == 1 {
		out = append(out, 0)
	}

	return out
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func formBytes(chunks ...[]byte) []byte {
	return chunkBytes("FRM8", concat(append([][]byte{[]byte("DSD ")}, chunks...)...))
}

func propBytes(subs ...[]byte) []byte {
	return chunkBytes("PROP", concat(append([][]byte{[]byte("SND ")}, subs...)...))
}

func chnlBytes(numChans int) []byte {
	ids := []string{"SLFT", "SRGT", "MLFT", "MRGT", "LS  ", "RS  "}

	data := []byte{byte(numChans >> 8), byte(numChans)}
	for i := 0; i < numChans; i++ {
		data = append(data, ids[i%len(ids)]...)
	}

	return chunkBytes("CHNL", data)
}

func fsBytes(rate uint32) []byte {
	return chunkBytes("FS  ", binary.BigEndian.AppendUint32(nil, rate))
}

func cmprBytes(id, name string) []byte {
	data := append([]byte(id), byte(len(name)))
	data = append(data, name...)

	if len(data)%2 == 1 {
		data = append(data, 0)
	}

	return chunkBytes("CMPR", data)
}

func frteBytes(frames uint32, rate uint16) []byte {
	data := binary.BigEndian.AppendUint32(nil, frames)
	data = binary.BigEndian.AppendUint16(data, rate)

	return chunkBytes("FRTE", data)
}

// plainFrame builds an uncompressed DST frame filled with fill.
func plainFrame(numChans int, fill byte) []byte {
	frame := make([]byte, 1+dst.FrameBytes(numChans))
	for i := 1; i < len(frame); i++ {
		frame[i] = fill
	}

	return frame
}

// parseChunks parses a sequence of chunks honouring pad bytes.
func parseChunks(data []byte) ([]testChunk, error) {
	chunks := make([]testChunk, 0)

	offset := 0
	for offset+12 <= len(data) {
		id := string(data[offset : offset+4])
		size := binary.BigEndian.Uint64(data[offset+4 : offset+12])
		offset += 12

		end := offset + int(size)
		if end > len(data) {
			return nil, fmt.Errorf("%w: %q", errChunkExceedsFileSize, id)
		}

		payload := append([]byte(nil), data[offset:end]...)
		chunks = append(chunks, testChunk{id: id, size: size, data: payload})

		offset = end
		if size%2 == 1 {
			offset++
		}
	}

	return chunks, nil
}

// parseDFFChunks parses the top level chunks of a DSDIFF file.
func parseDFFChunks(data []byte) ([]testChunk, error) {
	if len(data) < 16 {
		return nil, errFileTooSmall
	}

	if string(data[0:4]) != "FRM8" || string(data[12:16]) != "DSD " {
		return nil, errInvalidFormHdr
	}

	return parseChunks(data[16:])
}

func findChunk(chunks []testChunk, id string) (*testChunk, int) {
	for i := range chunks {
		if chunks[i].id == id {
			return &chunks[i], i
		}
	}

	return nil, -1
}

func chunkIDs(chunks []testChunk) []string {
	out := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		out = append(out, ch.id)
	}

	return out
}

// transcodeBytes runs a Transcoder from input into a temporary file and
// returns the produced bytes.
func transcodeBytes(t *testing.T, input []byte, newDecoder dst.NewDecoderFunc) ([]byte, *Transcoder, error) {
	t.Helper()

	out, err := os.Create(filepath.Join(t.TempDir(), "out.dff"))
	if err != nil {
		t.Fatalf("create output: %v", err)
	}
	defer out.Close()

	tr, err := NewTranscoder(bytes.NewReader(input), out, newDecoder)
	if err != nil {
		t.Fatalf("new transcoder: %v", err)
	}

	err = tr.Transcode()
	if err != nil {
		return nil, tr, err
	}

	output, err := os.ReadFile(out.Name())
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	return output, tr, nil
}

// stubDecoder emits a deterministic span sequence per frame.
type stubDecoder struct {
	numChans int
	frames   int
	failAt   int
	closed   bool
}

func (d *stubDecoder) Decode(frame []byte, emit func([]byte) error) error {
	d.frames++

	if d.failAt == d.frames {
		return errStubFrame
	}

	decoded := stubFrameOutput(d.numChans, d.frames, frame)
	half := len(decoded) / 2

	if err := emit(decoded[:half]); err != nil {
		return err
	}

	return emit(decoded[half:])
}

func (d *stubDecoder) Close() error {
	d.closed = true
	return nil
}

var errStubFrame = errors.New("stub frame failure")

// stubFrameOutput is what stubDecoder produces for the n-th (1-based) frame.
func stubFrameOutput(numChans, n int, frame []byte) []byte {
	out := make([]byte, dst.FrameBytes(numChans))
	for i := range out {
		out[i] = byte(n*31+i) ^ frame[i%len(frame)]
	}

	return out
}

func newStubDecoderFunc(failAt int, created *[]*stubDecoder) dst.NewDecoderFunc {
	return func(numChans int) (dst.Decoder, error) {
		d := &stubDecoder{numChans: numChans, failAt: failAt}
		if created != nil {
			*created = append(*created, d)
		}

		return d, nil
	}
}

func createTempOutput(t *testing.T) (*os.File, error) {
	t.Helper()

	return os.Create(filepath.Join(t.TempDir(), "out.dff"))
}
