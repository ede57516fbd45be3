package dff

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/riff"
)

// chunkReader reads DSDIFF chunks and counts the bytes consumed so nested
// blocks can be walked against their declared size.
type chunkReader struct {
	r     io.Reader
	order byteOrder
	pos   int64
}

func newChunkReader(r io.Reader, order byteOrder) *chunkReader {
	return &chunkReader{r: r, order: order}
}

func (cr *chunkReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.pos += int64(n)

	return n, err
}

// readHeader reads a chunk ID and its size. io.EOF is returned when fewer
// than 4 ID bytes are left.
func (cr *chunkReader) readHeader() (ChunkHeader, error) {
	var (
		hdr ChunkHeader
		buf [8]byte
	)

	_, err := io.ReadFull(cr, hdr.ID[:])
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return hdr, io.EOF
		}

		return hdr, fmt.Errorf("failed to read chunk ID: %w", err)
	}

	_, err = io.ReadFull(cr, buf[:])
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return hdr, fmt.Errorf("%w: size of %q: %w", ErrTruncated, hdr.ID[:], err)
	}

	hdr.Size = cr.order.uint64(buf[:])
	if hdr.Size > math.MaxInt64 {
		return hdr, fmt.Errorf("%w: %s", ErrTruncated, hdr)
	}

	return hdr, nil
}

// readID reads a bare 4 byte tag such as a form or property type.
func (cr *chunkReader) readID() ([4]byte, error) {
	var id [4]byte

	_, err := io.ReadFull(cr, id[:])
	if err != nil {
		return id, fmt.Errorf("%w: %w", ErrTruncated, err)
	}

	return id, nil
}

// chunk exposes the payload described by hdr. The returned chunk must be
// passed to finish once the handler is done with it.
func (cr *chunkReader) chunk(hdr ChunkHeader) *riff.Chunk {
	return &riff.Chunk{
		ID:   hdr.ID,
		Size: int(hdr.Size),
		R:    &io.LimitedReader{R: cr, N: int64(hdr.Size)},
	}
}

// finish drains what's left of the chunk payload and its pad byte.
func (cr *chunkReader) finish(ch *riff.Chunk) error {
	if lr, ok := ch.R.(*io.LimitedReader); ok {
		_, err := io.Copy(io.Discard, lr)
		if err != nil {
			return fmt.Errorf("failed to drain %q chunk: %w", ch.ID[:], err)
		}

		if lr.N > 0 {
			return fmt.Errorf("%w: %q is missing %d bytes", ErrTruncated, ch.ID[:], lr.N)
		}
	}

	return cr.skipPad(uint64(ch.Size))
}

// readPayload reads a whole chunk payload into memory.
func (cr *chunkReader) readPayload(ch *riff.Chunk) ([]byte, error) {
	if ch.Size > maxBufferedChunk {
		return nil, fmt.Errorf("%w: %q is %d bytes", ErrChunkTooLarge, ch.ID[:], ch.Size)
	}

	data := make([]byte, ch.Size)

	_, err := io.ReadFull(ch, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %q payload: %w", ErrTruncated, ch.ID[:], err)
	}

	return data, nil
}

// skip advances the input by n bytes without writing them anywhere.
func (cr *chunkReader) skip(n uint64) error {
	if n == 0 {
		return nil
	}

	skipped, err := io.CopyN(io.Discard, cr, int64(n))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: skipped %d of %d bytes", ErrTruncated, skipped, n)
		}

		return fmt.Errorf("failed to skip %d bytes: %w", n, err)
	}

	return nil
}

// skipPad consumes the pad byte following an odd sized payload.
func (cr *chunkReader) skipPad(size uint64) error {
	if size%2 == 0 {
		return nil
	}

	return cr.skip(1)
}

// chunkWriter writes DSDIFF chunks and keeps track of the output offset for
// later size patching.
type chunkWriter struct {
	w     io.WriteSeeker
	bw    *bufio.Writer
	order byteOrder
	pos   int64
}

func newChunkWriter(w io.WriteSeeker, order byteOrder) *chunkWriter {
	return &chunkWriter{
		w:     w,
		bw:    bufio.NewWriter(w),
		order: order,
	}
}

func (cw *chunkWriter) Write(p []byte) (int, error) {
	n, err := cw.bw.Write(p)
	cw.pos += int64(n)

	return n, err
}

// writeRaw writes bytes to the output unchanged.
func (cw *chunkWriter) writeRaw(p []byte) error {
	_, err := cw.Write(p)
	if err != nil {
		return fmt.Errorf("failed to write %d bytes: %w", len(p), err)
	}

	return nil
}

// writeHeader writes a chunk ID and a big endian size.
func (cw *chunkWriter) writeHeader(id [4]byte, size uint64) error {
	var buf [headerSize]byte

	copy(buf[:4], id[:])
	cw.order.putUint64(buf[4:], size)

	_, err := cw.Write(buf[:])
	if err != nil {
		return fmt.Errorf("failed to write %q chunk header: %w", id[:], err)
	}

	return nil
}

// writePad writes the zero pad byte following an odd sized payload.
func (cw *chunkWriter) writePad(size uint64) error {
	if size%2 == 0 {
		return nil
	}

	_, err := cw.Write([]byte{0})
	if err != nil {
		return fmt.Errorf("failed to write pad byte: %w", err)
	}

	return nil
}

// writeChunk writes a complete chunk with its pad byte.
func (cw *chunkWriter) writeChunk(id [4]byte, data []byte) error {
	err := cw.writeHeader(id, uint64(len(data)))
	if err != nil {
		return err
	}

	if err := cw.writeRaw(data); err != nil {
		return fmt.Errorf("%q payload: %w", id[:], err)
	}

	return cw.writePad(uint64(len(data)))
}

// copyRaw copies exactly n bytes from r to the output.
func (cw *chunkWriter) copyRaw(r io.Reader, n uint64) error {
	copied, err := io.CopyN(cw, r, int64(n))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: copied %d of %d bytes", ErrTruncated, copied, n)
		}

		return fmt.Errorf("failed to copy %d bytes: %w", n, err)
	}

	return nil
}

// mark returns the current output offset. Call it right before writing a
// header whose size will be patched.
func (cw *chunkWriter) mark() Position {
	return Position(cw.pos)
}

// patchSize overwrites the size field of the header written at pos and
// moves the cursor back to the end of the output.
func (cw *chunkWriter) patchSize(pos Position, size uint64) error {
	err := cw.flush()
	if err != nil {
		return err
	}

	if _, err := cw.w.Seek(int64(pos)+4, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to chunk size position: %w", err)
	}

	var buf [8]byte
	cw.order.putUint64(buf[:], size)

	if _, err := cw.w.Write(buf[:]); err != nil {
		return fmt.Errorf("failed to patch chunk size: %w", err)
	}

	// jump back to the end of the file.
	if _, err := cw.w.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end of file: %w", err)
	}

	return nil
}

func (cw *chunkWriter) flush() error {
	err := cw.bw.Flush()
	if err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	return nil
}
