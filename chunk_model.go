package dff

import "fmt"

// ChunkHeader is the ID and declared payload size of a DSDIFF chunk.
// The pad byte following odd payloads is not part of Size.
type ChunkHeader struct {
	ID   [4]byte
	Size uint64
}

// padded returns the on-disk payload length including the pad byte.
func (h ChunkHeader) padded() uint64 {
	return h.Size + h.Size%2
}

func (h ChunkHeader) String() string {
	return fmt.Sprintf("%q (%d bytes)", h.ID[:], h.Size)
}

// Position is an output offset of a chunk header whose size field may be
// patched later.
type Position int64
