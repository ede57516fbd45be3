package dff

import (
	"fmt"

	"github.com/go-audio/riff"
)

// ChunkHandler is a typed handler for DSDIFF sub-chunks.
// Transcode reads what it needs from ch and writes its output through t;
// bytes it leaves unread are discarded.
type ChunkHandler interface {
	CanHandle(chunkID [4]byte) bool
	Transcode(t *Transcoder, ch *riff.Chunk) error
}

// ChunkRegistry resolves chunks to handlers.
type ChunkRegistry struct {
	handlers []ChunkHandler
}

func newPropertyChunkRegistry() *ChunkRegistry {
	return &ChunkRegistry{
		handlers: []ChunkHandler{
			&channelsChunkHandler{},
			&sampleRateChunkHandler{},
			&compressionChunkHandler{},
		},
	}
}

func newSoundChunkRegistry() *ChunkRegistry {
	return &ChunkRegistry{
		handlers: []ChunkHandler{
			&frameInfoChunkHandler{},
			&frameChunkHandler{},
			&frameCRCChunkHandler{},
		},
	}
}

// Register appends a handler to the registry.
func (r *ChunkRegistry) Register(handler ChunkHandler) {
	if r == nil || handler == nil {
		return
	}

	r.handlers = append(r.handlers, handler)
}

// Transcode dispatches a chunk to the first matching handler.
func (r *ChunkRegistry) Transcode(t *Transcoder, chnk *riff.Chunk) (bool, error) {
	if r == nil || chnk == nil {
		return false, nil
	}

	for _, handler := range r.handlers {
		if handler.CanHandle(chnk.ID) {
			err := handler.Transcode(t, chnk)
			if err != nil {
				return true, fmt.Errorf("%q chunk: %w", chnk.ID[:], err)
			}

			return true, nil
		}
	}

	return false, nil
}
