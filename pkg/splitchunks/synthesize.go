package splitchunks

import (
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/chunksplit/pkg/chunkgraph"
)

// SynthesizedChunk is a new chunk built for one batch, not yet registered.
type SynthesizedChunk struct {
	Chunk *chunkgraph.Chunk
	Graph *chunkgraph.ChunkGraphChunk
	Info  ChunkInfo
}

// SynthesizeChunks creates one chunk per batch, in batch order, and adds the
// new chunk to every batch module's chunk set.
//
// Keys are allocated serially so they follow batch order, and all of them
// before the first record is touched, so a failed allocation leaves the graph
// unchanged. Linking then runs one goroutine per batch: batches are disjoint, so each goroutine is the
// only writer of the ChunkGraphModule records it was handed.
func SynthesizeChunks(g Graph, batches []ChunkInfo, workers int) ([]SynthesizedChunk, error) {
	synthesized := make([]SynthesizedChunk, len(batches))
	owned := make([][]*chunkgraph.ChunkGraphModule, len(batches))

	for i, batch := range batches {
		ids := batch.ModuleIDs()
		records := make([]*chunkgraph.ChunkGraphModule, len(ids))

		for j, id := range ids {
			cgm, ok := g.ChunkGraphModule(id)
			if !ok {
				return nil, newInvariantError(id, "shared module has no chunk graph record", nil)
			}

			records[j] = cgm
		}

		chunk, err := g.NewChunk(chunkgraph.ChunkKindNormal)
		if err != nil {
			return nil, newInvariantError(ids[0], "allocate chunk", err)
		}

		chunk.Reasons = append(chunk.Reasons, Reason)

		owned[i] = records
		synthesized[i] = SynthesizedChunk{
			Info:  batch,
			Chunk: chunk,
			Graph: chunkgraph.NewChunkGraphChunk(ids...),
		}
	}

	var eg errgroup.Group

	eg.SetLimit(max(1, workers))

	for i, records := range owned {
		ukey := synthesized[i].Chunk.Ukey

		eg.Go(func() error {
			for _, cgm := range records {
				cgm.Chunks.Add(ukey)
			}

			return nil
		})
	}

	_ = eg.Wait() // linking cannot fail

	return synthesized, nil
}
