package splitchunks

import (
	"fmt"
)

// RewriteGraph applies synthesized chunks to the graph in three phases whose
// order must not change:
//
//  1. every old chunk of every batch module records the split, while its
//     module set is still intact;
//  2. the new chunks are registered;
//  3. every shared module is disconnected from each chunk it used to be in.
func RewriteGraph(g Graph, shared []SharedModule, synthesized []SynthesizedChunk) error {
	for _, sc := range synthesized {
		for _, module := range sc.Info.Modules {
			for _, old := range module.RefChunks {
				err := g.SplitChunk(old, sc.Chunk)
				if err != nil {
					return newInvariantError(module.Module, fmt.Sprintf("split chunk %d", old), err)
				}
			}
		}
	}

	for _, sc := range synthesized {
		err := g.AddChunk(sc.Chunk, sc.Graph)
		if err != nil {
			first := sc.Info.Modules[0].Module

			return newInvariantError(first, fmt.Sprintf("register chunk %d", sc.Chunk.Ukey), err)
		}
	}

	for _, module := range shared {
		for _, old := range module.RefChunks {
			g.DisconnectChunkAndModule(old, module.Module)
		}
	}

	return nil
}
