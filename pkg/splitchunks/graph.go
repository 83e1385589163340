package splitchunks

import (
	"github.com/Sumatoshi-tech/chunksplit/pkg/chunkgraph"
)

// Graph is the slice of a compilation the pass reads and rewrites.
// *chunkgraph.Compilation implements it.
type Graph interface {
	// ModuleIdentifiers enumerates every module of the module graph.
	ModuleIdentifiers() []chunkgraph.ModuleID
	// ModuleByIdentifier looks up a module for its type and size.
	ModuleByIdentifier(id chunkgraph.ModuleID) (*chunkgraph.Module, bool)
	// NumberOfModuleChunks counts the chunks referencing a module.
	NumberOfModuleChunks(id chunkgraph.ModuleID) int
	// ModuleChunks returns the keys of the chunks referencing a module.
	ModuleChunks(id chunkgraph.ModuleID) []chunkgraph.ChunkUkey
	// ChunkGraphModule hands out a module's chunk-set record. Distinct modules
	// yield distinct records that may be mutated concurrently.
	ChunkGraphModule(id chunkgraph.ModuleID) (*chunkgraph.ChunkGraphModule, bool)
	// NewChunk allocates an unregistered chunk with a fresh key, or fails
	// when the key space is used up.
	NewChunk(kind chunkgraph.ChunkKind) (*chunkgraph.Chunk, error)
	// SplitChunk records child as derived from old for chunk-group bookkeeping.
	SplitChunk(old chunkgraph.ChunkUkey, child *chunkgraph.Chunk) error
	// AddChunk registers a chunk with its chunk graph record.
	AddChunk(chunk *chunkgraph.Chunk, cgc *chunkgraph.ChunkGraphChunk) error
	// DisconnectChunkAndModule removes a module from a chunk in both directions.
	DisconnectChunkAndModule(ukey chunkgraph.ChunkUkey, id chunkgraph.ModuleID)
}

var _ Graph = (*chunkgraph.Compilation)(nil)
