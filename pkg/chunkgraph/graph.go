package chunkgraph

import (
	"github.com/Sumatoshi-tech/chunksplit/pkg/alg/mapx"
)

// ChunkGraphChunk is the set of modules belonging to one chunk.
type ChunkGraphChunk struct {
	Modules mapx.Set[ModuleID]
}

// NewChunkGraphChunk creates a record holding the given modules.
func NewChunkGraphChunk(modules ...ModuleID) *ChunkGraphChunk {
	return &ChunkGraphChunk{Modules: mapx.NewSet(modules...)}
}

// ChunkGraphModule is the set of chunks one module belongs to.
type ChunkGraphModule struct {
	Chunks mapx.Set[ChunkUkey]
}

// NewChunkGraphModule creates an empty record.
func NewChunkGraphModule() *ChunkGraphModule {
	return &ChunkGraphModule{Chunks: mapx.NewSet[ChunkUkey]()}
}

// ChunkGraph is the bipartite module/chunk membership index. Both directions
// are owned here so that connect and disconnect keep them in step.
//
// ChunkGraph is not safe for concurrent mutation. Concurrent readers are fine,
// and writers that each hold a distinct *ChunkGraphModule obtained through
// ChunkGraphModule may mutate those records in parallel.
type ChunkGraph struct {
	chunks  map[ChunkUkey]*ChunkGraphChunk
	modules map[ModuleID]*ChunkGraphModule
}

// NewChunkGraph creates an empty chunk graph.
func NewChunkGraph() *ChunkGraph {
	return &ChunkGraph{
		chunks:  make(map[ChunkUkey]*ChunkGraphChunk),
		modules: make(map[ModuleID]*ChunkGraphModule),
	}
}

// AddChunk ensures a (possibly empty) record exists for the chunk.
func (g *ChunkGraph) AddChunk(ukey ChunkUkey) *ChunkGraphChunk {
	cgc, ok := g.chunks[ukey]
	if !ok {
		cgc = NewChunkGraphChunk()
		g.chunks[ukey] = cgc
	}

	return cgc
}

// AddModule ensures a (possibly empty) record exists for the module.
func (g *ChunkGraph) AddModule(id ModuleID) *ChunkGraphModule {
	cgm, ok := g.modules[id]
	if !ok {
		cgm = NewChunkGraphModule()
		g.modules[id] = cgm
	}

	return cgm
}

// AddChunkWithChunkGraphChunk installs a prepared chunk record. The module side
// of the index is expected to be linked by the caller.
func (g *ChunkGraph) AddChunkWithChunkGraphChunk(ukey ChunkUkey, cgc *ChunkGraphChunk) {
	g.chunks[ukey] = cgc
}

// ConnectChunkAndModule links a module and a chunk in both directions.
func (g *ChunkGraph) ConnectChunkAndModule(ukey ChunkUkey, id ModuleID) {
	g.AddModule(id).Chunks.Add(ukey)
	g.AddChunk(ukey).Modules.Add(id)
}

// DisconnectChunkAndModule unlinks a module and a chunk in both directions.
func (g *ChunkGraph) DisconnectChunkAndModule(ukey ChunkUkey, id ModuleID) {
	if cgm, ok := g.modules[id]; ok {
		cgm.Chunks.Remove(ukey)
	}

	if cgc, ok := g.chunks[ukey]; ok {
		cgc.Modules.Remove(id)
	}
}

// ChunkGraphModule returns the module's record for direct mutation.
func (g *ChunkGraph) ChunkGraphModule(id ModuleID) (*ChunkGraphModule, bool) {
	cgm, ok := g.modules[id]

	return cgm, ok
}

// ChunkGraphChunk returns the chunk's record.
func (g *ChunkGraph) ChunkGraphChunk(ukey ChunkUkey) (*ChunkGraphChunk, bool) {
	cgc, ok := g.chunks[ukey]

	return cgc, ok
}

// ModuleChunks returns the keys of the chunks containing the module, ascending.
func (g *ChunkGraph) ModuleChunks(id ModuleID) []ChunkUkey {
	cgm, ok := g.modules[id]
	if !ok {
		return nil
	}

	return mapx.SortedKeys(cgm.Chunks)
}

// NumberOfModuleChunks returns how many chunks contain the module.
func (g *ChunkGraph) NumberOfModuleChunks(id ModuleID) int {
	cgm, ok := g.modules[id]
	if !ok {
		return 0
	}

	return cgm.Chunks.Len()
}

// ChunkModules returns the identities of the chunk's modules, ascending.
func (g *ChunkGraph) ChunkModules(ukey ChunkUkey) []ModuleID {
	cgc, ok := g.chunks[ukey]
	if !ok {
		return nil
	}

	return mapx.SortedKeys(cgc.Modules)
}

// ChunkKeys returns every chunk with a record, ascending.
func (g *ChunkGraph) ChunkKeys() []ChunkUkey {
	return mapx.SortedKeys(g.chunks)
}

// ModuleKeys returns every module with a record, ascending.
func (g *ChunkGraph) ModuleKeys() []ModuleID {
	return mapx.SortedKeys(g.modules)
}
