package splitchunks_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/chunksplit/pkg/chunkgraph"
)

const mainGroup chunkgraph.ChunkGroupUkey = 1

func module(id chunkgraph.ModuleID, moduleType chunkgraph.ModuleType, size float64) *chunkgraph.Module {
	return &chunkgraph.Module{
		ID:    id,
		Type:  moduleType,
		Sizes: map[chunkgraph.SourceType]float64{chunkgraph.SourceTypeJavaScript: size},
	}
}

// buildCompilation registers modules and one chunk per membership list.
// Chunk i gets key i+1 and every chunk belongs to a single "main" group.
func buildCompilation(t *testing.T, modules []*chunkgraph.Module, chunks ...[]chunkgraph.ModuleID) *chunkgraph.Compilation {
	t.Helper()

	comp := chunkgraph.NewCompilation()

	for _, m := range modules {
		require.NoError(t, comp.ModuleGraph.Add(m))
	}

	group := &chunkgraph.ChunkGroup{Ukey: mainGroup, Name: "main"}

	for i, members := range chunks {
		chunk := chunkgraph.NewChunk(chunkgraph.ChunkUkey(i+1), chunkgraph.ChunkKindNormal)
		chunk.Name = fmt.Sprintf("entry-%d", i+1)
		chunk.AddGroup(mainGroup)
		require.NoError(t, comp.AddChunk(chunk, chunkgraph.NewChunkGraphChunk()))

		group.Chunks = append(group.Chunks, chunk.Ukey)

		for _, id := range members {
			comp.ChunkGraph.ConnectChunkAndModule(chunk.Ukey, id)
		}
	}

	require.NoError(t, comp.ChunkGroups.Add(group))

	return comp
}

// sharedByTwo builds n JavaScript modules of the given size, all of which
// belong to both chunk 1 and chunk 2.
func sharedByTwo(t *testing.T, n int, size float64) *chunkgraph.Compilation {
	t.Helper()

	modules := make([]*chunkgraph.Module, n)
	ids := make([]chunkgraph.ModuleID, n)

	for i := range n {
		ids[i] = chunkgraph.ModuleID(fmt.Sprintf("./m%04d.js", i))
		modules[i] = module(ids[i], chunkgraph.ModuleTypeJS, size)
	}

	return buildCompilation(t, modules, ids, ids)
}

// newChunks returns the chunks created by the pass, ascending by key.
func newChunks(comp *chunkgraph.Compilation, before int) []*chunkgraph.Chunk {
	keys := comp.Chunks.Keys()

	var created []*chunkgraph.Chunk

	for _, ukey := range keys[before:] {
		chunk, _ := comp.Chunks.Get(ukey)
		created = append(created, chunk)
	}

	return created
}

// spyGraph records rewrite calls in order and can hide modules from lookups.
type spyGraph struct {
	*chunkgraph.Compilation

	hidden map[chunkgraph.ModuleID]bool
	calls  []string
	// splitSeen maps an old chunk to its module set observed at split time.
	splitSeen map[chunkgraph.ChunkUkey][]chunkgraph.ModuleID
}

func newSpyGraph(comp *chunkgraph.Compilation) *spyGraph {
	return &spyGraph{
		Compilation: comp,
		hidden:      map[chunkgraph.ModuleID]bool{},
		splitSeen:   map[chunkgraph.ChunkUkey][]chunkgraph.ModuleID{},
	}
}

func (s *spyGraph) ModuleByIdentifier(id chunkgraph.ModuleID) (*chunkgraph.Module, bool) {
	if s.hidden[id] {
		return nil, false
	}

	return s.Compilation.ModuleByIdentifier(id)
}

func (s *spyGraph) SplitChunk(old chunkgraph.ChunkUkey, child *chunkgraph.Chunk) error {
	s.calls = append(s.calls, "split")

	if _, ok := s.splitSeen[old]; !ok {
		s.splitSeen[old] = s.ChunkGraph.ChunkModules(old)
	}

	return s.Compilation.SplitChunk(old, child)
}

func (s *spyGraph) AddChunk(chunk *chunkgraph.Chunk, cgc *chunkgraph.ChunkGraphChunk) error {
	s.calls = append(s.calls, "add")

	return s.Compilation.AddChunk(chunk, cgc)
}

func (s *spyGraph) DisconnectChunkAndModule(ukey chunkgraph.ChunkUkey, id chunkgraph.ModuleID) {
	s.calls = append(s.calls, "disconnect")
	s.Compilation.DisconnectChunkAndModule(ukey, id)
}
