package chunkgraph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Sumatoshi-tech/chunksplit/pkg/alg/mapx"
)

// Chunk group errors.
var (
	ErrDuplicateChunkGroup = errors.New("duplicate chunk group")
	ErrUnknownChunkGroup   = errors.New("unknown chunk group")
	ErrChunkNotInGroup     = errors.New("chunk is not part of group")
)

// ChunkGroupUkey uniquely identifies a chunk group within a compilation.
type ChunkGroupUkey uint32

// ChunkGroup is an ordered list of chunks loaded together.
// Earlier chunks load first.
type ChunkGroup struct {
	Name   string
	Chunks []ChunkUkey
	Ukey   ChunkGroupUkey
}

// InsertChunk places chunk directly before the chunk "before". A chunk that is
// already present later in the list is moved up; one already present earlier
// stays where it is. Reports whether the chunk was newly added.
func (g *ChunkGroup) InsertChunk(chunk, before ChunkUkey) (bool, error) {
	idx := slices.Index(g.Chunks, before)
	if idx < 0 {
		return false, fmt.Errorf("%w: chunk %d, group %d", ErrChunkNotInGroup, before, g.Ukey)
	}

	oldIdx := slices.Index(g.Chunks, chunk)

	switch {
	case oldIdx < 0:
		g.Chunks = slices.Insert(g.Chunks, idx, chunk)

		return true, nil
	case oldIdx > idx:
		g.Chunks = slices.Delete(g.Chunks, oldIdx, oldIdx+1)
		g.Chunks = slices.Insert(g.Chunks, idx, chunk)
	}

	return false, nil
}

// ChunkGroupRegistry is the chunk-group-by-key table.
type ChunkGroupRegistry struct {
	groups map[ChunkGroupUkey]*ChunkGroup
}

// NewChunkGroupRegistry creates an empty registry.
func NewChunkGroupRegistry() *ChunkGroupRegistry {
	return &ChunkGroupRegistry{groups: make(map[ChunkGroupUkey]*ChunkGroup)}
}

// Add registers a chunk group.
func (r *ChunkGroupRegistry) Add(g *ChunkGroup) error {
	if _, ok := r.groups[g.Ukey]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateChunkGroup, g.Ukey)
	}

	r.groups[g.Ukey] = g

	return nil
}

// Get returns the group with the given key.
func (r *ChunkGroupRegistry) Get(ukey ChunkGroupUkey) (*ChunkGroup, bool) {
	g, ok := r.groups[ukey]

	return g, ok
}

// Keys returns every registered key in ascending order.
func (r *ChunkGroupRegistry) Keys() []ChunkGroupUkey {
	return mapx.SortedKeys(r.groups)
}

// Len returns the number of registered groups.
func (r *ChunkGroupRegistry) Len() int {
	return len(r.groups)
}
