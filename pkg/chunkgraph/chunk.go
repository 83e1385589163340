package chunkgraph

import (
	"errors"
	"fmt"
	"math"

	"github.com/Sumatoshi-tech/chunksplit/pkg/alg/mapx"
)

// Chunk registry errors.
var (
	ErrDuplicateChunk     = errors.New("duplicate chunk")
	ErrUnknownChunk       = errors.New("unknown chunk")
	ErrChunkKeysExhausted = errors.New("chunk keys exhausted")
)

// ChunkUkey uniquely identifies a chunk within a compilation.
type ChunkUkey uint32

// MaxChunkUkey is the highest chunk key.
const MaxChunkUkey ChunkUkey = math.MaxUint32

// ChunkKind distinguishes regular output chunks from special ones.
type ChunkKind string

// Chunk kinds.
const (
	ChunkKindNormal    ChunkKind = "normal"
	ChunkKindHotUpdate ChunkKind = "hot-update"
)

// Chunk is an output bundling unit. Membership lives in the ChunkGraph, not here.
type Chunk struct {
	Groups      mapx.Set[ChunkGroupUkey]
	Name        string
	Kind        ChunkKind
	Reasons     []string
	IDNameHints []string
	// SplitFrom lists the chunks this one was derived from, in split order.
	SplitFrom []ChunkUkey
	Ukey      ChunkUkey
}

// NewChunk creates an unnamed chunk with the given key and kind.
func NewChunk(ukey ChunkUkey, kind ChunkKind) *Chunk {
	return &Chunk{
		Ukey:   ukey,
		Kind:   kind,
		Groups: mapx.NewSet[ChunkGroupUkey](),
	}
}

// AddGroup records that the chunk belongs to a chunk group.
func (c *Chunk) AddGroup(group ChunkGroupUkey) {
	if c.Groups == nil {
		c.Groups = mapx.NewSet[ChunkGroupUkey]()
	}

	c.Groups.Add(group)
}

// DisplayName returns the chunk name, or its key when unnamed.
func (c *Chunk) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}

	return fmt.Sprintf("#%d", c.Ukey)
}

// ChunkRegistry is the authoritative chunk-by-key table.
type ChunkRegistry struct {
	chunks map[ChunkUkey]*Chunk
}

// NewChunkRegistry creates an empty registry.
func NewChunkRegistry() *ChunkRegistry {
	return &ChunkRegistry{chunks: make(map[ChunkUkey]*Chunk)}
}

// Add registers a chunk.
func (r *ChunkRegistry) Add(c *Chunk) error {
	if _, ok := r.chunks[c.Ukey]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateChunk, c.Ukey)
	}

	r.chunks[c.Ukey] = c

	return nil
}

// Get returns the chunk with the given key.
func (r *ChunkRegistry) Get(ukey ChunkUkey) (*Chunk, bool) {
	c, ok := r.chunks[ukey]

	return c, ok
}

// Keys returns every registered key in ascending order.
func (r *ChunkRegistry) Keys() []ChunkUkey {
	return mapx.SortedKeys(r.chunks)
}

// Len returns the number of registered chunks.
func (r *ChunkRegistry) Len() int {
	return len(r.chunks)
}

// MaxUkey returns the highest registered key, or 0 when empty.
func (r *ChunkRegistry) MaxUkey() ChunkUkey {
	var highest ChunkUkey

	for ukey := range r.chunks {
		highest = max(highest, ukey)
	}

	return highest
}
