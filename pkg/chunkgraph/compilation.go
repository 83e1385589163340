package chunkgraph

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/chunksplit/pkg/alg/mapx"
)

// ErrInconsistentGraph is returned by Validate when the indices disagree.
var ErrInconsistentGraph = errors.New("inconsistent chunk graph")

// Compilation is one mutable snapshot of a build's module and chunk graphs.
type Compilation struct {
	ModuleGraph *ModuleGraph
	ChunkGraph  *ChunkGraph
	Chunks      *ChunkRegistry
	ChunkGroups *ChunkGroupRegistry

	lastUkey ChunkUkey
}

// NewCompilation creates an empty compilation.
func NewCompilation() *Compilation {
	return &Compilation{
		ModuleGraph: NewModuleGraph(),
		ChunkGraph:  NewChunkGraph(),
		Chunks:      NewChunkRegistry(),
		ChunkGroups: NewChunkGroupRegistry(),
	}
}

// ModuleIdentifiers returns every module identity, ascending.
func (c *Compilation) ModuleIdentifiers() []ModuleID {
	return c.ModuleGraph.Identifiers()
}

// ModuleByIdentifier looks a module up in the module graph.
func (c *Compilation) ModuleByIdentifier(id ModuleID) (*Module, bool) {
	return c.ModuleGraph.ModuleByIdentifier(id)
}

// ModuleChunks returns the chunks referencing a module, ascending.
func (c *Compilation) ModuleChunks(id ModuleID) []ChunkUkey {
	return c.ChunkGraph.ModuleChunks(id)
}

// NumberOfModuleChunks returns how many chunks contain the module.
func (c *Compilation) NumberOfModuleChunks(id ModuleID) int {
	return c.ChunkGraph.NumberOfModuleChunks(id)
}

// ChunkGraphModule returns the module's chunk-set record.
func (c *Compilation) ChunkGraphModule(id ModuleID) (*ChunkGraphModule, bool) {
	return c.ChunkGraph.ChunkGraphModule(id)
}

// DisconnectChunkAndModule removes a module from a chunk in both directions.
func (c *Compilation) DisconnectChunkAndModule(ukey ChunkUkey, id ModuleID) {
	c.ChunkGraph.DisconnectChunkAndModule(ukey, id)
}

// NewChunk allocates a chunk with a fresh key. The chunk is not registered
// until AddChunk is called. Keys are handed out in call order and never wrap:
// once the highest key is in use, ErrChunkKeysExhausted is returned.
func (c *Compilation) NewChunk(kind ChunkKind) (*Chunk, error) {
	last := max(c.lastUkey, c.Chunks.MaxUkey())
	if last == MaxChunkUkey {
		return nil, ErrChunkKeysExhausted
	}

	c.lastUkey = last + 1

	return NewChunk(c.lastUkey, kind), nil
}

// AddChunk registers a chunk together with its chunk graph record.
func (c *Compilation) AddChunk(chunk *Chunk, cgc *ChunkGraphChunk) error {
	err := c.Chunks.Add(chunk)
	if err != nil {
		return err
	}

	c.ChunkGraph.AddChunkWithChunkGraphChunk(chunk.Ukey, cgc)

	return nil
}

// SplitChunk records that child was derived from the chunk old. The child is
// inserted right before old in each of old's groups, joins those groups and
// inherits old's id-name hints.
func (c *Compilation) SplitChunk(old ChunkUkey, child *Chunk) error {
	parent, ok := c.Chunks.Get(old)
	if !ok {
		return fmt.Errorf("split: %w: %d", ErrUnknownChunk, old)
	}

	for _, groupUkey := range mapx.SortedKeys(parent.Groups) {
		group, found := c.ChunkGroups.Get(groupUkey)
		if !found {
			return fmt.Errorf("split: %w: %d", ErrUnknownChunkGroup, groupUkey)
		}

		_, err := group.InsertChunk(child.Ukey, parent.Ukey)
		if err != nil {
			return fmt.Errorf("split: %w", err)
		}

		child.AddGroup(group.Ukey)
	}

	child.IDNameHints = mapx.Unique(append(child.IDNameHints, parent.IDNameHints...))

	if !slices.Contains(child.SplitFrom, parent.Ukey) {
		child.SplitFrom = append(child.SplitFrom, parent.Ukey)
	}

	return nil
}

// Validate cross-checks the module/chunk indices and the chunk registries.
func (c *Compilation) Validate() error {
	graph := c.ChunkGraph

	for _, id := range graph.ModuleKeys() {
		if _, ok := c.ModuleGraph.ModuleByIdentifier(id); !ok {
			return fmt.Errorf("%w: module %s is not in the module graph", ErrInconsistentGraph, id)
		}

		for _, ukey := range graph.ModuleChunks(id) {
			cgc, ok := graph.ChunkGraphChunk(ukey)
			if !ok || !cgc.Modules.Has(id) {
				return fmt.Errorf("%w: module %s lists chunk %d which does not list it", ErrInconsistentGraph, id, ukey)
			}
		}
	}

	for _, ukey := range graph.ChunkKeys() {
		if _, ok := c.Chunks.Get(ukey); !ok {
			return fmt.Errorf("%w: chunk %d is not registered", ErrInconsistentGraph, ukey)
		}

		for _, id := range graph.ChunkModules(ukey) {
			cgm, ok := graph.ChunkGraphModule(id)
			if !ok || !cgm.Chunks.Has(ukey) {
				return fmt.Errorf("%w: chunk %d lists module %s which does not list it", ErrInconsistentGraph, ukey, id)
			}
		}
	}

	return c.validateGroups()
}

func (c *Compilation) validateGroups() error {
	for _, ukey := range c.Chunks.Keys() {
		chunk, _ := c.Chunks.Get(ukey)

		for _, groupUkey := range mapx.SortedKeys(chunk.Groups) {
			group, ok := c.ChunkGroups.Get(groupUkey)
			if !ok || !slices.Contains(group.Chunks, ukey) {
				return fmt.Errorf("%w: chunk %d claims group %d which does not list it", ErrInconsistentGraph, ukey, groupUkey)
			}
		}
	}

	for _, groupUkey := range c.ChunkGroups.Keys() {
		group, _ := c.ChunkGroups.Get(groupUkey)

		for _, ukey := range group.Chunks {
			if _, ok := c.Chunks.Get(ukey); !ok {
				return fmt.Errorf("%w: group %d lists unknown chunk %d", ErrInconsistentGraph, groupUkey, ukey)
			}
		}
	}

	return nil
}

// Manifest renders chunk membership as stable text, one chunk per line,
// for diffing two snapshots.
func (c *Compilation) Manifest() string {
	var sb strings.Builder

	for _, ukey := range c.Chunks.Keys() {
		chunk, _ := c.Chunks.Get(ukey)
		modules := c.ChunkGraph.ChunkModules(ukey)

		names := make([]string, len(modules))
		for i, id := range modules {
			names[i] = string(id)
		}

		fmt.Fprintf(&sb, "%s: [%s]\n", chunk.DisplayName(), strings.Join(names, ", "))
	}

	return sb.String()
}
