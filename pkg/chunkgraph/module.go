// Package chunkgraph models the parts of a bundler compilation that chunk
// optimization passes work on: the module graph, chunks and chunk groups, and
// the bidirectional module/chunk membership index.
package chunkgraph

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/chunksplit/pkg/alg/mapx"
)

// ErrDuplicateModule is returned when a module identity is registered twice.
var ErrDuplicateModule = errors.New("duplicate module")

// ModuleID is the canonical identity of a module.
type ModuleID string

// ModuleType is the parser/generator kind of a module.
type ModuleType string

// Module types.
const (
	ModuleTypeJS         ModuleType = "javascript/auto"
	ModuleTypeJSDynamic  ModuleType = "javascript/dynamic"
	ModuleTypeJSEsm      ModuleType = "javascript/esm"
	ModuleTypeJsx        ModuleType = "jsx"
	ModuleTypeJsxDynamic ModuleType = "jsx/dynamic"
	ModuleTypeJsxEsm     ModuleType = "jsx/esm"
	ModuleTypeTsx        ModuleType = "tsx"
	ModuleTypeTs         ModuleType = "ts"
	ModuleTypeCSS        ModuleType = "css"
	ModuleTypeJSON       ModuleType = "json"
	ModuleTypeAsset      ModuleType = "asset"
)

// ModuleTypes lists every known module type.
func ModuleTypes() []ModuleType {
	return []ModuleType{
		ModuleTypeJS, ModuleTypeJSDynamic, ModuleTypeJSEsm,
		ModuleTypeJsx, ModuleTypeJsxDynamic, ModuleTypeJsxEsm,
		ModuleTypeTsx, ModuleTypeTs,
		ModuleTypeCSS, ModuleTypeJSON, ModuleTypeAsset,
	}
}

// SourceType is an output source kind a module can contribute to.
type SourceType string

// Source types.
const (
	SourceTypeJavaScript SourceType = "javascript"
	SourceTypeCSS        SourceType = "css"
	SourceTypeAsset      SourceType = "asset"
)

// Module is a single compiled unit.
type Module struct {
	Sizes map[SourceType]float64
	ID    ModuleID
	Type  ModuleType
}

// Size returns the module's size for the given source type, or zero when the
// module produces nothing of that type.
func (m *Module) Size(st SourceType) float64 {
	return m.Sizes[st]
}

// ModuleGraph holds every module of a compilation keyed by identity.
// It is safe for concurrent readers once populated.
type ModuleGraph struct {
	modules map[ModuleID]*Module
}

// NewModuleGraph creates an empty module graph.
func NewModuleGraph() *ModuleGraph {
	return &ModuleGraph{modules: make(map[ModuleID]*Module)}
}

// Add registers a module.
func (g *ModuleGraph) Add(m *Module) error {
	if _, ok := g.modules[m.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateModule, m.ID)
	}

	g.modules[m.ID] = m

	return nil
}

// ModuleByIdentifier looks a module up by identity.
func (g *ModuleGraph) ModuleByIdentifier(id ModuleID) (*Module, bool) {
	m, ok := g.modules[id]

	return m, ok
}

// Identifiers returns all module identities in ascending order.
func (g *ModuleGraph) Identifiers() []ModuleID {
	return mapx.SortedKeys(g.modules)
}

// Len returns the number of modules.
func (g *ModuleGraph) Len() int {
	return len(g.modules)
}
