// Package snapshot loads and saves compilation snapshots: the module graph,
// chunks, chunk groups and chunk membership of one build, as YAML or JSON,
// optionally wrapped in an LZ4 frame.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/chunksplit/pkg/alg/mapx"
	"github.com/Sumatoshi-tech/chunksplit/pkg/chunkgraph"
)

// Snapshot errors.
var (
	ErrUnknownModule = errors.New("chunk references unknown module")
	ErrUnknownGroup  = errors.New("chunk references unknown group")
)

const (
	extLZ4  = ".lz4"
	extJSON = ".json"
)

// Document is the serialized form of a compilation.
type Document struct {
	Modules []ModuleRecord `json:"modules" yaml:"modules"`
	Chunks  []ChunkRecord  `json:"chunks"  yaml:"chunks"`
	Groups  []GroupRecord  `json:"groups"  yaml:"groups"`
}

// ModuleRecord is one module.
type ModuleRecord struct {
	Sizes map[chunkgraph.SourceType]float64 `json:"sizes,omitempty" yaml:"sizes,omitempty"`
	ID    chunkgraph.ModuleID               `json:"id"              yaml:"id"`
	Type  chunkgraph.ModuleType             `json:"type,omitempty"  yaml:"type,omitempty"`
}

// ChunkRecord is one chunk and its module membership.
type ChunkRecord struct {
	Name        string                      `json:"name,omitempty"          yaml:"name,omitempty"`
	Kind        chunkgraph.ChunkKind        `json:"kind,omitempty"          yaml:"kind,omitempty"`
	Reasons     []string                    `json:"reasons,omitempty"       yaml:"reasons,omitempty"`
	IDNameHints []string                    `json:"id_name_hints,omitempty" yaml:"id_name_hints,omitempty"`
	Modules     []chunkgraph.ModuleID       `json:"modules,omitempty"       yaml:"modules,omitempty"`
	Groups      []chunkgraph.ChunkGroupUkey `json:"groups,omitempty"        yaml:"groups,omitempty"`
	SplitFrom   []chunkgraph.ChunkUkey      `json:"split_from,omitempty"    yaml:"split_from,omitempty"`
	Ukey        chunkgraph.ChunkUkey        `json:"ukey"                    yaml:"ukey"`
}

// GroupRecord is one chunk group in load order.
type GroupRecord struct {
	Name   string                    `json:"name,omitempty"   yaml:"name,omitempty"`
	Chunks []chunkgraph.ChunkUkey    `json:"chunks,omitempty" yaml:"chunks,omitempty"`
	Ukey   chunkgraph.ChunkGroupUkey `json:"ukey"             yaml:"ukey"`
}

// Load reads a snapshot file. Files ending in .lz4 are decompressed first.
func Load(path string) (*chunkgraph.Compilation, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	compilation, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	return compilation, nil
}

// ReadFile returns the raw, decompressed snapshot bytes.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if isCompressed(path) {
		r = newFrameReader(f)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	return data, nil
}

// Decode validates raw snapshot bytes against the schema and builds a
// compilation from them. The resulting graph is checked for consistency.
func Decode(data []byte) (*chunkgraph.Compilation, error) {
	violations, err := ValidateSchema(data)
	if err != nil {
		return nil, err
	}

	if len(violations) > 0 {
		v := violations[0]

		return nil, fmt.Errorf("%w: %s: %s (%d violations)", ErrSchema, v.Field, v.Description, len(violations))
	}

	var doc Document

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err = dec.Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	return Build(&doc)
}

// Build turns a document into a compilation.
func Build(doc *Document) (*chunkgraph.Compilation, error) {
	compilation := chunkgraph.NewCompilation()

	for _, rec := range doc.Modules {
		moduleType := rec.Type
		if moduleType == "" {
			moduleType = InferModuleType(rec.ID)
		}

		err := compilation.ModuleGraph.Add(&chunkgraph.Module{ID: rec.ID, Type: moduleType, Sizes: rec.Sizes})
		if err != nil {
			return nil, err
		}
	}

	for _, rec := range doc.Groups {
		err := compilation.ChunkGroups.Add(&chunkgraph.ChunkGroup{
			Ukey:   rec.Ukey,
			Name:   rec.Name,
			Chunks: append([]chunkgraph.ChunkUkey(nil), rec.Chunks...),
		})
		if err != nil {
			return nil, err
		}
	}

	for _, rec := range doc.Chunks {
		err := addChunk(compilation, rec)
		if err != nil {
			return nil, err
		}
	}

	err := compilation.Validate()
	if err != nil {
		return nil, err
	}

	return compilation, nil
}

func addChunk(compilation *chunkgraph.Compilation, rec ChunkRecord) error {
	kind := rec.Kind
	if kind == "" {
		kind = chunkgraph.ChunkKindNormal
	}

	chunk := chunkgraph.NewChunk(rec.Ukey, kind)
	chunk.Name = rec.Name
	chunk.Reasons = rec.Reasons
	chunk.IDNameHints = rec.IDNameHints
	chunk.SplitFrom = rec.SplitFrom

	for _, group := range rec.Groups {
		if _, ok := compilation.ChunkGroups.Get(group); !ok {
			return fmt.Errorf("%w: chunk %d, group %d", ErrUnknownGroup, rec.Ukey, group)
		}

		chunk.AddGroup(group)
	}

	err := compilation.AddChunk(chunk, chunkgraph.NewChunkGraphChunk())
	if err != nil {
		return err
	}

	for _, id := range rec.Modules {
		if _, ok := compilation.ModuleByIdentifier(id); !ok {
			return fmt.Errorf("%w: chunk %d, module %s", ErrUnknownModule, rec.Ukey, id)
		}

		compilation.ChunkGraph.ConnectChunkAndModule(chunk.Ukey, id)
	}

	return nil
}

// FromCompilation serializes a compilation with every list sorted by key.
func FromCompilation(compilation *chunkgraph.Compilation) *Document {
	doc := &Document{Modules: []ModuleRecord{}, Chunks: []ChunkRecord{}, Groups: []GroupRecord{}}

	for _, id := range compilation.ModuleIdentifiers() {
		module, _ := compilation.ModuleByIdentifier(id)
		doc.Modules = append(doc.Modules, ModuleRecord{ID: id, Type: module.Type, Sizes: module.Sizes})
	}

	for _, ukey := range compilation.Chunks.Keys() {
		chunk, _ := compilation.Chunks.Get(ukey)
		doc.Chunks = append(doc.Chunks, ChunkRecord{
			Ukey:        ukey,
			Name:        chunk.Name,
			Kind:        chunk.Kind,
			Reasons:     chunk.Reasons,
			IDNameHints: chunk.IDNameHints,
			Modules:     compilation.ChunkGraph.ChunkModules(ukey),
			Groups:      mapx.SortedKeys(chunk.Groups),
			SplitFrom:   chunk.SplitFrom,
		})
	}

	for _, ukey := range compilation.ChunkGroups.Keys() {
		group, _ := compilation.ChunkGroups.Get(ukey)
		doc.Groups = append(doc.Groups, GroupRecord{Ukey: ukey, Name: group.Name, Chunks: group.Chunks})
	}

	return doc
}

// Encode writes a compilation as YAML.
func Encode(w io.Writer, compilation *chunkgraph.Compilation) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err := enc.Encode(FromCompilation(compilation))
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	return enc.Close()
}

// EncodeJSON writes a compilation as indented JSON.
func EncodeJSON(w io.Writer, compilation *chunkgraph.Compilation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(FromCompilation(compilation))
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	return nil
}

// Save writes a compilation to path. The format follows the extension:
// .json writes JSON, anything else YAML, and a trailing .lz4 compresses.
func Save(path string, compilation *chunkgraph.Compilation) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}

	defer func() {
		err = errors.Join(err, f.Close())
	}()

	var w io.WriteCloser = nopWriteCloser{f}
	if isCompressed(path) {
		w, err = newFrameWriter(f, lz4.Level5)
		if err != nil {
			return err
		}
	}

	encode := Encode
	if strings.EqualFold(filepath.Ext(strings.TrimSuffix(path, extLZ4)), extJSON) {
		encode = EncodeJSON
	}

	err = encode(w, compilation)
	if err != nil {
		return err
	}

	return w.Close()
}

func isCompressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), extLZ4)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
