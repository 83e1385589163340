package snapshot

import (
	"path"
	"strings"

	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/chunksplit/pkg/chunkgraph"
)

// Loaders and query strings are stripped before inference.
func moduleFileName(id chunkgraph.ModuleID) string {
	name := string(id)

	if idx := strings.LastIndex(name, "!"); idx >= 0 {
		name = name[idx+1:]
	}

	if idx := strings.IndexAny(name, "?#"); idx >= 0 {
		name = name[:idx]
	}

	return path.Base(name)
}

// InferModuleType guesses a module type from its identity when a snapshot
// omits it. Extensions that select a transform are matched first; the rest
// goes through language detection.
func InferModuleType(id chunkgraph.ModuleID) chunkgraph.ModuleType {
	name := moduleFileName(id)

	switch strings.ToLower(path.Ext(name)) {
	case "":
		return chunkgraph.ModuleTypeJS
	case ".jsx":
		return chunkgraph.ModuleTypeJsx
	case ".tsx":
		return chunkgraph.ModuleTypeTsx
	case ".mjs":
		return chunkgraph.ModuleTypeJSEsm
	case ".cjs":
		return chunkgraph.ModuleTypeJSDynamic
	case ".ts", ".mts", ".cts":
		return chunkgraph.ModuleTypeTs
	}

	lang, _ := enry.GetLanguageByExtension(name)

	switch lang {
	case "JavaScript":
		return chunkgraph.ModuleTypeJS
	case "TypeScript":
		return chunkgraph.ModuleTypeTs
	case "TSX":
		return chunkgraph.ModuleTypeTsx
	case "CSS", "SCSS", "Less", "Sass", "Stylus":
		return chunkgraph.ModuleTypeCSS
	case "JSON", "JSON5", "JSON with Comments":
		return chunkgraph.ModuleTypeJSON
	default:
		return chunkgraph.ModuleTypeAsset
	}
}

// IsVendor reports whether a module comes from a third-party directory such
// as node_modules.
func IsVendor(id chunkgraph.ModuleID) bool {
	name := string(id)
	if idx := strings.LastIndex(name, "!"); idx >= 0 {
		name = name[idx+1:]
	}

	return enry.IsVendor(strings.TrimPrefix(name, "./"))
}
