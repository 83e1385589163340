package splitchunks

import (
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/chunksplit/pkg/alg/mapx"
	"github.com/Sumatoshi-tech/chunksplit/pkg/chunkgraph"
)

// ChunkInfo is one batch of shared modules destined for a single new chunk.
type ChunkInfo struct {
	Modules []SharedModule
	// RawSize is the unweighted JavaScript size of the batch.
	RawSize float64
	// Window is the index of the count-capped window the batch came from.
	Window int
	// Resplit is set when the window exceeded the size cap and was cut by size.
	Resplit bool
}

// ModuleIDs returns the batch's module identities in batch order.
func (c ChunkInfo) ModuleIDs() []chunkgraph.ModuleID {
	ids := make([]chunkgraph.ModuleID, len(c.Modules))
	for i, m := range c.Modules {
		ids[i] = m.Module
	}

	return ids
}

// Window is a count-capped slice of the sorted shared modules.
type Window struct {
	Modules      []SharedModule
	RawSize      float64
	WeightedSize float64
}

// sizeCoefficient estimates how much a module grows after transformation.
func sizeCoefficient(t chunkgraph.ModuleType) float64 {
	switch t {
	case chunkgraph.ModuleTypeJsx,
		chunkgraph.ModuleTypeJsxDynamic,
		chunkgraph.ModuleTypeJsxEsm,
		chunkgraph.ModuleTypeTsx:
		return expandingCoefficient
	default:
		return defaultCoefficient
	}
}

type grouper struct {
	graph      Graph
	maxModules int
	maxSize    float64
	workers    int
}

// GroupSharedModules partitions sorted shared modules into batches: first
// into windows of at most maxModules, then each window whose weighted size
// estimate exceeds maxSize is cut greedily by raw size. It returns the
// windows alongside the batches, both in sorted order.
func GroupSharedModules(
	g Graph, sorted []SharedModule, maxModules int, maxSize float64, workers int,
) ([]Window, []ChunkInfo, error) {
	gr := grouper{graph: g, maxModules: maxModules, maxSize: maxSize, workers: max(1, workers)}

	return gr.group(sorted)
}

func (gr grouper) group(sorted []SharedModule) ([]Window, []ChunkInfo, error) {
	parts := mapx.Windows(sorted, gr.maxModules)
	windows := make([]Window, len(parts))
	rawSizes := make([][]float64, len(parts))
	errs := make([]error, len(parts))

	var eg errgroup.Group

	eg.SetLimit(gr.workers)

	for i, part := range parts {
		eg.Go(func() error {
			windows[i], rawSizes[i], errs[i] = gr.measure(part)

			return nil
		})
	}

	_ = eg.Wait() // errors are collected per window to report the first in order

	err := firstError(errs)
	if err != nil {
		return nil, nil, err
	}

	var batches []ChunkInfo

	for i, window := range windows {
		if window.WeightedSize <= gr.maxSize {
			batches = append(batches, ChunkInfo{Modules: window.Modules, RawSize: window.RawSize, Window: i})

			continue
		}

		batches = append(batches, gr.splitBySize(i, window.Modules, rawSizes[i])...)
	}

	return windows, batches, nil
}

// measure computes the raw and weighted size of one window.
func (gr grouper) measure(modules []SharedModule) (Window, []float64, error) {
	window := Window{Modules: modules}
	sizes := make([]float64, len(modules))

	for i, shared := range modules {
		module, ok := gr.graph.ModuleByIdentifier(shared.Module)
		if !ok {
			return Window{}, nil, newInvariantError(shared.Module, "shared module is missing from the module graph", nil)
		}

		size := module.Size(chunkgraph.SourceTypeJavaScript)
		sizes[i] = size
		window.RawSize += size
		window.WeightedSize += size * sizeCoefficient(module.Type)
	}

	return window, sizes, nil
}

// splitBySize walks a window in order, closing the current batch whenever the
// next module would push its raw size past the cap. The tail is emitted as is.
// A single module larger than the cap forms a batch of its own.
func (gr grouper) splitBySize(window int, modules []SharedModule, sizes []float64) []ChunkInfo {
	var (
		batches []ChunkInfo
		start   int
		acc     float64
	)

	for i, size := range sizes {
		if i > start && acc+size > gr.maxSize {
			batches = append(batches, ChunkInfo{Modules: modules[start:i:i], RawSize: acc, Window: window, Resplit: true})
			start, acc = i, 0
		}

		acc += size
	}

	return append(batches, ChunkInfo{Modules: modules[start:], RawSize: acc, Window: window, Resplit: true})
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}
