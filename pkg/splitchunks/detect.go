package splitchunks

import (
	"cmp"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/chunksplit/pkg/chunkgraph"
)

// SharedModule is a module referenced by more than one chunk, together with
// the chunks that referenced it before the pass.
type SharedModule struct {
	Module    chunkgraph.ModuleID
	RefChunks []chunkgraph.ChunkUkey
}

// RefCount returns the number of chunks that referenced the module.
func (m SharedModule) RefCount() int {
	return len(m.RefChunks)
}

// DetectSharedModules scans every module and returns those referenced by more
// than one chunk. The scan is read-only and sharded over at most workers
// goroutines; the result order is unspecified.
func DetectSharedModules(g Graph, workers int) []SharedModule {
	ids := g.ModuleIdentifiers()
	if len(ids) == 0 {
		return nil
	}

	workers = max(1, min(workers, len(ids)))
	shardSize := (len(ids) + workers - 1) / workers
	shards := make([][]SharedModule, workers)

	var eg errgroup.Group

	for shard := range workers {
		start := shard * shardSize
		end := min(start+shardSize, len(ids))

		if start >= end {
			continue
		}

		eg.Go(func() error {
			shards[shard] = detectShard(g, ids[start:end])

			return nil
		})
	}

	_ = eg.Wait() // shard workers never fail

	return slices.Concat(shards...)
}

func detectShard(g Graph, ids []chunkgraph.ModuleID) []SharedModule {
	var found []SharedModule

	for _, id := range ids {
		if g.NumberOfModuleChunks(id) > 1 {
			found = append(found, SharedModule{Module: id, RefChunks: g.ModuleChunks(id)})
		}
	}

	return found
}

// SortSharedModules orders modules by descending reference count, then by
// ascending identity, so the same graph always yields the same batches.
func SortSharedModules(modules []SharedModule) {
	slices.SortFunc(modules, func(a, b SharedModule) int {
		if c := cmp.Compare(b.RefCount(), a.RefCount()); c != 0 {
			return c
		}

		return cmp.Compare(a.Module, b.Module)
	})
}
