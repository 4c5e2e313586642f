// Package bundle groups the basic blocks of a function into connectivity
// bundles: sets of blocks that are linked by control-flow edges, directly or
// transitively, ignoring edge direction. Bundles are weak-connectivity
// classes, not strongly connected components; two blocks land in the same
// bundle even when control can only flow one way between them.
package bundle

import (
	"fmt"

	"github.com/qvbps/go-flow-classes/pkg/blocks"
	"github.com/qvbps/go-flow-classes/pkg/eqclass"
)

// Bundle is one connectivity class of basic blocks. IDs are dense and
// assigned in the order a bundle's first block was discovered; BlockIDs keep
// block discovery order.
type Bundle struct {
	ID            int      `json:"id" msgpack:"id"`
	BlockIDs      []string `json:"block_ids" msgpack:"block_ids"`
	ContainsEntry bool     `json:"contains_entry" msgpack:"contains_entry"`
}

// Analysis is the bundling result for one function, including the raw block
// and edge inventory it was computed from.
type Analysis struct {
	FunctionName string              `json:"function_name" msgpack:"function_name"`
	Blocks       []blocks.BasicBlock `json:"blocks" msgpack:"blocks"`
	Edges        []blocks.Edge       `json:"edges" msgpack:"edges"`
	Bundles      []Bundle            `json:"bundles" msgpack:"bundles"`
	ClassCount   int                 `json:"class_count" msgpack:"class_count"`
}

// Build registers every block, connects every edge, and reports the
// resulting bundles. Blocks referenced by an edge must appear in fb.Blocks.
func Build(fb *blocks.FunctionBlocks) (*Analysis, error) {
	classes := eqclass.New[string]()

	for _, blk := range fb.Blocks {
		if err := classes.Add(blk.ID); err != nil {
			return nil, fmt.Errorf("registering block %s: %w", blk.ID, err)
		}
	}
	for _, e := range fb.Edges {
		if err := classes.Connect(e.Source, e.Target); err != nil {
			return nil, fmt.Errorf("connecting %s -> %s: %w", e.Source, e.Target, err)
		}
	}

	// Class tokens are opaque root indexes; renumber them densely in the
	// order each class first appears in the block list.
	tokenToBundle := make(map[int]int)
	bundles := make([]Bundle, 0, classes.Count())
	for _, blk := range fb.Blocks {
		token, err := classes.Find(blk.ID)
		if err != nil {
			return nil, err
		}
		idx, ok := tokenToBundle[token]
		if !ok {
			idx = len(bundles)
			tokenToBundle[token] = idx
			bundles = append(bundles, Bundle{ID: idx})
		}
		bundles[idx].BlockIDs = append(bundles[idx].BlockIDs, blk.ID)
		if blk.ID == fb.EntryID {
			bundles[idx].ContainsEntry = true
		}
	}

	return &Analysis{
		FunctionName: fb.FunctionName,
		Blocks:       fb.Blocks,
		Edges:        fb.Edges,
		Bundles:      bundles,
		ClassCount:   classes.Count(),
	}, nil
}
