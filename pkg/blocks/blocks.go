// Package blocks discovers basic blocks and control-flow edges in source
// files. It parses a function with tree-sitter, splits its body into blocks
// at branch, loop, and return boundaries, and emits the directed jump edges
// between them. The output feeds the connectivity bundling pass.
package blocks

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// BlockKind classifies a basic block.
type BlockKind string

const (
	BlockEntry  BlockKind = "entry"  // synthetic function entry
	BlockPlain  BlockKind = "plain"  // straight-line statements
	BlockBranch BlockKind = "branch" // conditional branch head
	BlockLoop   BlockKind = "loop"   // loop header
	BlockReturn BlockKind = "return" // ends with a return statement
	BlockExit   BlockKind = "exit"   // synthetic function exit
)

// EdgeKind classifies a control-flow edge.
type EdgeKind string

const (
	EdgeFallthrough EdgeKind = "fallthrough" // unconditional transition
	EdgeTrue        EdgeKind = "true"        // branch taken
	EdgeFalse       EdgeKind = "false"       // branch not taken
	EdgeBack        EdgeKind = "back"        // loop back edge
)

// BasicBlock is a maximal run of statements with a single entry and exit.
type BasicBlock struct {
	ID         string    `json:"id" msgpack:"id"`
	Kind       BlockKind `json:"kind" msgpack:"kind"`
	StartLine  int       `json:"start_line" msgpack:"start_line"`
	EndLine    int       `json:"end_line" msgpack:"end_line"`
	Statements []string  `json:"statements" msgpack:"statements"`
}

// Edge is a directed control-flow transition between two blocks.
type Edge struct {
	Source string   `json:"source" msgpack:"source"`
	Target string   `json:"target" msgpack:"target"`
	Kind   EdgeKind `json:"kind" msgpack:"kind"`
}

// FunctionBlocks is the block/edge inventory of one function. Blocks appear
// in discovery order; the bundling pass relies on that order for stable
// output.
type FunctionBlocks struct {
	FunctionName string       `json:"function_name" msgpack:"function_name"`
	Blocks       []BasicBlock `json:"blocks" msgpack:"blocks"`
	Edges        []Edge       `json:"edges" msgpack:"edges"`
	EntryID      string       `json:"entry_id" msgpack:"entry_id"`
	ExitID       string       `json:"exit_id" msgpack:"exit_id"`
}

// Extract parses the file and returns the basic blocks and edges of the
// named function. The extractor is chosen by file extension.
func Extract(path, functionName string) (*FunctionBlocks, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return extractPython(path, functionName)
	case ".go":
		return extractGo(path, functionName)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
}

// ListFunctions returns the names of all functions defined in the file, in
// source order.
func ListFunctions(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return listPythonFunctions(path)
	case ".go":
		return listGoFunctions(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
}

// builder accumulates blocks and edges during extraction. Blocks are kept as
// pointers until finish so extractors can grow statement lists after later
// blocks have been created.
type builder struct {
	content []byte
	blocks  []*BasicBlock
	edges   []Edge
	nextID  int
}

func newBuilder(content []byte) *builder {
	return &builder{content: content}
}

// newBlock appends a block and returns it. IDs are assigned in discovery
// order.
func (b *builder) newBlock(kind BlockKind, line int) *BasicBlock {
	blk := &BasicBlock{
		ID:        fmt.Sprintf("blk_%d", b.nextID),
		Kind:      kind,
		StartLine: line,
		EndLine:   line,
	}
	b.nextID++
	b.blocks = append(b.blocks, blk)
	return blk
}

func (b *builder) edge(src, dst *BasicBlock, kind EdgeKind) {
	b.edges = append(b.edges, Edge{Source: src.ID, Target: dst.ID, Kind: kind})
}

// stmt appends the first line of the node's text to the block and extends
// the block's line range.
func (b *builder) stmt(blk *BasicBlock, n *sitter.Node) {
	blk.Statements = append(blk.Statements, firstLine(b.text(n)))
	if end := int(n.EndPoint().Row) + 1; end > blk.EndLine {
		blk.EndLine = end
	}
	if start := int(n.StartPoint().Row) + 1; blk.StartLine == 0 || start < blk.StartLine {
		blk.StartLine = start
	}
}

func (b *builder) text(n *sitter.Node) string {
	return string(b.content[n.StartByte():n.EndByte()])
}

func (b *builder) finish(functionName string, entry, exit *BasicBlock) *FunctionBlocks {
	fb := &FunctionBlocks{
		FunctionName: functionName,
		Blocks:       make([]BasicBlock, 0, len(b.blocks)),
		Edges:        b.edges,
		EntryID:      entry.ID,
		ExitID:       exit.ID,
	}
	for _, blk := range b.blocks {
		fb.Blocks = append(fb.Blocks, *blk)
	}
	if fb.Edges == nil {
		fb.Edges = []Edge{}
	}
	return fb
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func startLine(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

func endLine(n *sitter.Node) int {
	return int(n.EndPoint().Row) + 1
}
