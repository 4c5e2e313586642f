package blocks

import (
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// goExtractor splits a Go function body into basic blocks.
type goExtractor struct {
	b       *builder
	returns []*BasicBlock
}

func extractGo(path, functionName string) (*FunctionBlocks, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree := parser.Parse(nil, content)
	defer tree.Close()

	funcNode := findGoFunction(tree.RootNode(), content, functionName)
	if funcNode == nil {
		return nil, fmt.Errorf("function %q not found in %s", functionName, path)
	}
	body := funcNode.ChildByFieldName("body")
	if body == nil {
		return nil, fmt.Errorf("function body not found for %s", functionName)
	}

	e := &goExtractor{b: newBuilder(content)}

	entry := e.b.newBlock(BlockEntry, startLine(funcNode))
	cur := entry
	e.processBody(body, &cur)

	exit := e.b.newBlock(BlockExit, endLine(funcNode))
	if cur != nil {
		e.b.edge(cur, exit, EdgeFallthrough)
	}
	for _, ret := range e.returns {
		e.b.edge(ret, exit, EdgeFallthrough)
	}

	return e.b.finish(functionName, entry, exit), nil
}

// processBody walks the named statements of a block node. cur is the block
// statements currently accumulate into; it becomes nil after a return, and
// any trailing unreachable statement opens a fresh block with no incoming
// edge.
func (e *goExtractor) processBody(n *sitter.Node, cur **BasicBlock) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		e.processStatement(child, cur)
	}
}

func (e *goExtractor) processStatement(n *sitter.Node, cur **BasicBlock) {
	if *cur == nil {
		*cur = e.b.newBlock(BlockPlain, startLine(n))
	}

	switch n.Type() {
	case "if_statement":
		e.processIf(n, cur)
	case "for_statement":
		e.processFor(n, cur)
	case "return_statement":
		e.b.stmt(*cur, n)
		if (*cur).Kind == BlockPlain {
			(*cur).Kind = BlockReturn
		}
		e.returns = append(e.returns, *cur)
		*cur = nil
	case "block":
		e.processBody(n, cur)
	default:
		e.b.stmt(*cur, n)
	}
}

func (e *goExtractor) processIf(n *sitter.Node, cur **BasicBlock) {
	b := e.b

	branch := b.newBlock(BlockBranch, startLine(n))
	if init := n.ChildByFieldName("initializer"); init != nil {
		b.stmt(branch, init)
	}
	if cond := n.ChildByFieldName("condition"); cond != nil {
		b.stmt(branch, cond)
	}
	b.edge(*cur, branch, EdgeFallthrough)

	var thenEnd *BasicBlock
	if cons := n.ChildByFieldName("consequence"); cons != nil {
		thenBlk := b.newBlock(BlockPlain, startLine(cons))
		b.edge(branch, thenBlk, EdgeTrue)
		thenEnd = thenBlk
		e.processBody(cons, &thenEnd)
	}

	alt := n.ChildByFieldName("alternative")
	var elseEnd *BasicBlock
	hasElse := alt != nil
	if hasElse {
		elseBlk := b.newBlock(BlockPlain, startLine(alt))
		b.edge(branch, elseBlk, EdgeFalse)
		elseEnd = elseBlk
		if alt.Type() == "if_statement" {
			// else-if chain: treat the nested if as the sole statement
			// of the else block.
			e.processStatement(alt, &elseEnd)
		} else {
			e.processBody(alt, &elseEnd)
		}
	}

	if hasElse && thenEnd == nil && elseEnd == nil {
		// Every branch ends in a return; nothing falls through the if.
		*cur = nil
		return
	}

	join := b.newBlock(BlockPlain, endLine(n))
	if thenEnd != nil {
		b.edge(thenEnd, join, EdgeFallthrough)
	}
	if hasElse {
		if elseEnd != nil {
			b.edge(elseEnd, join, EdgeFallthrough)
		}
	} else {
		b.edge(branch, join, EdgeFalse)
	}
	*cur = join
}

func (e *goExtractor) processFor(n *sitter.Node, cur **BasicBlock) {
	b := e.b

	header := b.newBlock(BlockLoop, startLine(n))
	header.Statements = append(header.Statements, firstLine(b.text(n)))
	b.edge(*cur, header, EdgeFallthrough)

	var bodyEnd *BasicBlock
	if body := n.ChildByFieldName("body"); body != nil {
		bodyBlk := b.newBlock(BlockPlain, startLine(body))
		b.edge(header, bodyBlk, EdgeTrue)
		bodyEnd = bodyBlk
		e.processBody(body, &bodyEnd)
	}
	if bodyEnd != nil {
		b.edge(bodyEnd, header, EdgeBack)
	}

	after := b.newBlock(BlockPlain, endLine(n))
	b.edge(header, after, EdgeFalse)
	*cur = after
}

// findGoFunction locates a function or method declaration by name.
func findGoFunction(node *sitter.Node, content []byte, name string) *sitter.Node {
	if node == nil {
		return nil
	}
	switch node.Type() {
	case "function_declaration", "method_declaration":
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			if string(content[nameNode.StartByte():nameNode.EndByte()]) == name {
				return node
			}
		}
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if found := findGoFunction(node.Child(i), content, name); found != nil {
			return found
		}
	}
	return nil
}

func listGoFunctions(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree := parser.Parse(nil, content)
	defer tree.Close()

	var names []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "function_declaration", "method_declaration":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				names = append(names, string(content[nameNode.StartByte():nameNode.EndByte()]))
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())
	return names, nil
}
