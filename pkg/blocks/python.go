package blocks

import (
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// pythonExtractor splits a Python function body into basic blocks.
type pythonExtractor struct {
	b       *builder
	returns []*BasicBlock
}

func extractPython(path, functionName string) (*FunctionBlocks, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree := parser.Parse(nil, content)
	defer tree.Close()

	funcNode := findPythonFunction(tree.RootNode(), content, functionName)
	if funcNode == nil {
		return nil, fmt.Errorf("function %q not found in %s", functionName, path)
	}
	body := funcNode.ChildByFieldName("body")
	if body == nil {
		return nil, fmt.Errorf("function body not found for %s", functionName)
	}

	e := &pythonExtractor{b: newBuilder(content)}

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

func (e *pythonExtractor) processBody(n *sitter.Node, cur **BasicBlock) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		e.processStatement(child, cur)
	}
}

func (e *pythonExtractor) processStatement(n *sitter.Node, cur **BasicBlock) {
	if *cur == nil {
		*cur = e.b.newBlock(BlockPlain, startLine(n))
	}

	switch n.Type() {
	case "if_statement":
		e.processIf(n, cur)
	case "while_statement":
		e.processWhile(n, cur)
	case "for_statement":
		e.processFor(n, cur)
	case "return_statement":
		e.b.stmt(*cur, n)
		if (*cur).Kind == BlockPlain {
			(*cur).Kind = BlockReturn
		}
		e.returns = append(e.returns, *cur)
		*cur = nil
	default:
		e.b.stmt(*cur, n)
	}
}

// processIf handles an if statement with any chain of elif and else clauses.
// Each elif becomes its own branch block hanging off the false edge of the
// previous one.
func (e *pythonExtractor) processIf(n *sitter.Node, cur **BasicBlock) {
	b := e.b

	branch := b.newBlock(BlockBranch, startLine(n))
	if cond := n.ChildByFieldName("condition"); cond != nil {
		b.stmt(branch, cond)
	}
	b.edge(*cur, branch, EdgeFallthrough)

	var ends []*BasicBlock
	if cons := n.ChildByFieldName("consequence"); cons != nil {
		thenBlk := b.newBlock(BlockPlain, startLine(cons))
		b.edge(branch, thenBlk, EdgeTrue)
		thenEnd := thenBlk
		e.processBody(cons, &thenEnd)
		if thenEnd != nil {
			ends = append(ends, thenEnd)
		}
	}

	prevBranch := branch
	hasElse := false
	for i := 0; i < int(n.NamedChildCount()); i++ {
		clause := n.NamedChild(i)
		if clause == nil {
			continue
		}
		switch clause.Type() {
		case "elif_clause":
			elifBranch := b.newBlock(BlockBranch, startLine(clause))
			if cond := clause.ChildByFieldName("condition"); cond != nil {
				b.stmt(elifBranch, cond)
			}
			b.edge(prevBranch, elifBranch, EdgeFalse)
			if cons := clause.ChildByFieldName("consequence"); cons != nil {
				thenBlk := b.newBlock(BlockPlain, startLine(cons))
				b.edge(elifBranch, thenBlk, EdgeTrue)
				thenEnd := thenBlk
				e.processBody(cons, &thenEnd)
				if thenEnd != nil {
					ends = append(ends, thenEnd)
				}
			}
			prevBranch = elifBranch
		case "else_clause":
			hasElse = true
			elseBlk := b.newBlock(BlockPlain, startLine(clause))
			b.edge(prevBranch, elseBlk, EdgeFalse)
			elseEnd := elseBlk
			if body := clause.ChildByFieldName("body"); body != nil {
				e.processBody(body, &elseEnd)
			}
			if elseEnd != nil {
				ends = append(ends, elseEnd)
			}
		}
	}

	if hasElse && len(ends) == 0 {
		// Every clause ends in a return; nothing falls through the if.
		*cur = nil
		return
	}

	join := b.newBlock(BlockPlain, endLine(n))
	for _, end := range ends {
		b.edge(end, join, EdgeFallthrough)
	}
	if !hasElse {
		b.edge(prevBranch, join, EdgeFalse)
	}
	*cur = join
}

func (e *pythonExtractor) processWhile(n *sitter.Node, cur **BasicBlock) {
	b := e.b

	header := b.newBlock(BlockLoop, startLine(n))
	if cond := n.ChildByFieldName("condition"); cond != nil {
		b.stmt(header, cond)
	}
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

func (e *pythonExtractor) processFor(n *sitter.Node, cur **BasicBlock) {
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

// findPythonFunction locates a function definition by name anywhere in the
// module, including methods inside class bodies. The first definition in
// document order wins.
func findPythonFunction(node *sitter.Node, content []byte, name string) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == "function_definition" {
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			if string(content[nameNode.StartByte():nameNode.EndByte()]) == name {
				return node
			}
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if found := findPythonFunction(node.Child(i), content, name); found != nil {
			return found
		}
	}
	return nil
}

func listPythonFunctions(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree := parser.Parse(nil, content)
	defer tree.Close()

	var names []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "function_definition" {
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
