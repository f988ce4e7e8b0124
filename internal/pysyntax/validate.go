// Package pysyntax checks Python sources for syntax errors with tree-sitter.
package pysyntax

import (
	"context"
	"fmt"

	"github.com/pixie-sh/errors-go"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// SyntaxError locates the first syntax error found in a Python source.
type SyntaxError struct {
	Path    string
	Line    uint32 // 0-indexed
	Column  uint32 // 0-indexed
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line+1, e.Column+1, e.Message)
}

// Validator parses Python source and reports the first syntax error.
type Validator interface {
	Validate(ctx context.Context, content []byte, path string) error
}

// TreeSitter is the Validator backed by the tree-sitter Python grammar.
type TreeSitter struct{}

// Validate returns nil for well-formed sources, a *SyntaxError for broken
// ones and a wrapped error when the parser itself fails.
func (TreeSitter) Validate(ctx context.Context, content []byte, path string) error {
	return Validate(ctx, content, path)
}

// Validate parses content as Python.
func Validate(ctx context.Context, content []byte, path string) error {
	root, err := parse(ctx, content, path)
	if err != nil {
		return err
	}
	if !root.HasError() {
		return nil
	}

	if node := firstError(root); node != nil {
		return &SyntaxError{
			Path:    path,
			Line:    node.StartPoint().Row,
			Column:  node.StartPoint().Column,
			Message: "syntax error",
		}
	}
	return &SyntaxError{Path: path, Message: "tree contains errors"}
}

func parse(ctx context.Context, content []byte, path string) (*sitter.Node, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, errors.Wrap(err, "tree-sitter parse failed for %s", path)
	}

	root := tree.RootNode()
	if root == nil {
		return nil, errors.New("tree-sitter returned no root for %s", path)
	}
	return root, nil
}

// firstError does a depth-first search for the first ERROR or MISSING node.
func firstError(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsError() || child.IsMissing() {
			if found := firstError(child); found != nil {
				return found
			}
		}
	}
	return nil
}
