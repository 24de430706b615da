package source

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
)

// maskedNodes are the C grammar node types whose bytes get blanked.
var maskedNodes = map[string]bool{
	"comment":            true,
	"string_literal":     true,
	"raw_string_literal": true,
	"char_literal":       true,
	"system_lib_string":  true,
}

// MaskLiterals parses content with the tree-sitter C grammar and returns a
// copy in which comments and string/character literals are replaced by
// spaces. Newlines are kept, so offsets and line numbers are unchanged.
func MaskLiterals(content []byte) ([]byte, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(c.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse C source: %w", err)
	}
	defer tree.Close()

	out := make([]byte, len(content))
	copy(out, content)
	maskNode(tree.RootNode(), out)
	return out, nil
}

func maskNode(n *sitter.Node, out []byte) {
	if n == nil {
		return
	}
	if maskedNodes[n.Type()] {
		end := int(n.EndByte())
		if end > len(out) {
			end = len(out)
		}
		for i := int(n.StartByte()); i < end; i++ {
			if out[i] != '\n' {
				out[i] = ' '
			}
		}
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		maskNode(n.Child(i), out)
	}
}
