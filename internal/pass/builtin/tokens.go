package builtin

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"passfmt/internal/edit"
)

const closers = ")]}>"

// CommaSpacing inserts one space after a comma token that is directly
// followed by an operand.
type CommaSpacing struct{}

func (CommaSpacing) Name() string { return "comma_spacing" }

func (CommaSpacing) Run(ctx *Context) ([]edit.Edit, error) {
	text := ctx.Text()
	var edits []edit.Edit
	leaves(ctx, func(n *sitter.Node) {
		at := int(n.EndByte())
		if at >= len(text) {
			return
		}
		c := text[at]
		if isSpace(c) || c == ',' || c == ';' || strings.IndexByte(closers, c) >= 0 {
			return
		}
		edits = append(edits, ctx.Insert(at, " "))
	}, ",")
	return edits, nil
}

// BraceSpacing pads the inside of non-empty braces according to
// Style.SpaceAfterOpenBrace and Style.SpaceBeforeCloseBrace.
type BraceSpacing struct{}

func (BraceSpacing) Name() string { return "brace_spacing" }

func (BraceSpacing) Run(ctx *Context) ([]edit.Edit, error) {
	style := ctx.Config
	if !style.SpaceAfterOpenBrace && !style.SpaceBeforeCloseBrace {
		return nil, nil
	}
	text := ctx.Text()
	var edits []edit.Edit
	leaves(ctx, func(n *sitter.Node) {
		switch n.Type() {
		case "{":
			at := int(n.EndByte())
			if !style.SpaceAfterOpenBrace || at >= len(text) {
				return
			}
			if c := text[at]; isSpace(c) || c == '}' {
				return
			}
			edits = append(edits, ctx.Insert(at, " "))
		case "}":
			at := int(n.StartByte())
			if !style.SpaceBeforeCloseBrace || at == 0 {
				return
			}
			if c := text[at-1]; isSpace(c) || c == '{' || c == ',' {
				return
			}
			edits = append(edits, ctx.Insert(at, " "))
		}
	}, "{", "}")
	return edits, nil
}
