package builtin

import (
	"errors"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"passfmt/internal/config"
	"passfmt/internal/pass"
	"passfmt/internal/source"
	"passfmt/internal/syntax"
)

// importSpec is one line of a parenthesised import block.
type importSpec struct {
	Text  string
	Path  string
	Name  string
	Group int
	// Joint separates specs of the same group, Break precedes the first
	// spec of a group.
	Joint string
	Break string
}

// ImportSort sorts and deduplicates the specs of every import block, keeping
// blank-line separated groups apart. Blocks with comments, several specs on
// one line or layout other passes still have to fix are left for a later round.
type ImportSort struct{}

// NewImportSort returns ImportSort adapted to the pass interface.
func NewImportSort() Pass {
	return pass.FromStructured[*config.Style, importSpec](ImportSort{})
}

func (ImportSort) Name() string { return "import_sort" }

func (ImportSort) Extract(ctx *Context) ([]pass.Target[importSpec], error) {
	q, err := ctx.Language.Query("imports")
	if errors.Is(err, syntax.ErrNoQuery) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, ctx.Root)

	var targets []pass.Target[importSpec]
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			if t, ok := importTarget(ctx, c.Node); ok {
				targets = append(targets, t)
			}
		}
	}
	return targets, nil
}

func importTarget(ctx *Context, list *sitter.Node) (pass.Target[importSpec], bool) {
	var none pass.Target[importSpec]
	if list.HasError() {
		return none, false
	}
	var specs []*sitter.Node
	count := int(list.NamedChildCount())
	for i := 0; i < count; i++ {
		child := list.NamedChild(i)
		if child.Type() != "import_spec" {
			return none, false
		}
		specs = append(specs, child)
	}
	if len(specs) < 2 {
		return none, false
	}

	text := ctx.Text()
	items := make([]importSpec, 0, len(specs))
	group, joint, brk := 0, "", ""
	for i, spec := range specs {
		if i > 0 {
			sep := text[specs[i-1].EndByte():spec.StartByte()]
			if !cleanSeparator(ctx.Config, sep) {
				return none, false
			}
			if strings.Count(sep, "\n") > 1 {
				group++
				brk = sep
			} else if joint == "" {
				joint = sep
			} else if joint != sep {
				return none, false
			}
		}
		item := importSpec{Text: ctx.Content(spec), Group: group, Break: brk}
		if path := spec.ChildByFieldName("path"); path != nil {
			item.Path = ctx.Content(path)
		}
		if name := spec.ChildByFieldName("name"); name != nil {
			item.Name = ctx.Content(name)
		}
		items = append(items, item)
	}
	if joint == "" {
		// every group holds a single spec
		return none, false
	}
	for i := range items {
		items[i].Joint = joint
	}
	rng := source.Span{Start: int(specs[0].StartByte()), End: int(specs[len(specs)-1].EndByte())}
	return pass.Target[importSpec]{Range: rng, Items: items}, true
}

// cleanSeparator reports whether sep, the text between two specs, is already
// in the shape the whitespace passes produce.
func cleanSeparator(style *config.Style, sep string) bool {
	nl := strings.LastIndexByte(sep, '\n')
	if nl < 0 {
		return false
	}
	if strings.Trim(sep[:nl+1], "\n") != "" || nl > style.MaxBlankLines {
		return false
	}
	indent := sep[nl+1:]
	if strings.Trim(indent, " \t") != "" {
		return false
	}
	return canonicalIndent(style, indent) == indent
}

func (ImportSort) Transform(_ *Context, items []importSpec) ([]importSpec, error) {
	out := append([]importSpec(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Name < out[j].Name
	})
	uniq := out[:0]
	for _, it := range out {
		if n := len(uniq); n > 0 {
			last := uniq[n-1]
			if last.Group == it.Group && last.Path == it.Path && last.Name == it.Name {
				continue
			}
		}
		uniq = append(uniq, it)
	}
	return uniq, nil
}

func (ImportSort) Build(_ *Context, items []importSpec) (string, error) {
	var sb strings.Builder
	for i, it := range items {
		if i > 0 {
			if it.Group != items[i-1].Group {
				sb.WriteString(it.Break)
			} else {
				sb.WriteString(it.Joint)
			}
		}
		sb.WriteString(it.Text)
	}
	return sb.String(), nil
}
