package builtin

import (
	"strings"

	"passfmt/internal/config"
	"passfmt/internal/edit"
)

// IndentStyle rewrites the leading whitespace of non-blank lines to tabs or
// spaces. Lines that start inside a string literal are skipped.
type IndentStyle struct{}

func (IndentStyle) Name() string { return "indent_style" }

func (IndentStyle) Run(ctx *Context) ([]edit.Edit, error) {
	if ctx.Config.IndentStyle == config.IndentPreserve || ctx.Config.IndentStyle == "" {
		return nil, nil
	}
	text := ctx.Text()
	lits := stringLiterals(ctx)
	var edits []edit.Edit
	for start := 0; start < len(text); {
		end := start
		for end < len(text) && isBlank(text[end]) {
			end++
		}
		next := strings.IndexByte(text[end:], '\n')
		lineEnd := len(text)
		if next >= 0 {
			lineEnd = end + next
		}
		if end < lineEnd && end > start && !lits.inside(start) {
			if want := canonicalIndent(ctx.Config, text[start:end]); want != text[start:end] {
				edits = append(edits, ctx.Replace(start, end, want))
			}
		}
		start = lineEnd + 1
	}
	return edits, nil
}

// canonicalIndent renders ws, a run of spaces and tabs, in the configured
// style while keeping its visual width.
func canonicalIndent(style *config.Style, ws string) string {
	tw := style.TabWidth
	if tw < 1 {
		tw = config.DefaultTabWidth
	}
	width := 0
	for i := 0; i < len(ws); i++ {
		if ws[i] == '\t' {
			width += tw - width%tw
		} else {
			width++
		}
	}
	switch style.IndentStyle {
	case config.IndentSpaces:
		return strings.Repeat(" ", width)
	case config.IndentTabs:
		return strings.Repeat("\t", width/tw) + strings.Repeat(" ", width%tw)
	}
	return ws
}
