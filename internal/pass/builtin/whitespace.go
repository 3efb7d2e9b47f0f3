package builtin

import (
	"strings"

	"passfmt/internal/edit"
)

// TrailingWhitespace deletes spaces and tabs at the end of every line.
type TrailingWhitespace struct{}

func (TrailingWhitespace) Name() string { return "trailing_whitespace" }

func (TrailingWhitespace) Run(ctx *Context) ([]edit.Edit, error) {
	text := ctx.Text()
	lits := stringLiterals(ctx)
	var edits []edit.Edit
	for end := 0; end <= len(text); end++ {
		if end < len(text) && text[end] != '\n' {
			continue
		}
		start := end
		for start > 0 && isBlank(text[start-1]) {
			start--
		}
		if start == end || lits.inside(end) || lits.inside(start) {
			continue
		}
		edits = append(edits, ctx.Delete(start, end))
	}
	return edits, nil
}

// FinalNewline makes a non-empty file end with exactly one newline.
type FinalNewline struct{}

func (FinalNewline) Name() string { return "final_newline" }

func (FinalNewline) Run(ctx *Context) ([]edit.Edit, error) {
	text := ctx.Text()
	if text == "" {
		return nil, nil
	}
	run := len(text) - len(strings.TrimRight(text, "\n"))
	switch {
	case run == 0:
		return []edit.Edit{ctx.Insert(len(text), "\n")}, nil
	case run > 1:
		first := len(text) - run
		return []edit.Edit{ctx.Delete(first+1, len(text))}, nil
	}
	return nil, nil
}

// BlankLines collapses runs of empty lines longer than Style.MaxBlankLines.
// Runs that reach the end of the file are left to FinalNewline; lines holding
// only blanks become empty once TrailingWhitespace has run.
type BlankLines struct{}

func (BlankLines) Name() string { return "blank_lines" }

func (BlankLines) Run(ctx *Context) ([]edit.Edit, error) {
	text := ctx.Text()
	lits := stringLiterals(ctx)
	limit := ctx.Config.MaxBlankLines
	var edits []edit.Edit
	for i := 0; i < len(text); {
		if text[i] != '\n' {
			i++
			continue
		}
		j := i
		for j < len(text) && text[j] == '\n' {
			j++
		}
		start := i
		i = j
		if j == len(text) || lits.inside(start) {
			continue
		}
		// a run after content ends the line first; at file start every
		// newline closes an empty line
		empty := j - start
		if start > 0 {
			empty--
		}
		if empty > limit {
			edits = append(edits, ctx.Delete(j-(empty-limit), j))
		}
	}
	return edits, nil
}
