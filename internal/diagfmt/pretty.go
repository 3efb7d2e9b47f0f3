// Package diagfmt renders diagnostics and formatting results for humans
// (Pretty) and machines (JSON).
package diagfmt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"passfmt/internal/diag"
	"passfmt/internal/source"
)

type palette struct {
	err, warn, info, note *color.Color
	path, code, pass      *color.Color
	gutter, caret         *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgBlue, color.Bold),
		note:   color.New(color.FgCyan),
		path:   color.New(color.Bold),
		code:   color.New(color.FgMagenta),
		pass:   color.New(color.Faint),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.path, p.code, p.pass, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Диапазоны должны ссылаться на original; порядок сохраняется (ожидается diag.Sort заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE> [pass]: <Message>
// затем строку исходника с подчёркиванием ^~~~ по Range, затем Notes с аналогичным форматом.
func Pretty(w io.Writer, path, original string, diags []diag.Diagnostic, opts PrettyOpts) {
	if len(diags) == 0 {
		return
	}
	pal := newPalette(opts.Color)
	idx := source.BuildLineIndex(original)
	shown := displayPath(path, opts.PathMode, opts.BaseDir)

	n := len(diags)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	for _, d := range diags[:n] {
		lc := idx.LineCol(d.Range.Start)
		fmt.Fprintf(w, "%s: %s %s", pal.path.Sprintf("%s:%d:%d", shown, lc.Line, lc.Col),
			pal.severity(d.Severity).Sprint(d.Severity.String()), pal.code.Sprint(d.Code.ID()))
		if d.Pass != "" {
			fmt.Fprintf(w, " %s", pal.pass.Sprintf("[%s]", d.Pass))
		}
		fmt.Fprintf(w, ": %s\n", d.Message)
		if !positionless(d) {
			writeSnippet(w, idx, d.Range, opts.Context, pal)
		}

		if !opts.ShowNotes {
			continue
		}
		for _, note := range d.Notes {
			nlc := idx.LineCol(note.Span.Start)
			fmt.Fprintf(w, "  %s %s: %s\n", pal.note.Sprint("note:"),
				pal.path.Sprintf("%s:%d:%d", shown, nlc.Line, nlc.Col), note.Msg)
			writeSnippet(w, idx, note.Span, 0, pal)
		}
	}
	if n < len(diags) {
		fmt.Fprintf(w, "... %d more diagnostic(s) in %s\n", len(diags)-n, shown)
	}
}

// positionless diagnostics describe the whole run (load errors, round limit)
// and carry the zero range, so there is no line worth quoting.
func positionless(d diag.Diagnostic) bool {
	if d.Range != (source.Span{}) {
		return false
	}
	switch d.Code {
	case diag.RunMaxRounds, diag.PassFailed, diag.CfgUnknownKey,
		diag.IOLoadError, diag.IOWriteError, diag.IOUnknownLanguage,
		diag.EngGrammarUnavailable, diag.EngParseTimeout, diag.EngReparseFailed:
		return true
	}
	return false
}

// writeSnippet prints the lines before rng.Start, the line itself and an
// underline that starts under rng.Start. Multi-line ranges are underlined to
// the end of the first line.
func writeSnippet(w io.Writer, idx *source.LineIndex, rng source.Span, context int, pal palette) {
	lc := idx.LineCol(rng.Start)
	row := lc.Line - 1
	first := max(0, row-context)
	width := len(fmt.Sprint(row + 1))

	for r := first; r <= row; r++ {
		line := strings.TrimRight(idx.Line(r), "\r")
		fmt.Fprintf(w, " %s %s\n", pal.gutter.Sprintf("%*d |", width, r+1), line)
	}

	line := idx.Line(row)
	col := min(lc.Col-1, len(line))
	end := min(rng.End, rng.Start+len(line)-col)
	under := line[col:max(col, col+end-rng.Start)]

	pad := padding(line[:col])
	caret := "^" + strings.Repeat("~", max(0, runewidth.StringWidth(under)-1))
	fmt.Fprintf(w, " %s %s%s\n", pal.gutter.Sprintf("%*s |", width, ""), pad, pal.caret.Sprint(caret))
}

// padding repeats the display width of prefix in spaces, keeping tabs so
// that the caret lines up in a terminal.
func padding(prefix string) string {
	var sb strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return sb.String()
}

func displayPath(p string, mode PathMode, baseDir string) string {
	if p == "" || p == "-" {
		return "<stdin>"
	}
	switch mode {
	case PathModeBasename:
		return filepath.Base(p)
	case PathModeAbsolute:
		if abs, err := filepath.Abs(p); err == nil {
			return filepath.ToSlash(abs)
		}
	case PathModeRelative, PathModeAuto:
		if rel, ok := relativeTo(p, baseDir); ok || mode == PathModeRelative {
			return rel
		}
	}
	return p
}

// relativeTo reports ok only when p lies under baseDir (cwd when empty).
func relativeTo(p, baseDir string) (string, bool) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return p, false
		}
		baseDir = wd
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p, false
	}
	rel, err := filepath.Rel(baseDir, abs)
	if err != nil {
		return p, false
	}
	rel = filepath.ToSlash(rel)
	return rel, rel != ".." && !strings.HasPrefix(rel, "../")
}
