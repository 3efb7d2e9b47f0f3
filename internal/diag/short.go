package diag

import (
	"fmt"
	"sort"
	"strings"

	"passfmt/internal/source"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Pass     string
	Line     int
	Column   int
	Message  string
}

// FormatShort renders diagnostics into a stable, single-line-per-entry
// representation suitable for golden tests and the CLI short output. Ranges
// are resolved against text, which must be the text the ranges refer to.
func FormatShort(path, text string, diags []Diagnostic, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	idx := source.BuildLineIndex(text)

	rendered := make([]shortDiagnostic, 0, len(diags))
	for _, d := range diags {
		lc := idx.LineCol(d.Range.Start)
		rendered = append(rendered, shortDiagnostic{
			Severity: d.Severity.Word(),
			Code:     d.Code.ID(),
			Pass:     d.Pass,
			Line:     lc.Line,
			Column:   lc.Col,
			Message:  flatten(d.Message),
		})
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			nlc := idx.LineCol(n.Span.Start)
			rendered = append(rendered, shortDiagnostic{
				Severity: "note",
				Code:     d.Code.ID(),
				Pass:     d.Pass,
				Line:     nlc.Line,
				Column:   nlc.Col,
				Message:  flatten(n.Msg),
			})
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		return di.Column < dj.Column
	})

	var sb strings.Builder
	for i, r := range rendered {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s %s %s:%d:%d", r.Severity, r.Code, path, r.Line, r.Column)
		if r.Pass != "" {
			fmt.Fprintf(&sb, " [%s]", r.Pass)
		}
		sb.WriteByte(' ')
		sb.WriteString(r.Message)
	}
	return sb.String()
}

func flatten(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}
