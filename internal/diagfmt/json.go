package diagfmt

import (
	"encoding/json"
	"io"

	"passfmt/internal/diag"
	"passfmt/internal/driver"
	"passfmt/internal/observ"
	"passfmt/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	StartByte int `json:"start_byte"`
	EndByte   int `json:"end_byte"`
	StartLine int `json:"start_line,omitempty"`
	StartCol  int `json:"start_col,omitempty"`
	EndLine   int `json:"end_line,omitempty"`
	EndCol    int `json:"end_col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Pass     string       `json:"pass,omitempty"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// FileJSON is the outcome for one file.
type FileJSON struct {
	Path        string           `json:"path"`
	Language    string           `json:"language,omitempty"`
	Changed     bool             `json:"changed"`
	Cached      bool             `json:"cached,omitempty"`
	Written     bool             `json:"written,omitempty"`
	Rounds      int              `json:"rounds"`
	Error       string           `json:"error,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Diff        string           `json:"diff,omitempty"`
	Timings     *observ.Report   `json:"timings,omitempty"`
}

// Output представляет корневую структуру JSON вывода
type Output struct {
	Files   []FileJSON `json:"files"`
	Count   int        `json:"count"`
	Changed int        `json:"changed"`
	Failed  int        `json:"failed"`
}

func makeLocation(span source.Span, idx *source.LineIndex, includePositions bool) LocationJSON {
	loc := LocationJSON{StartByte: span.Start, EndByte: span.End}
	if includePositions {
		start, end := idx.LineCol(span.Start), idx.LineCol(span.End)
		loc.StartLine, loc.StartCol = start.Line, start.Col
		loc.EndLine, loc.EndCol = end.Line, end.Col
	}
	return loc
}

// BuildOutput формирует структуру JSON-вывода без сериализации.
func BuildOutput(results []driver.FileResult, opts JSONOpts) Output {
	out := Output{Files: make([]FileJSON, 0, len(results))}
	for i := range results {
		r := &results[i]
		f := FileJSON{
			Path:        displayPath(r.Path, opts.PathMode, opts.BaseDir),
			Language:    r.Language,
			Changed:     r.Changed,
			Cached:      r.Cached,
			Written:     r.Written,
			Rounds:      r.Rounds,
			Diagnostics: buildDiagnostics(r.Original, r.Diagnostics, opts),
		}
		if r.Err != nil {
			f.Error = r.Err.Error()
		}
		if opts.IncludeDiff {
			f.Diff = r.Diff
		}
		if opts.IncludeTimings {
			f.Timings = r.Timings
		}
		if r.Changed {
			out.Changed++
		}
		if r.Failed() {
			out.Failed++
		}
		out.Files = append(out.Files, f)
	}
	out.Count = len(out.Files)
	return out
}

func buildDiagnostics(original string, diags []diag.Diagnostic, opts JSONOpts) []DiagnosticJSON {
	n := len(diags)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	var idx *source.LineIndex
	if opts.IncludePositions {
		idx = source.BuildLineIndex(original)
	}

	items := make([]DiagnosticJSON, 0, n)
	for _, d := range diags[:n] {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Pass:     d.Pass,
			Message:  d.Message,
			Location: makeLocation(d.Range, idx, opts.IncludePositions),
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				dj.Notes[j] = NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(note.Span, idx, opts.IncludePositions),
				}
			}
		}
		items = append(items, dj)
	}
	return items
}

// JSON форматирует результаты в JSON формат.
func JSON(w io.Writer, results []driver.FileResult, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildOutput(results, opts))
}
