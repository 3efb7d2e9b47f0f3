// Package diff renders line-based unified diffs between an input and its
// formatted text.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ContextLines is the number of unchanged lines shown around each change.
const ContextLines = 3

type opKind byte

const (
	opEqual  opKind = ' '
	opDelete opKind = '-'
	opInsert opKind = '+'
)

// op is one line of the edit script with the 0-based line positions it
// was found at in both texts.
type op struct {
	kind     opKind
	line     string
	old, new int
}

// Unified returns the unified diff turning before into after, or "" when
// they are equal. name is used for both headers.
func Unified(name, before, after string) string {
	if before == after {
		return ""
	}
	ops := script(before, after)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", name, name)
	for _, h := range hunks(ops) {
		writeHunk(&sb, ops[h[0]:h[1]])
	}
	return sb.String()
}

// splitLines keeps the newline on every line; an empty text has no lines.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// script computes a line edit script. Each distinct line is mapped to one
// rune so the diff runs over lines, then the runs are split back into lines.
func script(before, after string) []op {
	dmp := diffmatchpatch.New()
	// no deadline: half-match shortcuts give non-minimal scripts
	dmp.DiffTimeout = 0
	ca, cb, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var ops []op
	oldLine, newLine := 0, 0
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				ops = append(ops, op{kind: opEqual, line: line, old: oldLine, new: newLine})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				ops = append(ops, op{kind: opDelete, line: line, old: oldLine, new: newLine})
				oldLine++
			case diffmatchpatch.DiffInsert:
				ops = append(ops, op{kind: opInsert, line: line, old: oldLine, new: newLine})
				newLine++
			}
		}
	}
	return ops
}

// hunks returns [start, end) index pairs into ops, each a change group
// padded with ContextLines of equal lines and merged when the padding meets.
func hunks(ops []op) [][2]int {
	var out [][2]int
	for i, o := range ops {
		if o.kind == opEqual {
			continue
		}
		start := max(i-ContextLines, 0)
		end := min(i+ContextLines+1, len(ops))
		if n := len(out); n > 0 && start <= out[n-1][1] {
			out[n-1][1] = end
			continue
		}
		out = append(out, [2]int{start, end})
	}
	return out
}

func writeHunk(sb *strings.Builder, ops []op) {
	oldCount, newCount := 0, 0
	for _, o := range ops {
		if o.kind != opInsert {
			oldCount++
		}
		if o.kind != opDelete {
			newCount++
		}
	}
	fmt.Fprintf(sb, "@@ -%s +%s @@\n", rangeOf(ops[0].old, oldCount), rangeOf(ops[0].new, newCount))
	for _, o := range ops {
		sb.WriteByte(byte(o.kind))
		sb.WriteString(o.line)
		if !strings.HasSuffix(o.line, "\n") {
			sb.WriteString("\n\\ No newline at end of file\n")
		}
	}
}

// rangeOf formats a hunk range the way diff(1) does: an empty range names
// the line before it.
func rangeOf(start, count int) string {
	switch count {
	case 0:
		return fmt.Sprintf("%d,0", start)
	case 1:
		return fmt.Sprintf("%d", start+1)
	}
	return fmt.Sprintf("%d,%d", start+1, count)
}
