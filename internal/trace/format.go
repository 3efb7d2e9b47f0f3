package trace

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Format is the encoding of written events.
type Format uint8

const (
	FormatAuto   Format = iota // by output file extension
	FormatText                 // one indented line per event
	FormatNDJSON               // one JSON object per line
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
}

// start anchors the relative timestamps of the text format.
var start = time.Now()

// FormatEvent encodes ev as one line, including the trailing newline.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return appendJSON(nil, ev)
	}
	return appendText(nil, ev)
}

type jsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	File     string            `json:"file,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func appendJSON(dst []byte, ev *Event) []byte {
	data, err := json.Marshal(jsonEvent{
		Time:     ev.Time.Format(time.RFC3339Nano),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		File:     ev.File,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	})
	if err != nil {
		// только строки и числа, сюда не попадаем
		return append(dst, '\n')
	}
	return append(append(dst, data...), '\n')
}

var marks = [...]string{
	KindSpanBegin: "\u2192", // →
	KindSpanEnd:   "\u2190", // ←
	KindPoint:     "\u2022", // •
	KindHeartbeat: "\u2661", // ♡
}

// appendText renders
//
//	[elapsed] <indent by scope><mark> [file] name (detail) {k=v, ...}
func appendText(dst []byte, ev *Event) []byte {
	var elapsed time.Duration
	if !ev.Time.IsZero() {
		elapsed = ev.Time.Sub(start)
	}
	dst = fmt.Appendf(dst, "[%9.3fms] ", float64(elapsed.Microseconds())/1000)
	if ev.Scope > ScopeDriver {
		dst = append(dst, strings.Repeat("  ", int(ev.Scope-ScopeDriver))...)
	}
	if int(ev.Kind) < len(marks) && marks[ev.Kind] != "" {
		dst = append(dst, marks[ev.Kind]...)
		dst = append(dst, ' ')
	}
	if ev.File != "" {
		dst = append(dst, '[')
		dst = append(dst, ev.File...)
		dst = append(dst, "] "...)
	}
	dst = append(dst, ev.Name...)
	if ev.Detail != "" {
		dst = append(dst, " ("...)
		dst = append(dst, ev.Detail...)
		dst = append(dst, ')')
	}
	if len(ev.Extra) > 0 {
		keys := make([]string, 0, len(ev.Extra))
		for k := range ev.Extra {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		dst = append(dst, " {"...)
		for i, k := range keys {
			if i > 0 {
				dst = append(dst, ", "...)
			}
			dst = append(dst, k...)
			dst = append(dst, '=')
			dst = append(dst, ev.Extra[k]...)
		}
		dst = append(dst, '}')
	}
	return append(dst, '\n')
}
