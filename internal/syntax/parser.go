package syntax

import (
	"context"
	"errors"
	"fmt"
	"time"

	sitter "github.com/smacker/go-tree-sitter"

	"passfmt/internal/source"
)

// Parser parses buffers of one language. It holds a pooled tree-sitter parser
// and must be released after the run; it is not safe for concurrent use.
type Parser struct {
	lang    *Language
	p       *sitter.Parser
	timeout time.Duration
}

// NewParser acquires a parser for lang. timeout <= 0 disables the parse budget.
func NewParser(lang *Language, timeout time.Duration) (*Parser, error) {
	p, err := lang.acquire()
	if err != nil {
		return nil, err
	}
	return &Parser{lang: lang, p: p, timeout: timeout}, nil
}

// Release returns the underlying parser to its pool.
func (p *Parser) Release() {
	if p == nil || p.p == nil {
		return
	}
	p.lang.release(p.p)
	p.p = nil
}

func (p *Parser) Language() *Language { return p.lang }

// Parse builds a tree for buf from scratch.
func (p *Parser) Parse(ctx context.Context, buf *source.Buffer) (*Tree, error) {
	t, err := p.run(ctx, nil, buf)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%s: parser returned no tree", p.lang.Name)
	}
	return &Tree{t: t, buf: buf, lang: p.lang}, nil
}

// Reparse derives the tree for buf from old, which must have been told about
// every change between its buffer and buf through Edit. A nil old falls back
// to a full parse.
func (p *Parser) Reparse(ctx context.Context, old *Tree, buf *source.Buffer) (*Tree, error) {
	var prev *sitter.Tree
	if old != nil {
		prev = old.t
	}
	t, err := p.run(ctx, prev, buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReparse, err)
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %s: parser returned no tree", ErrReparse, p.lang.Name)
	}
	return &Tree{t: t, buf: buf, lang: p.lang}, nil
}

// ApplySingleEdit informs tree of the replacement of before[start:oldEnd]
// that produced after, then reparses. Start and old-end points come from
// before, the new-end point from after.
func (p *Parser) ApplySingleEdit(ctx context.Context, tree *Tree, before, after *source.Buffer, start, oldEnd int) (*Tree, error) {
	newEnd := oldEnd + after.Len() - before.Len()
	if newEnd < start {
		return nil, fmt.Errorf("%w: buffers do not match edit [%d,%d)", ErrReparse, start, oldEnd)
	}
	ch := source.Change{Start: start, OldEnd: oldEnd, NewEnd: newEnd}
	var err error
	if ch.StartPoint, err = before.Point(start); err != nil {
		return nil, err
	}
	if ch.OldEndPoint, err = before.Point(oldEnd); err != nil {
		return nil, err
	}
	if ch.NewEndPoint, err = after.Point(newEnd); err != nil {
		return nil, err
	}
	next := tree.Fork()
	if err := next.Edit(ch); err != nil {
		return nil, err
	}
	return p.Reparse(ctx, next, after)
}

func (p *Parser) run(ctx context.Context, old *sitter.Tree, buf *source.Buffer) (*sitter.Tree, error) {
	if p.p == nil {
		return nil, errors.New("parser used after Release")
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	t, err := p.p.ParseCtx(ctx, old, buf.Bytes())
	if err != nil {
		if errors.Is(err, sitter.ErrOperationLimit) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			// a cancelled parser keeps its partial state
			p.p.Reset()
			return nil, fmt.Errorf("%w: %s after %s", ErrParseTimeout, p.lang.Name, p.timeout)
		}
		return nil, err
	}
	return t, nil
}
