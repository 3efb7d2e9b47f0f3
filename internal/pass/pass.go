// Package pass defines formatting passes: independent units that inspect one
// round's tree and text and propose edits. A pass never mutates anything; the
// engine decides which of its edits are applied.
package pass

import (
	"errors"
	"fmt"
	"runtime/debug"

	"passfmt/internal/edit"
	"passfmt/internal/source"
)

// Pass proposes edits for one round. C is the configuration value shared by
// every pass of a pipeline.
type Pass[C any] interface {
	Name() string
	Run(ctx *Context[C]) ([]edit.Edit, error)
}

var (
	// ErrUnsupported means the pass cannot handle this input (e.g. language).
	ErrUnsupported = errors.New("unsupported input")
	// ErrMalformed means the tree or text did not have the shape the pass expects.
	ErrMalformed = errors.New("malformed input")
	// ErrPanic marks a recovered panic.
	ErrPanic = errors.New("pass panicked")
)

// Error is a typed pass failure.
type Error struct {
	Pass  string
	Range source.Span
	Err   error
}

func (e *Error) Error() string {
	if e.Range.Empty() && e.Range.Start == 0 {
		return fmt.Sprintf("pass %s: %v", e.Pass, e.Err)
	}
	return fmt.Sprintf("pass %s at %s: %v", e.Pass, e.Range, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fail builds a *Error for the pass currently running in ctx.
func Fail[C any](ctx *Context[C], rng source.Span, err error) error {
	return &Error{Pass: ctx.Pass(), Range: rng, Err: err}
}

// Run executes p, turning panics and plain errors into *Error. Edits are
// stamped with the pass name, the registration order and their sequence.
func Run[C any](p Pass[C], ctx *Context[C], order int) (edits []edit.Edit, err error) {
	defer func() {
		if r := recover(); r != nil {
			edits = nil
			err = &Error{Pass: p.Name(), Err: fmt.Errorf("%w: %v\n%s", ErrPanic, r, debug.Stack())}
		}
	}()
	edits, err = p.Run(ctx)
	if err != nil {
		var pe *Error
		if !errors.As(err, &pe) {
			err = &Error{Pass: p.Name(), Err: err}
		}
		return nil, err
	}
	for i := range edits {
		edits[i] = edits[i].Stamp(p.Name(), order, i, ctx.Buffer.Generation())
	}
	return edits, nil
}

// Func adapts a function to Pass.
type Func[C any] struct {
	PassName string
	Fn       func(ctx *Context[C]) ([]edit.Edit, error)
}

func NewFunc[C any](name string, fn func(ctx *Context[C]) ([]edit.Edit, error)) Func[C] {
	return Func[C]{PassName: name, Fn: fn}
}

func (f Func[C]) Name() string { return f.PassName }

func (f Func[C]) Run(ctx *Context[C]) ([]edit.Edit, error) { return f.Fn(ctx) }
