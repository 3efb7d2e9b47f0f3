package trace

import "context"

// frame is what a context carries for tracing: the tracer, the innermost
// open span and the file being formatted.
type frame struct {
	tracer Tracer
	span   uint64
	file   string
}

type frameKey struct{}

func frameFrom(ctx context.Context) frame {
	if ctx != nil {
		if f, ok := ctx.Value(frameKey{}).(frame); ok {
			return f
		}
	}
	return frame{tracer: Nop}
}

func withFrame(ctx context.Context, f frame) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, frameKey{}, f)
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return frameFrom(ctx).tracer
}

// WithTracer attaches t to ctx; nil detaches tracing.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	f := frameFrom(ctx)
	f.tracer = t
	return withFrame(ctx, f)
}

// WithFile labels every event emitted under ctx with path.
func WithFile(ctx context.Context, path string) context.Context {
	f := frameFrom(ctx)
	if !f.tracer.Enabled() {
		return ctx
	}
	f.file = path
	return withFrame(ctx, f)
}

// FileFrom returns the file label of ctx.
func FileFrom(ctx context.Context) string {
	return frameFrom(ctx).file
}

// CurrentSpan returns the id of the innermost span open in ctx, 0 if none.
func CurrentSpan(ctx context.Context) uint64 {
	return frameFrom(ctx).span
}
