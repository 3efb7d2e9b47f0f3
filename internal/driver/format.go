// Package driver formats files on disk: it collects inputs, fans them out to
// the engine in parallel, consults the result cache and writes results back.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"passfmt/internal/cache"
	"passfmt/internal/config"
	"passfmt/internal/diag"
	"passfmt/internal/diff"
	"passfmt/internal/engine"
	"passfmt/internal/observ"
	"passfmt/internal/source"
	"passfmt/internal/syntax"
	"passfmt/internal/trace"
	"passfmt/internal/version"
)

// ErrUnknownPass is returned for a disabled pass name the pipeline does not have.
var ErrUnknownPass = errors.New("unknown pass")

// Options configures FormatPaths.
type Options struct {
	// Config supplies engine, style, pass and language settings; nil means defaults.
	Config *config.Config
	// Registry overrides the bundled languages; Config.Languages is layered on top.
	Registry *syntax.Registry
	// Language forces the language of every file instead of picking it by extension.
	Language string

	Check  bool // report only, never write
	Stdout bool // return formatted bytes, never write
	Diff   bool // attach a unified diff to changed results

	// Passes builds the engine from the loaded config; nil means the
	// bundled passes with the style section as their settings.
	Passes Passes

	Jobs     int // parallel files, GOMAXPROCS when <= 0
	Cache    *cache.Cache
	Timings  bool
	Progress ProgressSink
}

// FileResult captures the result of formatting a single file.
type FileResult struct {
	Path     string
	Language string
	Changed  bool
	// Formatted holds the output bytes in the file's on-disk shape (BOM, CRLF).
	Formatted []byte
	// Original is the normalised input text; diagnostic ranges refer to it.
	Original    string
	Diagnostics []diag.Diagnostic
	Rounds      int
	Err         error
	Cached      bool
	Written     bool
	Diff        string
	Timings     *observ.Report
}

// Failed reports whether the file aborted or produced Error diagnostics.
func (r *FileResult) Failed() bool {
	return r.Err != nil || diag.HasErrors(r.Diagnostics)
}

// Formatter holds everything shared between files of one invocation.
// It is safe for concurrent use.
type Formatter struct {
	opts        Options
	cfg         *config.Config
	registry    *syntax.Registry
	engine      Runner
	fingerprint string
}

// NewFormatter validates opts and builds the engine and registry.
func NewFormatter(opts Options) (*Formatter, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	registry := opts.Registry
	if registry == nil {
		registry = syntax.DefaultRegistry()
	}
	registry, err := registry.WithExtensions(cfg.Languages)
	if err != nil {
		return nil, fmt.Errorf("languages: %w", err)
	}
	if opts.Language != "" {
		if _, err := registry.Lookup(opts.Language); err != nil {
			return nil, err
		}
	}

	build := opts.Passes
	if build == nil {
		if build, err = DefaultPasses(); err != nil {
			return nil, err
		}
	}
	eng, err := build(cfg, registry, engine.Options{
		MaxRounds:    cfg.Engine.MaxRounds,
		Strict:       cfg.Engine.Strict,
		ParseTimeout: cfg.Engine.ParseTimeout.Std(),
	})
	if err != nil {
		return nil, err
	}
	return &Formatter{
		opts:        opts,
		cfg:         cfg,
		registry:    registry,
		engine:      eng,
		fingerprint: passesFingerprint(cfg, eng),
	}, nil
}

// WithProgress returns a copy of f that reports to sink.
func (f *Formatter) WithProgress(sink ProgressSink) *Formatter {
	out := *f
	out.opts.Progress = sink
	return &out
}

// Passes lists the passes this formatter runs.
func (f *Formatter) Passes() []string { return f.engine.Passes() }

// Registry returns the registry files are matched against.
func (f *Formatter) Registry() *syntax.Registry { return f.registry }

// Collect expands paths honouring the configured files.exclude patterns.
func (f *Formatter) Collect(ctx context.Context, paths []string) ([]string, error) {
	return Collector{Registry: f.registry, Exclude: f.cfg.Files.Exclude}.Collect(ctx, paths)
}

// FormatPaths formats provided files or directories. When opts.Check is true
// files are not modified and Changed tells whether formatting would update
// them. When opts.Stdout is true formatted content is returned in the results
// without touching files on disk. Results follow the sorted file order.
func FormatPaths(ctx context.Context, paths []string, opts Options) ([]FileResult, error) {
	f, err := NewFormatter(opts)
	if err != nil {
		return nil, err
	}
	files, err := f.Collect(ctx, paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	return f.FormatFiles(ctx, files)
}

// FormatFiles formats an explicit file list in parallel.
func (f *Formatter) FormatFiles(ctx context.Context, files []string) ([]FileResult, error) {
	span, ctx := trace.BeginCtx(ctx, trace.ScopeDriver, "format files")
	defer span.WithExtra("files", strconv.Itoa(len(files))).End("")

	for _, path := range files {
		emit(f.opts.Progress, Event{File: path, Stage: StageRead, Status: StatusQueued})
	}

	jobs := f.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = f.formatFile(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (f *Formatter) formatFile(ctx context.Context, path string) FileResult {
	start := time.Now()
	res := FileResult{Path: path}
	fail := func(stage Stage, err error) FileResult {
		res.Err = err
		emit(f.opts.Progress, Event{File: path, Stage: stage, Status: StatusError, Err: err, Elapsed: time.Since(start)})
		return res
	}

	emit(f.opts.Progress, Event{File: path, Stage: StageRead, Status: StatusWorking})
	file, err := source.Load(path)
	if err != nil {
		res.Diagnostics = []diag.Diagnostic{diag.NewError(diag.IOLoadError, source.Span{}, err.Error())}
		return fail(StageRead, err)
	}

	emit(f.opts.Progress, Event{File: path, Stage: StageFormat, Status: StatusWorking})
	res = f.Format(ctx, file)
	if res.Err != nil {
		return fail(StageFormat, res.Err)
	}

	if res.Changed && !f.opts.Check && !f.opts.Stdout {
		emit(f.opts.Progress, Event{File: path, Stage: StageWrite, Status: StatusWorking})
		if err := writeFile(path, res.Formatted); err != nil {
			res.Diagnostics = append(res.Diagnostics, diag.NewError(diag.IOWriteError, source.Span{}, err.Error()))
			return fail(StageWrite, err)
		}
		res.Written = true
	}
	emit(f.opts.Progress, Event{
		File:    path,
		Stage:   StageFormat,
		Status:  StatusDone,
		Changed: res.Changed,
		Cached:  res.Cached,
		Rounds:  res.Rounds,
		Elapsed: time.Since(start),
	})
	return res
}

// Format runs the engine over one loaded file, consulting the cache first.
// It never touches the disk apart from the cache.
func (f *Formatter) Format(ctx context.Context, file *source.File) FileResult {
	res := FileResult{Path: file.Path, Original: file.Content}
	ctx = trace.WithFile(ctx, file.Path)

	lang, err := f.language(file.Path)
	if err != nil {
		res.Err = err
		res.Diagnostics = []diag.Diagnostic{diag.NewError(diag.IOUnknownLanguage, source.Span{}, err.Error())}
		return res
	}
	res.Language = lang.Name

	var timer *observ.Timer
	if f.opts.Timings {
		timer = observ.NewTimer()
		ctx = observ.WithTimer(ctx, timer)
	}

	mixed := file.Flags&source.FileMixedEOL != 0
	key := cache.NewKey(version.Version, f.fingerprint, lang.Name, []byte(file.Content))
	if !mixed && f.cached(key) {
		res.Cached = true
		res.Formatted = file.Restore(file.Content)
		return res
	}

	out, err := f.engine.Format(ctx, file.Content, lang.Name)
	res.Diagnostics = out.Diagnostics
	res.Rounds = out.Rounds
	if timer != nil {
		report := timer.Report()
		res.Timings = &report
	}
	if err != nil {
		res.Err = err
		return res
	}
	res.Changed = out.Changed || mixed
	res.Formatted = file.Restore(out.Text)
	if mixed {
		res.Diagnostics = append(res.Diagnostics, diag.New(diag.SevInfo, diag.IOMixedEOL, source.Span{},
			"file mixes CRLF and LF line endings; all lines will end with CRLF"))
	}
	if res.Changed && f.opts.Diff {
		res.Diff = diff.Unified(file.Path, file.Content, out.Text)
	}

	if cacheable(out) {
		// готовый результат - неподвижная точка, следующий запуск его пропустит
		f.store(cache.NewKey(version.Version, f.fingerprint, lang.Name, []byte(out.Text)), file.Path, lang.Name, out.Rounds)
	}
	return res
}

func (f *Formatter) language(path string) (*syntax.Language, error) {
	if f.opts.Language != "" {
		return f.registry.Lookup(f.opts.Language)
	}
	return f.registry.ForPath(path)
}

func (f *Formatter) cached(key cache.Key) bool {
	var e cache.Entry
	ok, err := f.opts.Cache.Get(key, &e)
	return err == nil && ok && e.Clean
}

func (f *Formatter) store(key cache.Key, path, lang string, rounds int) {
	// ошибки кэша не должны ломать форматирование
	_ = f.opts.Cache.Put(key, &cache.Entry{Path: path, Language: lang, Rounds: rounds, Clean: true})
}

// cacheable reports whether out.Text is a fixed point worth remembering: the
// run converged and left no warnings or errors that a cache hit would hide.
func cacheable(out *engine.Result) bool {
	if out.State != engine.StateDone {
		return false
	}
	for _, d := range out.Diagnostics {
		if d.Severity >= diag.SevWarning || d.Code == diag.RunMaxRounds {
			return false
		}
	}
	return true
}

func writeFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	return os.WriteFile(path, data, mode.Perm())
}
