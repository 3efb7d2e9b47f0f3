package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"testing"

	"passfmt/internal/cache"
	"passfmt/internal/config"
	"passfmt/internal/diag"
	"passfmt/internal/edit"
	"passfmt/internal/pass"
	"passfmt/internal/pipeline"
	"passfmt/internal/source"
	"passfmt/internal/syntax"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestCollectFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/x.go":                "package a\n",
		"a/y.rs":                "fn main() {}\n",
		"a/.git/hooks.go":       "package hooks\n",
		"vendor/dep/dep.go":     "package dep\n",
		"web/node_modules/m.js": "x\n",
		"web/app.js":            "let x = 1;\n",
		"notes.txt":             "hello\n",
	})

	got, err := CollectFiles(context.Background(), []string{root, filepath.Join(root, "a", "x.go")}, syntax.DefaultRegistry())
	if err != nil {
		t.Fatalf("CollectFiles: %v", err)
	}
	want := []string{
		filepath.Join(root, "a", "x.go"),
		filepath.Join(root, "a", "y.rs"),
		filepath.Join(root, "web", "app.js"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CollectFiles = %v, want %v", got, want)
	}
}

func TestCollectFilesKeepsExplicitFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"notes.txt": "hello\n"})
	path := filepath.Join(root, "notes.txt")
	got, err := CollectFiles(context.Background(), []string{path}, syntax.DefaultRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != path {
		t.Fatalf("explicit file dropped: %v", got)
	}
}

func TestCollectorExclude(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"gen/api.go":        "package gen\n",
		"src/main.go":       "package main\n",
		"src/main_gen.go":   "package main\n",
		"src/testdata/x.go": "package x\n",
	})
	c := Collector{Registry: syntax.DefaultRegistry(), Exclude: []string{"gen", "*_gen.go"}}
	got, err := c.Collect(context.Background(), []string{root})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(root, "src", "main.go")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Collect = %v, want %v", got, want)
	}
}

func TestCollectFilesMissingPath(t *testing.T) {
	_, err := CollectFiles(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, syntax.DefaultRegistry())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestFormatPathsModes(t *testing.T) {
	const input = "package main  \n"
	const want = "package main\n"

	tests := []struct {
		name      string
		opts      Options
		wantDisk  string
		wantBytes string
		written   bool
	}{
		{name: "write", opts: Options{}, wantDisk: want, written: true},
		{name: "check", opts: Options{Check: true}, wantDisk: input},
		{name: "stdout", opts: Options{Stdout: true}, wantDisk: input, wantBytes: want},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			path := filepath.Join(root, "main.go")
			writeTree(t, root, map[string]string{"main.go": input})

			results, err := FormatPaths(context.Background(), []string{root}, tt.opts)
			if err != nil {
				t.Fatalf("FormatPaths: %v", err)
			}
			if len(results) != 1 {
				t.Fatalf("expected 1 result, got %d", len(results))
			}
			res := results[0]
			if res.Err != nil || !res.Changed || res.Language != "go" || res.Written != tt.written {
				t.Fatalf("unexpected result %+v", res)
			}
			if res.Original != input {
				t.Fatalf("Original = %q", res.Original)
			}
			if got := readFile(t, path); got != tt.wantDisk {
				t.Fatalf("disk = %q, want %q", got, tt.wantDisk)
			}
			if tt.wantBytes != "" && string(res.Formatted) != tt.wantBytes {
				t.Fatalf("Formatted = %q, want %q", res.Formatted, tt.wantBytes)
			}
		})
	}
}

func TestFormatPathsRestoresCRLFAndBOM(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "main.go")
	writeTree(t, root, map[string]string{"main.go": "\ufeffpackage main  \r\n"})

	results, err := FormatPaths(context.Background(), []string{path}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !results[0].Changed {
		t.Fatalf("expected a change: %+v", results[0])
	}
	if got := readFile(t, path); got != "\ufeffpackage main\r\n" {
		t.Fatalf("disk = %q", got)
	}
}

func TestFormatPathsUnifiesMixedLineEndings(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "main.go")
	writeTree(t, root, map[string]string{"main.go": "package main\r\n\nvar x = 1\r\n"})

	results, err := FormatPaths(context.Background(), []string{path}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	res := results[0]
	if !res.Changed || !res.Written {
		t.Fatalf("mixed endings must count as a change: %+v", res)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != diag.IOMixedEOL {
		t.Fatalf("expected one mixed EOL note, got %+v", res.Diagnostics)
	}
	if got := readFile(t, path); got != "package main\r\n\r\nvar x = 1\r\n" {
		t.Fatalf("disk = %q", got)
	}
}

func TestFormatPathsDiff(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"main.go": "package main  \n"})
	results, err := FormatPaths(context.Background(), []string{root}, Options{Check: true, Diff: true})
	if err != nil {
		t.Fatal(err)
	}
	d := results[0].Diff
	if !strings.Contains(d, "-package main  \n") || !strings.Contains(d, "+package main\n") {
		t.Fatalf("unexpected diff:\n%s", d)
	}
}

func TestFormatPathsCache(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"main.go": "package main  \n"})
	c, err := cache.Open(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}

	first, err := FormatPaths(context.Background(), []string{root}, Options{Cache: c})
	if err != nil {
		t.Fatal(err)
	}
	if first[0].Cached || !first[0].Written {
		t.Fatalf("first run: %+v", first[0])
	}

	second, err := FormatPaths(context.Background(), []string{root}, Options{Cache: c})
	if err != nil {
		t.Fatal(err)
	}
	if !second[0].Cached || second[0].Changed {
		t.Fatalf("second run should hit the cache: %+v", second[0])
	}

	// другая конфигурация - другой ключ
	cfg := config.Default()
	cfg.Style.MaxBlankLines = 3
	third, err := FormatPaths(context.Background(), []string{root}, Options{Cache: c, Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	if third[0].Cached {
		t.Fatalf("config change must miss the cache")
	}
}

func TestFormatPathsUnknownLanguage(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "notes.txt")
	writeTree(t, root, map[string]string{"notes.txt": "hello\n"})

	results, err := FormatPaths(context.Background(), []string{path}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	res := results[0]
	if !errors.Is(res.Err, syntax.ErrUnknownLanguage) || !res.Failed() {
		t.Fatalf("expected unknown language failure, got %+v", res)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != diag.IOUnknownLanguage {
		t.Fatalf("unexpected diagnostics %v", res.Diagnostics)
	}
}

func TestFormatPathsLanguageMapping(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "build.gotmpl")
	writeTree(t, root, map[string]string{"build.gotmpl": "package main  \n"})

	cfg := config.Default()
	cfg.Languages = map[string]string{".gotmpl": "go"}
	results, err := FormatPaths(context.Background(), []string{root}, Options{Config: cfg, Check: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Path != filepath.ToSlash(path) || !results[0].Changed {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestFormatPathsNoFiles(t *testing.T) {
	_, err := FormatPaths(context.Background(), []string{t.TempDir()}, Options{})
	if !errors.Is(err, ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles, got %v", err)
	}
}

func TestNewFormatterRejectsUnknownPass(t *testing.T) {
	cfg := config.Default()
	cfg.Passes.Disable = []string{"trailing_whitespace", "tidy_everything"}
	if _, err := NewFormatter(Options{Config: cfg}); !errors.Is(err, ErrUnknownPass) {
		t.Fatalf("expected ErrUnknownPass, got %v", err)
	}
}

func TestDisabledPassIsSkipped(t *testing.T) {
	cfg := config.Default()
	cfg.Passes.Disable = []string{"trailing_whitespace"}
	f, err := NewFormatter(Options{Config: cfg, Language: "go"})
	if err != nil {
		t.Fatal(err)
	}
	res := f.Format(context.Background(), source.FromBytes("-", []byte("package main  \n"), source.FileVirtual))
	if res.Err != nil || res.Changed {
		t.Fatalf("trailing whitespace must survive: %+v", res)
	}
}

func TestFormatTimings(t *testing.T) {
	f, err := NewFormatter(Options{Language: "go", Timings: true})
	if err != nil {
		t.Fatal(err)
	}
	res := f.Format(context.Background(), source.FromBytes("-", []byte("package main\n"), source.FileVirtual))
	if res.Timings == nil || len(res.Timings.Phases) == 0 || res.Timings.Phases[0].Name != "parse" {
		t.Fatalf("expected timings starting with parse, got %+v", res.Timings)
	}
}

func TestProgressEvents(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.go": "package a  \n",
		"b.go": "package b\n",
	})
	var (
		mu     sync.Mutex
		events []Event
	)
	sink := SinkFunc(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})
	if _, err := FormatPaths(context.Background(), []string{root}, Options{Check: true, Jobs: 2, Progress: sink}); err != nil {
		t.Fatal(err)
	}

	done := map[string]Event{}
	queued := 0
	for _, ev := range events {
		switch ev.Status {
		case StatusQueued:
			queued++
		case StatusDone:
			done[filepath.Base(ev.File)] = ev
		case StatusError:
			t.Fatalf("unexpected error event %+v", ev)
		}
	}
	if queued != 2 || len(done) != 2 {
		t.Fatalf("queued=%d done=%d: %+v", queued, len(done), events)
	}
	if !done["a.go"].Changed || done["b.go"].Changed {
		t.Fatalf("changed flags wrong: %+v", done)
	}
}

func TestCustomPassesShareCacheOnlyWithSamePassSet(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"main.go": "package main\n"})
	c, err := cache.Open(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	// the settings value comes from the loaded config, not from the style section
	marker := pass.NewFunc("marker", func(ctx *pass.Context[string]) ([]edit.Edit, error) {
		if strings.Contains(ctx.Text(), ctx.Config) {
			return nil, nil
		}
		return []edit.Edit{edit.Insert(len(ctx.Source), ctx.Config)}, nil
	})
	p, err := pipeline.New[string](marker)
	if err != nil {
		t.Fatal(err)
	}
	custom := Pipeline(p, func(cfg *config.Config) string {
		return "// max blank lines " + strconv.Itoa(cfg.Style.MaxBlankLines) + "\n"
	})

	f, err := NewFormatter(Options{Passes: custom, Cache: c, Check: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := f.Passes(); !reflect.DeepEqual(got, []string{"marker"}) {
		t.Fatalf("Passes() = %v", got)
	}
	res, err := f.FormatFiles(context.Background(), []string{filepath.Join(root, "main.go")})
	if err != nil {
		t.Fatal(err)
	}
	if want := "package main\n// max blank lines 1\n"; string(res[0].Formatted) != want || !res[0].Changed {
		t.Fatalf("custom pass result: %+v", res[0])
	}

	// the bundled set sees the file as clean and caches it; the custom set
	// must not pick that entry up
	if _, err := FormatPaths(context.Background(), []string{root}, Options{Cache: c}); err != nil {
		t.Fatal(err)
	}
	again, err := f.FormatFiles(context.Background(), []string{filepath.Join(root, "main.go")})
	if err != nil {
		t.Fatal(err)
	}
	if again[0].Cached || !again[0].Changed {
		t.Fatalf("custom passes reused the bundled cache entry: %+v", again[0])
	}
}
