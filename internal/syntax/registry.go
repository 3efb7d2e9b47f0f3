package syntax

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/lua"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
)

// Registry maps language names and file extensions to languages.
// It is immutable after construction and safe for concurrent use.
type Registry struct {
	byName map[string]*Language
	byExt  map[string]*Language
	names  []string
}

// NewRegistry builds a registry; names and extensions must be unique.
func NewRegistry(langs ...*Language) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*Language, len(langs)),
		byExt:  make(map[string]*Language),
	}
	for _, l := range langs {
		name := strings.ToLower(l.Name)
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("language %q registered twice", l.Name)
		}
		r.byName[name] = l
		r.names = append(r.names, name)
		for _, ext := range l.Extensions {
			ext = normalizeExt(ext)
			if prev, dup := r.byExt[ext]; dup {
				return nil, fmt.Errorf("extension %q claimed by %s and %s", ext, prev.Name, l.Name)
			}
			r.byExt[ext] = l
		}
	}
	sort.Strings(r.names)
	return r, nil
}

// Lookup finds a language by name (case-insensitive).
func (r *Registry) Lookup(name string) (*Language, error) {
	if l, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
}

// ForPath picks the language for a file by its extension.
func (r *Registry) ForPath(path string) (*Language, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil, fmt.Errorf("%w: %s has no extension", ErrUnknownLanguage, path)
	}
	if l, ok := r.byExt[normalizeExt(ext)]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("%w: no grammar for %s files", ErrUnknownLanguage, ext)
}

// Names returns the sorted language names.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Extensions returns the sorted extensions mapped to name.
func (r *Registry) Extensions(name string) []string {
	var out []string
	for ext, l := range r.byExt {
		if strings.EqualFold(l.Name, name) {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}

// WithExtensions returns a copy of r with extra extension to language-name
// mappings. Existing extensions may be remapped; languages are shared.
func (r *Registry) WithExtensions(extra map[string]string) (*Registry, error) {
	if len(extra) == 0 {
		return r, nil
	}
	out := &Registry{
		byName: r.byName,
		byExt:  make(map[string]*Language, len(r.byExt)+len(extra)),
		names:  r.names,
	}
	for ext, l := range r.byExt {
		out.byExt[ext] = l
	}
	for ext, name := range extra {
		l, err := r.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("extension %q: %w", ext, err)
		}
		out.byExt[normalizeExt(ext)] = l
	}
	return out, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

const goImportsQuery = `(import_declaration (import_spec_list) @list)`

// Builtin returns the languages bundled with passfmt.
func Builtin() []*Language {
	goLang := NewLanguage("go", golang.GetLanguage, ".go")
	goLang.StringKinds = []string{"interpreted_string_literal", "raw_string_literal"}
	goLang.CommentKinds = []string{"comment"}
	goLang.Queries = map[string]string{"imports": goImportsQuery}

	rustLang := NewLanguage("rust", rust.GetLanguage, ".rs")
	rustLang.StringKinds = []string{"string_literal", "raw_string_literal"}
	rustLang.CommentKinds = []string{"line_comment", "block_comment"}

	js := NewLanguage("javascript", javascript.GetLanguage, ".js", ".mjs", ".cjs", ".jsx")
	js.StringKinds = []string{"string", "template_string"}
	js.CommentKinds = []string{"comment"}

	py := NewLanguage("python", python.GetLanguage, ".py", ".pyi")
	py.StringKinds = []string{"string"}
	py.CommentKinds = []string{"comment"}

	cLang := NewLanguage("c", c.GetLanguage, ".c", ".h")
	cLang.StringKinds = []string{"string_literal", "char_literal"}
	cLang.CommentKinds = []string{"comment"}

	luaLang := NewLanguage("lua", lua.GetLanguage, ".lua")
	luaLang.StringKinds = []string{"string"}
	luaLang.CommentKinds = []string{"comment"}

	sh := NewLanguage("bash", bash.GetLanguage, ".sh", ".bash")
	sh.StringKinds = []string{"string", "raw_string", "heredoc_body"}
	sh.CommentKinds = []string{"comment"}

	return []*Language{goLang, rustLang, js, py, cLang, luaLang, sh}
}

// DefaultRegistry builds a registry of the bundled languages.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(Builtin()...)
	if err != nil {
		// bundled table is static; a clash here is a programming error
		panic(err)
	}
	return r
}
