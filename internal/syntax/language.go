package syntax

import (
	"fmt"
	"slices"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Language describes one grammar and the node kinds passes need to know about.
type Language struct {
	Name       string
	Extensions []string

	// StringKinds are node types whose interior bytes are literal content.
	// Whitespace passes never touch bytes strictly inside them.
	StringKinds []string
	// CommentKinds are node types holding comments.
	CommentKinds []string
	// Queries are named tree-sitter query sources compiled on first use.
	Queries map[string]string

	grammar func() *sitter.Language

	loadOnce sync.Once
	lang     *sitter.Language
	loadErr  error

	queryMu sync.Mutex
	queries map[string]*sitter.Query

	parsers sync.Pool
}

// NewLanguage declares a language backed by grammar.
func NewLanguage(name string, grammar func() *sitter.Language, exts ...string) *Language {
	return &Language{
		Name:       name,
		Extensions: exts,
		grammar:    grammar,
	}
}

// Grammar loads the tree-sitter language once.
func (l *Language) Grammar() (*sitter.Language, error) {
	l.loadOnce.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				l.loadErr = fmt.Errorf("%w: %s: %v", ErrGrammarUnavailable, l.Name, r)
			}
		}()
		if l.grammar == nil {
			l.loadErr = fmt.Errorf("%w: %s has no grammar", ErrGrammarUnavailable, l.Name)
			return
		}
		l.lang = l.grammar()
		if l.lang == nil {
			l.loadErr = fmt.Errorf("%w: %s", ErrGrammarUnavailable, l.Name)
		}
	})
	return l.lang, l.loadErr
}

// Query returns the compiled query registered under name.
func (l *Language) Query(name string) (*sitter.Query, error) {
	src, ok := l.Queries[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", l.Name, ErrNoQuery, name)
	}
	l.queryMu.Lock()
	defer l.queryMu.Unlock()
	if q, ok := l.queries[name]; ok {
		return q, nil
	}
	lang, err := l.Grammar()
	if err != nil {
		return nil, err
	}
	q, err := sitter.NewQuery([]byte(src), lang)
	if err != nil {
		return nil, fmt.Errorf("%s: query %q: %w", l.Name, name, err)
	}
	if l.queries == nil {
		l.queries = make(map[string]*sitter.Query)
	}
	l.queries[name] = q
	return q, nil
}

func (l *Language) IsString(kind string) bool {
	return slices.Contains(l.StringKinds, kind)
}

func (l *Language) IsComment(kind string) bool {
	return slices.Contains(l.CommentKinds, kind)
}

func (l *Language) String() string {
	return l.Name
}

// acquire takes a parser configured for l from the pool.
func (l *Language) acquire() (*sitter.Parser, error) {
	lang, err := l.Grammar()
	if err != nil {
		return nil, err
	}
	if p, ok := l.parsers.Get().(*sitter.Parser); ok && p != nil {
		return p, nil
	}
	p := sitter.NewParser()
	p.SetLanguage(lang)
	return p, nil
}

func (l *Language) release(p *sitter.Parser) {
	if p != nil {
		l.parsers.Put(p)
	}
}
