package syntax

import "errors"

var (
	// ErrGrammarUnavailable is returned when a language's grammar cannot be loaded.
	ErrGrammarUnavailable = errors.New("grammar unavailable")
	// ErrParseTimeout is returned when parsing exceeds its time budget.
	ErrParseTimeout = errors.New("parse timed out")
	// ErrReparse is returned when an incremental reparse produced no tree.
	ErrReparse = errors.New("incremental reparse failed")
	// ErrUnknownLanguage is returned for names or paths no grammar is registered for.
	ErrUnknownLanguage = errors.New("unknown language")
	ErrNoQuery         = errors.New("no such query")
)
