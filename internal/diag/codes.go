package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Engine
	EngInfo               Code = 1000
	EngGrammarUnavailable Code = 1001
	EngParseTimeout       Code = 1002
	EngReparseFailed      Code = 1003
	EngSyntaxErrors       Code = 1004
	EngSyntaxRegressed    Code = 1005

	// Edits rejected or excluded by the batch resolver
	EditInfo             Code = 2000
	EditInvalidRange     Code = 2001
	EditMisalignedOffset Code = 2002
	EditStale            Code = 2003
	EditConflict         Code = 2004

	// Passes
	PassInfo   Code = 3000
	PassFailed Code = 3001
	PassReport Code = 3002

	// Fixed-point loop
	RunInfo        Code = 4000
	RunMaxRounds   Code = 4001
	RunOscillation Code = 4002

	// Driver / IO
	IOInfo            Code = 5000
	IOLoadError       Code = 5001
	IOWriteError      Code = 5002
	IOUnknownLanguage Code = 5003
	IOMixedEOL        Code = 5004

	// Configuration
	CfgInfo       Code = 6000
	CfgUnknownKey Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:           "Unknown error",
		EngInfo:               "Engine information",
		EngGrammarUnavailable: "grammar cannot be loaded",
		EngParseTimeout:       "parse budget exceeded",
		EngReparseFailed:      "incremental reparse failed",
		EngSyntaxErrors:       "input contains syntax errors",
		EngSyntaxRegressed:    "formatting introduced syntax errors",
		EditInfo:              "Edit information",
		EditInvalidRange:      "edit range out of bounds",
		EditMisalignedOffset:  "edit splits a multi-byte character",
		EditStale:             "edit computed against an older buffer",
		EditConflict:          "overlapping edits from different passes",
		PassInfo:              "Pass information",
		PassFailed:            "pass failed",
		PassReport:            "pass report",
		RunInfo:               "Run information",
		RunMaxRounds:          "maximum number of rounds exceeded",
		RunOscillation:        "edit keeps recurring",
		IOInfo:                "I/O information",
		IOLoadError:           "cannot read file",
		IOWriteError:          "cannot write file",
		IOUnknownLanguage:     "no grammar registered for file",
		IOMixedEOL:            "mixed line endings unified",
		CfgInfo:               "Configuration information",
		CfgUnknownKey:         "unknown configuration key",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("ENG%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("EDT%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("PAS%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("RUN%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("CFG%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.ID()), nil
}
