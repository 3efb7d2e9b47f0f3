package diagfmt

import (
	"fmt"
	"strings"
)

// PathMode selects how file paths are shown in reports.
type PathMode uint8

const (
	PathModeAuto     PathMode = iota // relative when under the base dir
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

var pathModeNames = [...]string{
	PathModeAuto:     "auto",
	PathModeAbsolute: "absolute",
	PathModeRelative: "relative",
	PathModeBasename: "basename",
}

func (m PathMode) String() string {
	if int(m) < len(pathModeNames) {
		return pathModeNames[m]
	}
	return pathModeNames[PathModeAuto]
}

// ParsePathMode accepts the names printed by String.
func ParsePathMode(s string) (PathMode, error) {
	for i, name := range pathModeNames {
		if strings.EqualFold(s, name) {
			return PathMode(i), nil
		}
	}
	return PathModeAuto, fmt.Errorf("unknown path mode %q (expected %s)", s, strings.Join(pathModeNames[:], "|"))
}

// PrettyOpts configures Pretty.
type PrettyOpts struct {
	Color     bool
	Context   int // строки контекста перед строкой диагностики
	PathMode  PathMode
	BaseDir   string // пусто: текущий каталог
	ShowNotes bool
	Max       int // на файл, 0: без ограничения
}

// JSONOpts configures JSON and BuildOutput.
type JSONOpts struct {
	PathMode PathMode
	BaseDir  string
	Max      int // на файл

	IncludePositions bool // line/col рядом с байтовыми смещениями
	IncludeNotes     bool
	IncludeDiff      bool
	IncludeTimings   bool
}

// DisplayPath renders path the way reports show it; stdin becomes <stdin>.
func DisplayPath(path string, mode PathMode, baseDir string) string {
	return displayPath(path, mode, baseDir)
}
