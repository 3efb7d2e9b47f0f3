package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB - ограничение для тестового корпуса
	maxFuzzInput = 1 << 16
)

// languageSeeds are small inputs per bundled language that exercise every
// pass at least once.
var languageSeeds = map[string][]string{
	"go": {
		"",
		"package main\n",
		"package main  \n\n\n\nimport (\n\t\"os\"\n\t\"fmt\"\n)\n\nfunc f(a,b int) {\n    return\n}",
		"package p\n// Café\nvar s = `raw  \n  text`\n",
		"package p\nimport (\n\t\"b\"\n\t\"a\"\n\t\"b\"\n)\n",
	},
	"rust": {
		"fn f(){x;}",
		"fn f(a,b: i32) {\n\tlet s = \"a  \n  b\";\n}\n\n\n",
	},
	"javascript": {
		"let x = [1,2,3];  \n",
		"function f(a,b){return {a,b}}",
	},
	"python": {
		"def f(a,b):\n\treturn a  \n",
	},
}

func addCorpusSeeds(f *testing.F, lang string) {
	for _, s := range languageSeeds[lang] {
		f.Add([]byte(s))
	}
	if lang == "go" {
		addRepositorySeeds(f)
	}
}

// addRepositorySeeds adds the module's own Go sources, which are realistic
// and already formatted.
func addRepositorySeeds(f *testing.F) {
	root := filepath.Join("..", "..", "internal")
	if _, err := os.Stat(root); err != nil {
		return
	}
	count := 0
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || count >= 32 {
			return nil
		}
		if d.IsDir() || filepath.Ext(path) != ".go" {
			return nil
		}
		// #nosec G304 -- path comes from a repository walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		count++
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
