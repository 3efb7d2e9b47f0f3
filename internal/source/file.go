package source

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

// FileFlags records what Load undid so Restore can redo it.
type FileFlags uint8

const (
	FileVirtual        FileFlags = 1 << iota // stdin or test input, never written
	FileHadBOM                               // started with a UTF-8 byte order mark
	FileNormalizedCRLF                       // CRLF line endings were folded to LF
	FileMixedEOL                             // CRLF and bare LF lines both occurred
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// File is an input in the form the engine sees: LF line endings, no BOM.
type File struct {
	Path    string
	Content string
	Flags   FileFlags
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromBytes(path, data, 0), nil
}

// FromBytes normalises data. A lone CR is content, not a line ending.
func FromBytes(path string, data []byte, flags FileFlags) *File {
	if rest, ok := bytes.CutPrefix(data, bom); ok {
		data = rest
		flags |= FileHadBOM
	}
	if crlf := bytes.Count(data, []byte("\r\n")); crlf > 0 {
		if bytes.Count(data, []byte("\n")) > crlf {
			flags |= FileMixedEOL
		}
		data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
		flags |= FileNormalizedCRLF
	}
	if path != "" && path != "-" {
		path = filepath.ToSlash(filepath.Clean(path))
	}
	return &File{Path: path, Content: string(data), Flags: flags}
}

// EOL is the line ending Restore writes.
func (f *File) EOL() string {
	if f.Flags&FileNormalizedCRLF != 0 {
		return "\r\n"
	}
	return "\n"
}

// Restore converts formatted text back to the on-disk shape. Mixed endings
// come back uniformly as CRLF.
func (f *File) Restore(text string) []byte {
	out := make([]byte, 0, len(text)+len(bom))
	if f.Flags&FileHadBOM != 0 {
		out = append(out, bom...)
	}
	if eol := f.EOL(); eol != "\n" {
		text = strings.ReplaceAll(text, "\n", eol)
	}
	return append(out, text...)
}
