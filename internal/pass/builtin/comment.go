package builtin

import (
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/text/unicode/norm"

	"passfmt/internal/edit"
	"passfmt/internal/syntax"
)

// CommentNFC rewrites comments to Unicode normalization form C. Only the part
// that differs is replaced, so the edit never touches the comment's leading
// or trailing whitespace. Identifiers and string literals are left alone.
type CommentNFC struct{}

func (CommentNFC) Name() string { return "comment_nfc" }

func (CommentNFC) Run(ctx *Context) ([]edit.Edit, error) {
	var edits []edit.Edit
	syntax.Walk(ctx.Root, func(n *sitter.Node) bool {
		if ctx.Language.IsString(n.Type()) {
			return false
		}
		if !ctx.Language.IsComment(n.Type()) {
			return true
		}
		text := ctx.Content(n)
		if norm.NFC.IsNormalString(text) {
			return false
		}
		want := norm.NFC.String(text)
		pre, suf := commonAffixes(text, want)
		base := int(n.StartByte())
		edits = append(edits, ctx.Replace(base+pre, base+len(text)-suf, want[pre:len(want)-suf]))
		return false
	})
	return edits, nil
}

// commonAffixes returns the byte lengths of the longest common rune-aligned
// prefix and suffix of a and b. The two never overlap.
func commonAffixes(a, b string) (pre, suf int) {
	for pre < len(a) && pre < len(b) {
		ra, na := utf8.DecodeRuneInString(a[pre:])
		rb, nb := utf8.DecodeRuneInString(b[pre:])
		if ra != rb || na != nb {
			break
		}
		pre += na
	}
	for suf < len(a)-pre && suf < len(b)-pre {
		ra, na := utf8.DecodeLastRuneInString(a[:len(a)-suf])
		rb, nb := utf8.DecodeLastRuneInString(b[:len(b)-suf])
		if ra != rb || na != nb || suf+na > len(a)-pre || suf+nb > len(b)-pre {
			break
		}
		suf += na
	}
	return pre, suf
}
