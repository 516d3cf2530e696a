package grammar

import (
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Token kinds produced by ruleLexer. Order matters: the first matching rule wins.
const (
	tokWhitespace = "Whitespace"
	tokArrow      = "Arrow"
	tokSubOpt     = "SubOpt"
	tokPlainOpt   = "PlainOpt"
	tokBoldCode   = "BoldCode"
	tokBold       = "Bold"
	tokLinkItalic = "LinkItalic"
	tokLink       = "Link"
	tokItalic     = "Italic"
	tokCode       = "Code"
	tokBar        = "Bar"
	tokWord       = "Word"
	tokStray      = "Stray"
	tokPunct      = "Punct"
)

const (
	wordPattern  = `[\p{L}\p{N}](?:[\p{L}\p{N}\p{M}-]*[\p{L}\p{N}\p{M}])?`
	punctPattern = "[^\\s\\p{L}\\p{N}\\p{M}|*`_\\[<]+|[\\[<_]"
)

var ruleLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: tokWhitespace, Pattern: `\s+`},
	{Name: tokArrow, Pattern: `→|->`},
	{Name: tokSubOpt, Pattern: `<sub>\s*opt\s*</sub>|_opt_|_\?_|ₒₚₜ`},
	{Name: tokPlainOpt, Pattern: `_opt`},
	{Name: tokBoldCode, Pattern: "\\*\\*`[^`]+`\\*\\*"},
	{Name: tokBold, Pattern: `\*\*[^*\s][^*]*\*\*`},
	{Name: tokLinkItalic, Pattern: `\[\*[^*\]]+\*\]\([^)\s]*\)`},
	{Name: tokLink, Pattern: `\[[^\]*]+\]\([^)\s]*\)`},
	{Name: tokItalic, Pattern: `\*[^*\s][^*]*\*`},
	{Name: tokCode, Pattern: "`[^`]+`"},
	{Name: tokBar, Pattern: `\|`},
	{Name: tokWord, Pattern: wordPattern},
	{Name: tokStray, Pattern: "\\*+|`"},
	{Name: tokPunct, Pattern: punctPattern},
})

var tokenNames = func() map[lexer.TokenType]string {
	out := make(map[lexer.TokenType]string)
	for name, typ := range ruleLexer.Symbols() {
		out[typ] = name
	}
	return out
}()

var (
	bareWordRe  = regexp.MustCompile(`^` + wordPattern + `$`)
	barePunctRe = regexp.MustCompile(`^(?:` + punctPattern + `)$`)
)

// lexeme is a token with its kind name and byte range inside the rule text.
type lexeme struct {
	kind  string
	value string
	start int
	end   int
}

// lexRule tokenises text, dropping whitespace. On a lexer error it returns the
// lexemes read so far and the offset where reading stopped.
func lexRule(text string) ([]lexeme, int, error) {
	lex, err := ruleLexer.LexString("", text)
	if err != nil {
		return nil, 0, err
	}
	out := make([]lexeme, 0, 16)
	offset := 0
	for {
		tok, err := lex.Next()
		if err != nil {
			return out, offset, err
		}
		if tok.EOF() {
			return out, offset, nil
		}
		start := tok.Pos.Offset
		end := start + len(tok.Value)
		offset = end
		kind := tokenNames[tok.Type]
		if kind == tokWhitespace {
			continue
		}
		out = append(out, lexeme{kind: kind, value: tok.Value, start: start, end: end})
	}
}

// nameOf extracts the category name from a nonterminal-shaped lexeme.
func nameOf(lx lexeme) string {
	switch lx.kind {
	case tokItalic:
		return strings.Trim(lx.value, "*")
	case tokLinkItalic:
		text := lx.value[1:strings.Index(lx.value, "](")]
		return strings.Trim(text, "*")
	case tokLink:
		return lx.value[1:strings.Index(lx.value, "](")]
	default:
		return lx.value
	}
}

// literalOf extracts the literal from a terminal-shaped lexeme.
func literalOf(lx lexeme) string {
	switch lx.kind {
	case tokBoldCode:
		return strings.TrimSuffix(strings.TrimPrefix(lx.value, "**`"), "`**")
	case tokBold:
		return strings.TrimSuffix(strings.TrimPrefix(lx.value, "**"), "**")
	case tokCode:
		return strings.Trim(lx.value, "`")
	default:
		return lx.value
	}
}

func isNameLexeme(kind string) bool {
	switch kind {
	case tokItalic, tokLinkItalic, tokLink, tokWord:
		return true
	}
	return false
}

func isLiteralLexeme(kind string) bool {
	switch kind {
	case tokBoldCode, tokBold, tokCode, tokPunct:
		return true
	}
	return false
}
