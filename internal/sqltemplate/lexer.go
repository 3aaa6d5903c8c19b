package sqltemplate

import "strings"

// TokenKind classifies a lexed token
type TokenKind int

const (
	Space TokenKind = iota
	Word
	QuotedIdent
	String
	Number
	Punct
	Comment
	Placeholder
)

// Token is a slice of template text with its kind
type Token struct {
	Kind TokenKind
	Text string
}

// Is reports whether a word token equals kw, case-insensitively
func (t Token) Is(kw string) bool {
	return t.Kind == Word && strings.EqualFold(t.Text, kw)
}

// Lex splits SQL text into tokens. It never fails: unterminated strings and
// comments run to the end of input.
func Lex(src string) []Token {
	var tokens []Token
	i := 0
	for i < len(src) {
		ch := src[i]
		start := i
		switch {
		case isSpace(ch):
			for i < len(src) && isSpace(src[i]) {
				i++
			}
			tokens = append(tokens, Token{Space, src[start:i]})

		case ch == '-' && i+1 < len(src) && src[i+1] == '-':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			tokens = append(tokens, Token{Comment, src[start:i]})

		case ch == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				i = len(src)
			} else {
				i += end + 4
			}
			tokens = append(tokens, Token{Comment, src[start:i]})

		case ch == '{' && strings.HasPrefix(src[i:], "{{"):
			end := strings.Index(src[i:], "}}")
			if end < 0 {
				i = len(src)
			} else {
				i += end + 2
			}
			tokens = append(tokens, Token{Placeholder, src[start:i]})

		case ch == '\'':
			i = scanQuoted(src, i, '\'')
			tokens = append(tokens, Token{String, src[start:i]})

		case ch == '"':
			i = scanQuoted(src, i, '"')
			tokens = append(tokens, Token{QuotedIdent, src[start:i]})

		case isIdentStart(ch):
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			tokens = append(tokens, Token{Word, src[start:i]})

		case ch >= '0' && ch <= '9':
			for i < len(src) && (src[i] >= '0' && src[i] <= '9' || src[i] == '.') {
				i++
			}
			tokens = append(tokens, Token{Number, src[start:i]})

		default:
			i++
			tokens = append(tokens, Token{Punct, src[start:i]})
		}
	}
	return tokens
}

// scanQuoted returns the index just past a quoted run starting at i.
// A doubled quote character is an escape.
func scanQuoted(src string, i int, q byte) int {
	i++
	for i < len(src) {
		if src[i] == q {
			if i+1 < len(src) && src[i+1] == q {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return i
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9') || ch == '$'
}
