package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnsafeClause is returned when a compiled clause fails validation
var ErrUnsafeClause = errors.New("unsafe where clause")

var (
	doubledConnective  = regexp.MustCompile(`\b(AND|OR)\s+(AND|OR)\b`)
	leadingConnective  = regexp.MustCompile(`^\s*(AND|OR)\b`)
	trailingConnective = regexp.MustCompile(`\b(AND|OR)\s*$`)
	openConnective     = regexp.MustCompile(`\(\s*(AND|OR)\b`)
	closeConnective    = regexp.MustCompile(`\b(AND|OR)\s*\)`)
	tautology          = regexp.MustCompile(`\bOR\s+('\w*'|\d+)\s*=\s*('\w*'|\d+)`)
)

// Validate checks a compiled clause for structural problems. Text inside
// string literals is ignored, so escaped user values never trip it.
func Validate(clause string) error {
	if strings.TrimSpace(clause) == "" {
		return fmt.Errorf("%w: empty condition", ErrUnsafeClause)
	}

	stripped, err := stripLiterals(clause)
	if err != nil {
		return err
	}

	depth := 0
	prev := byte(0)
	for i := 0; i < len(stripped); i++ {
		ch := stripped[i]
		switch ch {
		case '(':
			depth++
		case ')':
			if prev == '(' {
				return fmt.Errorf("%w: empty parentheses", ErrUnsafeClause)
			}
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: unbalanced parentheses", ErrUnsafeClause)
			}
		case ';':
			return fmt.Errorf("%w: statement terminator", ErrUnsafeClause)
		case '-':
			if i+1 < len(stripped) && stripped[i+1] == '-' {
				return fmt.Errorf("%w: line comment", ErrUnsafeClause)
			}
		case '/':
			if i+1 < len(stripped) && stripped[i+1] == '*' {
				return fmt.Errorf("%w: block comment", ErrUnsafeClause)
			}
		}
		if ch != ' ' && ch != '\t' && ch != '\n' && ch != '\r' {
			prev = ch
		}
	}
	if depth != 0 {
		return fmt.Errorf("%w: unbalanced parentheses", ErrUnsafeClause)
	}

	upper := strings.ToUpper(stripped)
	switch {
	case doubledConnective.MatchString(upper):
		return fmt.Errorf("%w: duplicated connective", ErrUnsafeClause)
	case leadingConnective.MatchString(upper), trailingConnective.MatchString(upper):
		return fmt.Errorf("%w: dangling connective", ErrUnsafeClause)
	case openConnective.MatchString(upper), closeConnective.MatchString(upper):
		return fmt.Errorf("%w: dangling connective", ErrUnsafeClause)
	case tautology.MatchString(upper):
		return fmt.Errorf("%w: tautology outside literal", ErrUnsafeClause)
	}

	return nil
}

// stripLiterals replaces the contents of every '...' literal with nothing,
// keeping the quotes. Doubled quotes inside a literal are escapes.
func stripLiterals(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	in := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if !in {
			b.WriteByte(ch)
			if ch == '\'' {
				in = true
			}
			continue
		}
		if ch == '\'' {
			if i+1 < len(s) && s[i+1] == '\'' {
				i++
				continue
			}
			in = false
			b.WriteByte(ch)
		}
	}
	if in {
		return "", fmt.Errorf("%w: unterminated string literal", ErrUnsafeClause)
	}
	return b.String(), nil
}
