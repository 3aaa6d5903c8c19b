package sqltemplate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rebeliceyang/surveylens/internal/filter"
)

// Placeholders understood by Render. QUESTION_ID and QUESTION_IDS expand
// to quoted literals and must appear bare in template text.
const (
	WhereClause = "{{WHERE_CLAUSE}}"
	QuestionID  = "{{QUESTION_ID}}"
	QuestionIDs = "{{QUESTION_IDS}}"
)

var (
	// ErrUnresolvedPlaceholder is returned when a placeholder has no value
	// or is not known
	ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")
)

// helperFunctions are dataset macros that live in the survey schema and
// need the same prefix as its tables.
var helperFunctions = map[string]bool{
	"question_answers":   true,
	"respondent_answers": true,
}

// tableKeywords introduce a table reference
var tableKeywords = []string{"FROM", "JOIN", "INTO", "UPDATE"}

// Template is a parsed SQL query with comments removed and its table
// references located.
type Template struct {
	tokens []Token
	ctes   map[string]bool
	tables map[int]bool // token indexes to prefix
}

// Parse lexes src, strips comments and locates the identifiers that refer to
// dataset tables or helper macros.
func Parse(src string) *Template {
	var tokens []Token
	for _, tok := range Lex(src) {
		if tok.Kind != Comment {
			tokens = append(tokens, tok)
		}
	}

	t := &Template{
		tokens: tokens,
		ctes:   make(map[string]bool),
		tables: make(map[int]bool),
	}
	t.collectCTEs()
	t.collectTables()
	return t
}

// CTEs returns the lower-cased names defined in WITH clauses
func (t *Template) CTEs() []string {
	names := make([]string, 0, len(t.ctes))
	for i, tok := range t.tokens {
		if t.ctes[strings.ToLower(tok.Text)] && t.isCTEDefinition(i) {
			names = append(names, strings.ToLower(tok.Text))
		}
	}
	return names
}

// Tables returns the table and macro names that will receive the prefix,
// in the order they appear.
func (t *Template) Tables() []string {
	var names []string
	for i, tok := range t.tokens {
		if t.tables[i] {
			names = append(names, tok.Text)
		}
	}
	return names
}

// Values fills placeholders at render time
type Values struct {
	Where       string
	QuestionID  string
	QuestionIDs []string
}

// Render writes the query with prefix applied to every located table
// reference and placeholders substituted.
func (t *Template) Render(prefix string, v Values) (string, error) {
	var b strings.Builder
	for i, tok := range t.tokens {
		if tok.Kind == String && strings.Contains(tok.Text, "{{") {
			// placeholders render their own quoting
			return "", fmt.Errorf("%w: quoted %s", ErrUnresolvedPlaceholder, tok.Text)
		}
		if tok.Kind == Placeholder {
			s, err := v.resolve(tok.Text)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
			continue
		}
		if t.tables[i] && prefix != "" {
			b.WriteString(prefix)
		}
		b.WriteString(tok.Text)
	}

	return collapsePrefix(b.String(), prefix), nil
}

func (v Values) resolve(placeholder string) (string, error) {
	switch placeholder {
	case WhereClause:
		clause := strings.TrimSpace(v.Where)
		if clause == "" || clause == filter.Neutral {
			return "", nil
		}
		return "AND " + clause, nil

	case QuestionID:
		if v.QuestionID == "" {
			return "", fmt.Errorf("%w: %s", ErrUnresolvedPlaceholder, placeholder)
		}
		if !filter.ValidQuestionID(v.QuestionID) {
			return "", fmt.Errorf("%w: %q", filter.ErrInvalidQuestionID, v.QuestionID)
		}
		return "'" + v.QuestionID + "'", nil

	case QuestionIDs:
		if len(v.QuestionIDs) == 0 {
			return "", fmt.Errorf("%w: %s", ErrUnresolvedPlaceholder, placeholder)
		}
		quoted := make([]string, len(v.QuestionIDs))
		for i, id := range v.QuestionIDs {
			if !filter.ValidQuestionID(id) {
				return "", fmt.Errorf("%w: %q", filter.ErrInvalidQuestionID, id)
			}
			quoted[i] = "'" + id + "'"
		}
		return strings.Join(quoted, ", "), nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnresolvedPlaceholder, placeholder)
}

// next returns the index of the first non-space token after i, or -1.
// A negative i stays negative.
func (t *Template) next(i int) int {
	if i < 0 {
		return -1
	}
	for j := i + 1; j < len(t.tokens); j++ {
		if t.tokens[j].Kind != Space {
			return j
		}
	}
	return -1
}

// prev returns the index of the last non-space token before i, or -1
func (t *Template) prev(i int) int {
	for j := i - 1; j >= 0; j-- {
		if t.tokens[j].Kind != Space {
			return j
		}
	}
	return -1
}

func (t *Template) isPunct(i int, s string) bool {
	return i >= 0 && i < len(t.tokens) && t.tokens[i].Kind == Punct && t.tokens[i].Text == s
}

func (t *Template) isWord(i int, kw string) bool {
	return i >= 0 && i < len(t.tokens) && t.tokens[i].Is(kw)
}

// matchingParen returns the index of the ')' closing the '(' at i
func (t *Template) matchingParen(i int) int {
	depth := 0
	for j := i; j < len(t.tokens); j++ {
		switch {
		case t.isPunct(j, "("):
			depth++
		case t.isPunct(j, ")"):
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// collectCTEs walks every WITH clause:
//
//	WITH [RECURSIVE] name [(cols)] AS [[NOT] MATERIALIZED] ( ... ) [, ...]
func (t *Template) collectCTEs() {
	for i := range t.tokens {
		if !t.isWord(i, "WITH") {
			continue
		}
		j := t.next(i)
		if t.isWord(j, "RECURSIVE") {
			j = t.next(j)
		}
		for j >= 0 {
			if t.tokens[j].Kind != Word && t.tokens[j].Kind != QuotedIdent {
				break
			}
			name := strings.ToLower(strings.Trim(t.tokens[j].Text, `"`))

			k := t.next(j)
			if t.isPunct(k, "(") {
				k = t.next(t.matchingParen(k))
			}
			if !t.isWord(k, "AS") {
				break
			}
			k = t.next(k)
			if t.isWord(k, "NOT") {
				k = t.next(k)
			}
			if t.isWord(k, "MATERIALIZED") {
				k = t.next(k)
			}
			if !t.isPunct(k, "(") {
				break
			}
			t.ctes[name] = true

			end := t.matchingParen(k)
			if end < 0 {
				break
			}
			comma := t.next(end)
			if !t.isPunct(comma, ",") {
				break
			}
			j = t.next(comma)
		}
	}
}

func (t *Template) isCTEDefinition(i int) bool {
	n := t.next(i)
	if t.isPunct(n, "(") {
		n = t.next(t.matchingParen(n))
	}
	return t.isWord(n, "AS")
}

func (t *Template) collectTables() {
	for i, tok := range t.tokens {
		if tok.Kind == Word && helperFunctions[strings.ToLower(tok.Text)] {
			if t.isPunct(t.next(i), "(") && !t.isPunct(t.prev(i), ".") {
				t.tables[i] = true
			}
			continue
		}

		if !t.isTableKeyword(i) || t.isWord(t.prev(i), "DISTINCT") {
			continue
		}
		// FROM a x, b y, (SELECT ...) z
		for j := t.next(i); j >= 0; {
			end := t.markTable(j)
			if !t.isPunct(end, ",") {
				break
			}
			j = t.next(end)
		}
	}
}

// markTable records the table reference starting at j and returns the index
// of the first token after the reference and its alias.
func (t *Template) markTable(j int) int {
	var k int
	switch {
	case t.isPunct(j, "("):
		k = t.next(t.matchingParen(j))
	case t.tokens[j].Kind == Word:
		name := t.tokens[j].Text
		k = t.next(j)
		switch {
		case t.isPunct(k, "."):
			// already qualified
			k = t.next(t.next(k))
		case t.isPunct(k, "("):
			// function call; helper macros were handled above
			k = t.next(t.matchingParen(k))
		case t.ctes[strings.ToLower(name)]:
		case isReserved(name):
			return -1
		default:
			t.tables[j] = true
		}
	default:
		return -1
	}

	if t.isWord(k, "AS") {
		return t.next(t.next(k))
	}
	if k >= 0 && t.tokens[k].Kind == Word && !clauseWords[strings.ToUpper(t.tokens[k].Text)] {
		return t.next(k)
	}
	return k
}

func (t *Template) isTableKeyword(i int) bool {
	for _, kw := range tableKeywords {
		if t.isWord(i, kw) {
			return true
		}
	}
	return false
}

// words that may follow FROM/JOIN without naming a table
var reserved = map[string]bool{
	"SELECT":  true,
	"LATERAL": true,
	"VALUES":  true,
	"ONLY":    true,
}

// clauseWords end a table reference; any other word after it is an alias
var clauseWords = map[string]bool{
	"WHERE": true, "ON": true, "USING": true, "JOIN": true,
	"LEFT": true, "RIGHT": true, "INNER": true, "OUTER": true,
	"FULL": true, "CROSS": true, "NATURAL": true, "GROUP": true,
	"ORDER": true, "LIMIT": true, "OFFSET": true, "HAVING": true,
	"UNION": true, "EXCEPT": true, "INTERSECT": true, "WINDOW": true,
	"SET": true, "RETURNING": true,
}

func isReserved(word string) bool {
	return reserved[strings.ToUpper(word)]
}

// collapsePrefix removes accidental repeats such as "survey.survey.".
// String literals are left untouched.
func collapsePrefix(sql, prefix string) string {
	schema := strings.TrimSuffix(prefix, ".")
	if schema == "" || !strings.Contains(sql, prefix+prefix) {
		return sql
	}

	tokens := Lex(sql)
	isQualifier := func(i int) bool {
		return i+1 < len(tokens) &&
			tokens[i].Kind == Word && tokens[i].Text == schema &&
			tokens[i+1].Kind == Punct && tokens[i+1].Text == "."
	}

	var b strings.Builder
	for i := 0; i < len(tokens); i++ {
		if isQualifier(i) && isQualifier(i+2) {
			i++
			continue
		}
		b.WriteString(tokens[i].Text)
	}
	return b.String()
}
