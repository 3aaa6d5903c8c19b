package filter

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/rebeliceyang/surveylens/internal/answer"
	"github.com/rebeliceyang/surveylens/internal/models"
	"github.com/rebeliceyang/surveylens/internal/registry"
)

// Neutral is the tautology returned when no filter is active
const Neutral = "1=1"

// OuterAlias is the alias templates give the respondents table
const OuterAlias = "r"

var questionIDPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ErrInvalidQuestionID is returned for identifiers outside [A-Za-z0-9]
var ErrInvalidQuestionID = errors.New("invalid question id")

// ValidQuestionID reports whether id is safe to splice into SQL
func ValidQuestionID(id string) bool {
	return questionIDPattern.MatchString(id)
}

// SchemaPrefix turns a schema name into a table prefix ("survey" -> "survey.")
func SchemaPrefix(schema string) string {
	schema = strings.TrimSuffix(strings.TrimSpace(schema), ".")
	if schema == "" {
		return ""
	}
	return schema + "."
}

// Builder generates SQL WHERE clauses from filter states
type Builder struct {
	registry *registry.Registry
	prefix   string
	logger   *zap.Logger
}

// NewBuilder creates a new filter builder. schema may be empty when the
// dataset tables are reachable unqualified.
func NewBuilder(reg *registry.Registry, schema string, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		registry: reg,
		prefix:   SchemaPrefix(schema),
		logger:   logger,
	}
}

// Prefix returns the table prefix predicates are built with
func (b *Builder) Prefix() string {
	return b.prefix
}

// BuildPredicate turns selected values of one question into an EXISTS clause.
// It returns "" when the question id is malformed or no value survives
// normalization; callers treat "" as no constraint.
func BuildPredicate(questionID string, values []string, multiSelect bool, schemaPrefix string) string {
	if !ValidQuestionID(questionID) {
		return ""
	}

	var conditions []string
	for _, v := range normalizeValues(values, multiSelect) {
		conditions = append(conditions, likeCondition(v))
	}
	if len(conditions) == 0 {
		return ""
	}

	return existsClause(schemaPrefix, questionID, strings.Join(conditions, " OR "))
}

// BuildPredicate is the logged variant of the package-level BuildPredicate
func (b *Builder) BuildPredicate(questionID string, values []string, multiSelect bool) string {
	if !ValidQuestionID(questionID) {
		b.logger.Warn("rejected question id", zap.String("question_id", questionID))
		return ""
	}
	return BuildPredicate(questionID, values, multiSelect, b.prefix)
}

// BuildWhere compiles a filter state into one conjunctive clause. It returns
// Neutral when nothing is active and "" when the compiled clause fails
// validation.
func (b *Builder) BuildWhere(state models.FilterState) string {
	clause, err := b.BuildWhereChecked(state)
	if err != nil {
		return ""
	}
	return clause
}

// BuildWhereChecked is BuildWhere with the validation error exposed
func (b *Builder) BuildWhereChecked(state models.FilterState) (string, error) {
	var predicates []string

	for _, cat := range b.registry.Categories() {
		values := nonBlank(state[cat.Key])
		if len(values) == 0 {
			continue
		}

		var p string
		if cat.Special && cat.Key == registry.Continent {
			p = b.continentPredicate(values)
		} else {
			p = b.BuildPredicate(cat.QuestionID, values, b.registry.IsMultiSelect(cat.QuestionID))
		}

		if p = strings.TrimSpace(p); p != "" {
			predicates = append(predicates, p)
		}
	}

	if len(predicates) == 0 {
		return Neutral, nil
	}

	clause := strings.Join(predicates, " AND ")
	if err := Validate(clause); err != nil {
		b.logger.Error("compiled where clause rejected",
			zap.Error(err),
			zap.Int("predicates", len(predicates)))
		return "", fmt.Errorf("compile filters: %w", err)
	}

	return clause, nil
}

// continentPredicate expands continents to country codes and matches them
// against the geography question, which stores plain numbers.
func (b *Builder) continentPredicate(continents []string) string {
	seen := make(map[int]bool)
	var codes []int
	for _, name := range continents {
		name = answer.Unwrap(name)
		cc := b.registry.ContinentCodes(name)
		if len(cc) == 0 {
			b.logger.Debug("unknown continent", zap.String("continent", name))
			continue
		}
		for _, c := range cc {
			if !seen[c] {
				seen[c] = true
				codes = append(codes, c)
			}
		}
	}
	if len(codes) == 0 {
		return ""
	}
	slices.Sort(codes)

	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = strconv.Itoa(c)
	}
	cond := fmt.Sprintf("CAST(answer_text AS INTEGER) IN (%s)", strings.Join(parts, ", "))

	return existsClause(b.prefix, registry.GeographyQuestionID, cond)
}

func existsClause(prefix, questionID, conditions string) string {
	return fmt.Sprintf(
		"EXISTS (SELECT 1 FROM %sresponses WHERE respondent_id = %s.respondent_id AND question_id = '%s' AND (%s))",
		prefix, OuterAlias, questionID, conditions,
	)
}

// likeCondition matches the JSON-encoded element anywhere in answer_text.
// Quotes and backslashes in the value are stored JSON-escaped.
func likeCondition(value string) string {
	escaped, needsEscape := EscapeLike(answer.WrapElement(value))
	cond := "answer_text LIKE '%" + EscapeLiteral(escaped) + "%'"
	if needsEscape {
		cond += ` ESCAPE '\'`
	}
	return cond
}

// normalizeValues strips storage wrappers and drops blanks. Multi-select
// values that arrive as whole arrays are expanded to their elements.
func normalizeValues(values []string, multiSelect bool) []string {
	var out []string
	for _, v := range values {
		if multiSelect && answer.Detect(v) == answer.Array {
			for _, e := range answer.Elements(v) {
				if e = strings.TrimSpace(e); e != "" && !slices.Contains(out, e) {
					out = append(out, e)
				}
			}
			continue
		}
		bare := strings.TrimSpace(answer.Unwrap(v))
		if bare != "" && !slices.Contains(out, bare) {
			out = append(out, bare)
		}
	}
	return out
}

func nonBlank(values []string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

// EscapeLiteral doubles single quotes for use inside a SQL string literal
func EscapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// EscapeLike escapes LIKE metacharacters with a backslash. The boolean
// reports whether an ESCAPE clause is required.
func EscapeLike(s string) (string, bool) {
	if !strings.ContainsAny(s, `\%_`) {
		return s, false
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s, true
}
