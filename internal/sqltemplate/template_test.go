package sqltemplate

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/surveylens/internal/filter"
)

func render(t *testing.T, src string, v Values) string {
	t.Helper()
	out, err := NewRewriter("survey", true, nil).Prepare(src, v)
	require.NoError(t, err)
	return out
}

func TestPrepare_PrefixesTables(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "from",
			src:  "SELECT * FROM responses WHERE 1=1",
			want: "SELECT * FROM survey.responses WHERE 1=1",
		},
		{
			name: "join lowercase",
			src:  "select * from responses a join questions q on q.question_id = a.question_id",
			want: "select * from survey.responses a join survey.questions q on q.question_id = a.question_id",
		},
		{
			name: "already qualified",
			src:  "SELECT * FROM survey.responses JOIN other.questions q ON true",
			want: "SELECT * FROM survey.responses JOIN other.questions q ON true",
		},
		{
			name: "table function untouched",
			src:  "SELECT * FROM read_parquet('x.parquet')",
			want: "SELECT * FROM read_parquet('x.parquet')",
		},
		{
			name: "helper macro",
			src:  "SELECT * FROM question_answers('ElR6d2') qa",
			want: "SELECT * FROM survey.question_answers('ElR6d2') qa",
		},
		{
			name: "helper macro in expression",
			src:  "SELECT COUNT(*) FROM respondents r WHERE EXISTS (SELECT 1 FROM respondent_answers(r.respondent_id))",
			want: "SELECT COUNT(*) FROM survey.respondents r WHERE EXISTS (SELECT 1 FROM survey.respondent_answers(r.respondent_id))",
		},
		{
			name: "distinct from",
			src:  "SELECT * FROM responses a WHERE a.answer_text IS DISTINCT FROM b",
			want: "SELECT * FROM survey.responses a WHERE a.answer_text IS DISTINCT FROM b",
		},
		{
			name: "comma list",
			src:  "SELECT * FROM responses a, questions AS q, themes WHERE a.x = q.x",
			want: "SELECT * FROM survey.responses a, survey.questions AS q, survey.themes WHERE a.x = q.x",
		},
		{
			name: "comma list with subquery and cte",
			src:  "WITH f AS (SELECT 1) SELECT * FROM (SELECT 2) s, f, respondents r ORDER BY a, b",
			want: "WITH f AS (SELECT 1) SELECT * FROM (SELECT 2) s, f, survey.respondents r ORDER BY a, b",
		},
		{
			name: "subquery",
			src:  "SELECT * FROM (SELECT 1) x",
			want: "SELECT * FROM (SELECT 1) x",
		},
		{
			name: "literal untouched",
			src:  "SELECT 'FROM responses' FROM responses",
			want: "SELECT 'FROM responses' FROM survey.responses",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, tt.src, Values{}))
		})
	}
}

func TestPrepare_CTEsNotPrefixed(t *testing.T) {
	src := `WITH filtered AS (SELECT r.respondent_id FROM respondents r),
answered (qid, n) AS MATERIALIZED (SELECT question_id, 1 FROM responses)
SELECT * FROM filtered JOIN answered ON true JOIN Filtered f2 ON true`

	out := render(t, src, Values{})
	assert.Contains(t, out, "FROM survey.respondents r")
	assert.Contains(t, out, "FROM survey.responses)")
	assert.Contains(t, out, "SELECT * FROM filtered JOIN answered ON true JOIN Filtered f2")
	assert.NotContains(t, out, "survey.filtered")
	assert.NotContains(t, out, "survey.answered")

	tmpl := Parse(src)
	if diff := cmp.Diff([]string{"filtered", "answered"}, tmpl.CTEs()); diff != "" {
		t.Errorf("CTEs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"respondents", "responses"}, tmpl.Tables()); diff != "" {
		t.Errorf("Tables mismatch (-want +got):\n%s", diff)
	}
}

func TestPrepare_StripsComments(t *testing.T) {
	src := "-- header FROM responses\nSELECT '-- kept' /* FROM respondents */ FROM questions -- trailing\n"
	out := render(t, src, Values{})

	assert.NotContains(t, out, "header")
	assert.NotContains(t, out, "trailing")
	assert.NotContains(t, out, "respondents")
	assert.Contains(t, out, "'-- kept'")
	assert.Contains(t, out, "FROM survey.questions")
}

func TestPrepare_Idempotent(t *testing.T) {
	for _, name := range Names {
		t.Run(string(name), func(t *testing.T) {
			src, err := Source(name)
			require.NoError(t, err)

			v := Values{QuestionID: "ElR6d2", QuestionIDs: []string{"ElR6d2", "Rd9Fu5"}}
			once := render(t, src, v)
			twice := render(t, once, v)
			assert.Equal(t, once, twice)
			assert.NotContains(t, once, "survey.survey.")
			assert.NotContains(t, once, "{{")
		})
	}
}

func TestPrepare_WhereClause(t *testing.T) {
	src, err := Source(Count)
	require.NoError(t, err)

	for _, trivial := range []string{"", "  ", filter.Neutral} {
		out := render(t, src, Values{Where: trivial})
		assert.NotContains(t, out, "AND", "trivial clause %q", trivial)
	}

	clause := "EXISTS (SELECT 1 FROM survey.responses WHERE respondent_id = r.respondent_id AND question_id = 'ElR6d2' AND (answer_text LIKE '%\"x\"%'))"
	out := render(t, src, Values{Where: clause})
	assert.Contains(t, out, "WHERE 1=1 AND EXISTS (SELECT 1 FROM survey.responses WHERE")
	assert.Equal(t, 1, strings.Count(out, "survey.responses"))
}

func TestPrepare_CollapsesDoubledPrefix(t *testing.T) {
	out := render(t, "SELECT * FROM respondents r WHERE 1=1 {{WHERE_CLAUSE}}",
		Values{Where: "EXISTS (SELECT 1 FROM survey.survey.responses WHERE x = 'survey.survey.')"})

	assert.Contains(t, out, "FROM survey.responses WHERE")
	assert.Contains(t, out, "'survey.survey.'", "literal must be preserved")
}

func TestPrepare_NoPrefix(t *testing.T) {
	r := NewRewriter("survey", false, nil)
	assert.Empty(t, r.Prefix())

	out, err := r.Prepare("SELECT * FROM responses", Values{})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM responses", out)
}

func TestPrepare_PlaceholderErrors(t *testing.T) {
	r := NewRewriter("survey", true, nil)

	_, err := r.Prepare("SELECT {{QUESTION_ID}}", Values{})
	assert.True(t, errors.Is(err, ErrUnresolvedPlaceholder))

	_, err = r.Prepare("SELECT '{{QUESTION_ID}}'", Values{QuestionID: "ElR6d2"})
	assert.True(t, errors.Is(err, ErrUnresolvedPlaceholder), "placeholder inside a literal")

	_, err = r.Prepare("SELECT {{QUESTION_ID}}", Values{QuestionID: "x'; DROP"})
	assert.True(t, errors.Is(err, filter.ErrInvalidQuestionID))

	_, err = r.Prepare("SELECT {{QUESTION_IDS}}", Values{QuestionIDs: []string{"ok", "bad id"}})
	assert.True(t, errors.Is(err, filter.ErrInvalidQuestionID))

	_, err = r.Prepare("SELECT {{NOPE}}", Values{})
	assert.True(t, errors.Is(err, ErrUnresolvedPlaceholder))

	_, err = r.Prepare("SELECT {{WHERE_CLAUSE", Values{})
	assert.True(t, errors.Is(err, ErrUnresolvedPlaceholder))
}

func TestPrepare_QuestionIDs(t *testing.T) {
	out := render(t, "SELECT * FROM responses WHERE question_id IN ({{QUESTION_IDS}})",
		Values{QuestionIDs: []string{"Fr3Ed1", "Fr3Ed2"}})
	assert.Equal(t, "SELECT * FROM survey.responses WHERE question_id IN ('Fr3Ed1', 'Fr3Ed2')", out)
}

func TestPrepare_QuestionID(t *testing.T) {
	out := render(t, "SELECT * FROM responses WHERE question_id = {{QUESTION_ID}}",
		Values{QuestionID: "ElR6d2"})
	assert.Equal(t, "SELECT * FROM survey.responses WHERE question_id = 'ElR6d2'", out)
}

func TestPrepareNamed_SingleQuestion(t *testing.T) {
	r := NewRewriter("survey", true, nil)
	for _, name := range []Name{Breakdown, Themes} {
		out, err := r.PrepareNamed(name, Values{QuestionID: "ElR6d2"})
		require.NoError(t, err, name)
		assert.Contains(t, out, "question_id = 'ElR6d2'", name)
		assert.NotContains(t, out, "{{", name)
	}
}

func TestPrepareNamed_Unknown(t *testing.T) {
	_, err := NewRewriter("", false, nil).PrepareNamed("missing", Values{})
	assert.Error(t, err)
}

func TestLex(t *testing.T) {
	toks := Lex(`SELECT "col" FROM t WHERE a = 'it''s' -- c`)
	var kinds []TokenKind
	for _, tok := range toks {
		if tok.Kind != Space {
			kinds = append(kinds, tok.Kind)
		}
	}
	want := []TokenKind{Word, QuotedIdent, Word, Word, Word, Word, Punct, String, Comment}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("token kinds mismatch (-want +got):\n%s", diff)
	}
}
