package filter

import (
	"strings"
	"testing"

	"github.com/rebeliceyang/surveylens/internal/registry"
)

func newTestBuilder() *Builder {
	return NewBuilder(registry.Default(), "survey", nil)
}

func TestBuildWhere_Experience(t *testing.T) {
	b := newTestBuilder()
	state := registry.Default().NewState()
	state.Set(registry.Experience, []string{`["2 to 5 years"]`})

	got := b.BuildWhere(state)
	want := `EXISTS (SELECT 1 FROM survey.responses WHERE respondent_id = r.respondent_id AND question_id = 'ElR6d2' AND (answer_text LIKE '%"2 to 5 years"%'))`
	if got != want {
		t.Errorf("BuildWhere mismatch.\nExpected: %s\nGot:      %s", want, got)
	}
	if strings.HasSuffix(strings.TrimSpace(got), "AND") {
		t.Error("clause must not end with a dangling AND")
	}
}

func TestBuildWhere_EmptyIsNeutral(t *testing.T) {
	b := newTestBuilder()

	if got := b.BuildWhere(registry.Default().NewState()); got != Neutral {
		t.Errorf("expected %q for empty state, got %q", Neutral, got)
	}

	state := registry.Default().NewState()
	state.Set(registry.Industry, []string{"", "  "})
	if got := b.BuildWhere(state); got != Neutral {
		t.Errorf("blank values should be skipped, got %q", got)
	}
}

func TestBuildWhere_Deterministic(t *testing.T) {
	b := newTestBuilder()
	state := registry.Default().NewState()
	state.Set(registry.UseCases, []string{`"Home automation"`, `"AI/LLM workflows"`})
	state.Set(registry.Continent, []string{"Oceania", "Europe"})
	state.Set(registry.Experience, []string{`["2 to 5 years"]`})

	first := b.BuildWhere(state)
	for i := 0; i < 20; i++ {
		if got := b.BuildWhere(state.Clone()); got != first {
			t.Fatalf("compilation not idempotent on run %d", i)
		}
	}

	// registry order: continent, experience, ..., useCases
	ci := strings.Index(first, "'"+registry.GeographyQuestionID+"'")
	ei := strings.Index(first, "'ElR6d2'")
	ui := strings.Index(first, "'Rd9Fu5'")
	if !(ci < ei && ei < ui) {
		t.Errorf("predicates not in registry order: %s", first)
	}
	if n := strings.Count(first, ") AND EXISTS"); n != 2 {
		t.Errorf("expected 2 joining ANDs, got %d", n)
	}
}

func TestBuildWhere_ContinentUsesNumericCodes(t *testing.T) {
	b := newTestBuilder()
	state := registry.Default().NewState()
	state.Set(registry.Continent, []string{"Oceania"})

	got := b.BuildWhere(state)
	if strings.Contains(got, "LIKE") {
		t.Errorf("continent predicate must not use JSON LIKE form: %s", got)
	}
	if !strings.Contains(got, "question_id = '"+registry.GeographyQuestionID+"'") {
		t.Errorf("continent predicate must target geography question: %s", got)
	}
	want := "CAST(answer_text AS INTEGER) IN (36, 90, 184, 242, 258, 296, 316, 520, 540, 548, 554, 570, 583, 584, 585, 598, 772, 776, 798, 882)"
	if !strings.Contains(got, want) {
		t.Errorf("expected full Oceania code set.\nExpected to contain: %s\nGot: %s", want, got)
	}
}

func TestBuildWhere_ContinentUnion(t *testing.T) {
	b := newTestBuilder()
	state := registry.Default().NewState()
	state.Set(registry.Continent, []string{"Oceania", "South America", "Atlantis"})

	got := b.BuildWhere(state)
	if strings.Count(got, "EXISTS") != 1 {
		t.Errorf("continents should collapse into one predicate: %s", got)
	}
	for _, code := range []string{"36", "554", "76", "858"} {
		if !strings.Contains(got, code) {
			t.Errorf("missing code %s in %s", code, got)
		}
	}
}

func TestBuildPredicate(t *testing.T) {
	tests := []struct {
		name     string
		qid      string
		values   []string
		multi    bool
		contains []string
		empty    bool
	}{
		{
			name:     "single select wrapper stripped",
			qid:      "ElR6d2",
			values:   []string{`["5 to 10 years"]`},
			contains: []string{`answer_text LIKE '%"5 to 10 years"%'`},
		},
		{
			name:     "multi select element stripped",
			qid:      "Rd9Fu5",
			values:   []string{`"Home automation"`, `"Data processing/ETL"`},
			multi:    true,
			contains: []string{`'%"Home automation"%' OR answer_text LIKE '%"Data processing/ETL"%'`},
		},
		{
			name:     "apostrophe doubled",
			qid:      "Hn5Rw9",
			values:   []string{`["I don't have any influence"]`},
			contains: []string{`'%"I don''t have any influence"%'`},
		},
		{
			name:     "wildcards escaped",
			qid:      "Hn5Rw9",
			values:   []string{"100%_sure"},
			contains: []string{`'%"100\%\_sure"%' ESCAPE '\'`},
		},
		{
			name:     "json escapes before like escapes",
			qid:      "Hn5Rw9",
			values:   []string{`["The \"new\" editor"]`, `C:\Tools`},
			contains: []string{`'%"The \\"new\\" editor"%' ESCAPE '\'`, `'%"C:\\\\Tools"%' ESCAPE '\'`},
		},
		{
			name:   "invalid question id",
			qid:    "ElR6d2'; --",
			values: []string{"x"},
			empty:  true,
		},
		{
			name:   "only blanks",
			qid:    "ElR6d2",
			values: []string{`[""]`, " "},
			empty:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildPredicate(tt.qid, tt.values, tt.multi, "survey.")
			if tt.empty {
				if got != "" {
					t.Errorf("expected empty predicate, got %q", got)
				}
				return
			}
			for _, c := range tt.contains {
				if !strings.Contains(got, c) {
					t.Errorf("expected %q to contain %q", got, c)
				}
			}
			if err := Validate(got); err != nil {
				t.Errorf("predicate failed validation: %v", err)
			}
		})
	}
}

func TestBuildPredicate_NoPrefix(t *testing.T) {
	got := BuildPredicate("ElR6d2", []string{"x"}, false, "")
	if !strings.Contains(got, "FROM responses WHERE") {
		t.Errorf("expected unprefixed table, got %s", got)
	}
}

func TestBuildWhere_InjectionResistance(t *testing.T) {
	b := newTestBuilder()
	payloads := []string{
		"'; DROP TABLE x; --",
		"' OR 1=1 --",
		`["x')) OR 1=1 --"]`,
		"%' OR '1'='1",
	}

	for _, p := range payloads {
		state := registry.Default().NewState()
		state.Set(registry.Industry, []string{p})

		got := b.BuildWhere(state)
		if got == "" {
			// rejected outright is acceptable
			continue
		}
		if err := Validate(got); err != nil {
			t.Errorf("payload %q produced unsafe clause: %v", p, err)
		}
		stripped, err := stripLiterals(got)
		if err != nil {
			t.Fatalf("payload %q: %v", p, err)
		}
		upper := strings.ToUpper(stripped)
		for _, bad := range []string{"DROP", "1=1", "--", ";"} {
			if strings.Contains(upper, bad) {
				t.Errorf("payload %q escaped its literal: %s", p, got)
			}
		}
	}
}

func TestSchemaPrefix(t *testing.T) {
	tests := map[string]string{
		"survey":  "survey.",
		"survey.": "survey.",
		"":        "",
		"  ":      "",
	}
	for in, want := range tests {
		if got := SchemaPrefix(in); got != want {
			t.Errorf("SchemaPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}
