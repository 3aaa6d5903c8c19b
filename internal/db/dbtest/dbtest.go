// Package dbtest builds a small survey snapshot on disk for integration tests.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/rebeliceyang/surveylens/internal/models"
)

const schemaSQL = `
CREATE TABLE respondents (
    respondent_id TEXT PRIMARY KEY,
    submitted_at  TEXT
);
CREATE TABLE questions (
    question_id   TEXT PRIMARY KEY,
    section       TEXT NOT NULL,
    position      INTEGER NOT NULL,
    question_text TEXT
);
CREATE TABLE responses (
    respondent_id TEXT NOT NULL,
    question_id   TEXT NOT NULL,
    answer_text   TEXT
);
CREATE TABLE themes (
    respondent_id TEXT NOT NULL,
    question_id   TEXT NOT NULL,
    theme         TEXT NOT NULL
);
`

// Respondents in the fixture
const Respondents = 6

var questions = [][]any{
	{"Lc8Xv1", "Respondents", 1, "Country"},
	{"ElR6d2", "Respondents", 2, "Experience"},
	{"Rd9Fu5", "Usage", 3, "Use cases"},
	{"Fr3Ed1", "Satisfaction", 4, "Editor"},
	{"Fr3Db2", "Satisfaction", 5, "Debugging"},
	{"Ch2Th8", "Feedback", 6, "Biggest challenges"},
}

// r1 and r2 are Oceania with 2 to 5 years; r5 has 2 to 5 years in Europe.
var responses = [][]any{
	{"r1", "Lc8Xv1", "554"},
	{"r2", "Lc8Xv1", "36"},
	{"r3", "Lc8Xv1", "276"},
	{"r4", "Lc8Xv1", "840"},
	{"r5", "Lc8Xv1", "250"},
	{"r6", "Lc8Xv1", "76"},

	{"r1", "ElR6d2", `["2 to 5 years"]`},
	{"r2", "ElR6d2", `["2 to 5 years"]`},
	{"r3", "ElR6d2", `["5 to 10 years"]`},
	{"r4", "ElR6d2", `["Less than 1 year"]`},
	{"r5", "ElR6d2", `["2 to 5 years"]`},

	{"r1", "Rd9Fu5", `["Home automation","AI/LLM workflows"]`},
	{"r2", "Rd9Fu5", `["Home automation"]`},
	{"r3", "Rd9Fu5", `["Data processing/ETL"]`},
	{"r5", "Rd9Fu5", `["AI/LLM workflows"]`},

	{"r1", "Fr3Ed1", "5"},
	{"r2", "Fr3Ed1", "4"},
	{"r3", "Fr3Ed1", "4"},
	{"r1", "Fr3Db2", "2"},
	{"r4", "Fr3Db2", "3"},
}

var themes = [][]any{
	{"r1", "Ch2Th8", "Documentation"},
	{"r2", "Ch2Th8", "Documentation"},
	{"r3", "Ch2Th8", "Performance"},
	{"r5", "Ch2Th8", "Debugging"},
}

// Seed writes the fixture to a file in t.TempDir and returns its path
func Seed(t testing.TB) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "survey.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("create fixture schema: %v", err)
	}

	insert := func(query string, rows [][]any) {
		for _, row := range rows {
			if _, err := db.Exec(query, row...); err != nil {
				t.Fatalf("insert fixture row %v: %v", row, err)
			}
		}
	}
	for i := 1; i <= Respondents; i++ {
		insert(`INSERT INTO respondents (respondent_id, submitted_at) VALUES (?, ?)`,
			[][]any{{"r" + string(rune('0'+i)), "2025-06-01"}})
	}
	insert(`INSERT INTO questions (question_id, section, position, question_text) VALUES (?, ?, ?, ?)`, questions)
	insert(`INSERT INTO responses (respondent_id, question_id, answer_text) VALUES (?, ?, ?)`, responses)
	insert(`INSERT INTO themes (respondent_id, question_id, theme) VALUES (?, ?, ?)`, themes)

	return path
}

// Config returns an engine config for the seeded file. With schema set the
// file is attached under that name.
func Config(path, schema string) models.EngineConfig {
	return models.EngineConfig{
		Driver:       "sqlite",
		DatasetPath:  path,
		Schema:       schema,
		CacheEntries: 64,
	}
}
