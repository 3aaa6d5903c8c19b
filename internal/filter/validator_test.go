package filter

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		clause string
		ok     bool
	}{
		{"simple", "a = 1", true},
		{"nested", "EXISTS (SELECT 1 FROM t WHERE (x = 1))", true},
		{"paren inside literal", "x LIKE '%(home automation, learning%'", true},
		{"escaped quote", "x = 'don''t'", true},
		{"terminator inside literal", "x = '; DROP TABLE y; --'", true},
		{"escape clause", `x LIKE '%\%%' ESCAPE '\'`, true},
		{"empty", "   ", false},
		{"unbalanced open", "EXISTS (SELECT 1", false},
		{"unbalanced close", "a = 1)", false},
		{"empty parens", "a IN ()", false},
		{"terminator", "a = 1; DROP TABLE t", false},
		{"line comment", "a = 1 -- rest", false},
		{"block comment", "a = 1 /* x */", false},
		{"double and", "a = 1 AND AND b = 2", false},
		{"double and lowercase", "a = 1 and  and b = 2", false},
		{"leading and", "AND a = 1", false},
		{"trailing and", "a = 1 AND", false},
		{"dangling in group", "(a = 1 OR ) AND b = 2", false},
		{"unterminated literal", "a = 'x", false},
		{"tautology", "a = 'x' OR 1=1", false},
		{"quoted tautology", "a = 'x' OR '1'='1'", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.clause)
			if tt.ok && err != nil {
				t.Errorf("expected %q to pass, got %v", tt.clause, err)
			}
			if !tt.ok {
				if err == nil {
					t.Errorf("expected %q to be rejected", tt.clause)
				} else if !errors.Is(err, ErrUnsafeClause) {
					t.Errorf("expected ErrUnsafeClause, got %v", err)
				}
			}
		})
	}
}

func TestStripLiterals(t *testing.T) {
	got, err := stripLiterals("a = 'it''s' AND b = 'x'")
	if err != nil {
		t.Fatal(err)
	}
	if got != "a = '' AND b = ''" {
		t.Errorf("unexpected strip result %q", got)
	}
}
