package metadata

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rebeliceyang/surveylens/internal/db/query"
	"github.com/rebeliceyang/surveylens/internal/sqltemplate"
)

// DatasetTables are the tables every snapshot provides
var DatasetTables = []string{"respondents", "questions", "responses", "themes"}

var tablePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Table represents one dataset table
type Table struct {
	Name     string
	RowCount int64
}

// ListTables returns the dataset tables with their row counts
func ListTables(ctx context.Context, x *query.Executor, rw *sqltemplate.Rewriter) ([]Table, error) {
	tables := make([]Table, 0, len(DatasetTables))
	for _, name := range DatasetTables {
		n, err := GetTableRowCount(ctx, x, rw, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, Table{Name: name, RowCount: n})
	}
	return tables, nil
}

// GetTableRowCount returns the exact row count of a dataset table
func GetTableRowCount(ctx context.Context, x *query.Executor, rw *sqltemplate.Rewriter, table string) (int64, error) {
	if !tablePattern.MatchString(table) {
		return 0, fmt.Errorf("invalid table name %q", table)
	}
	sql, err := rw.Prepare("SELECT COUNT(*) AS n FROM "+table, sqltemplate.Values{})
	if err != nil {
		return 0, err
	}

	res, err := x.Execute(ctx, sql)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	if len(res.Rows) == 0 {
		return 0, fmt.Errorf("count %s: no rows returned", table)
	}

	n, ok := query.AsInt64(res.Rows[0][0])
	if !ok {
		return 0, fmt.Errorf("invalid row count type: %T", res.Rows[0][0])
	}
	return n, nil
}
