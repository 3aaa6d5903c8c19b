package metadata

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/rebeliceyang/surveylens/internal/answer"
	"github.com/rebeliceyang/surveylens/internal/db/query"
	"github.com/rebeliceyang/surveylens/internal/registry"
	"github.com/rebeliceyang/surveylens/internal/sqltemplate"
)

// Options maps a category key to the values stored in the dataset, most
// frequent first. Single-select values keep their `["X"]` form and
// multi-select values are unnested into `"X"` elements.
type Options map[string][]string

// Values returns the options of one category
func (o Options) Values(key string) []string {
	return o[key]
}

// LoadOptions reads the live option list of every filter category.
// Special categories take their static options.
func LoadOptions(ctx context.Context, x *query.Executor, rw *sqltemplate.Rewriter, reg *registry.Registry, logger *zap.Logger) (Options, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	keyByQuestion := make(map[string]string)
	var qids []string
	opts := make(Options)
	for _, cat := range reg.Categories() {
		if cat.Special {
			opts[cat.Key] = reg.StaticOptions(cat.Key)
			continue
		}
		keyByQuestion[cat.QuestionID] = cat.Key
		qids = append(qids, cat.QuestionID)
	}
	if len(qids) == 0 {
		return opts, nil
	}

	sql, err := rw.PrepareNamed(sqltemplate.Options, sqltemplate.Values{QuestionIDs: qids})
	if err != nil {
		return nil, err
	}
	res, err := x.Execute(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("load filter options: %w", err)
	}

	counts := make(map[string]map[string]int64)
	for _, row := range res.Rows {
		if len(row) < 3 {
			continue
		}
		qid := query.AsString(row[0])
		key, ok := keyByQuestion[qid]
		if !ok {
			continue
		}
		n, _ := query.AsInt64(row[2])
		if counts[key] == nil {
			counts[key] = make(map[string]int64)
		}

		text := query.AsString(row[1])
		if reg.IsMultiSelect(qid) {
			for _, e := range answer.Elements(text) {
				counts[key][answer.WrapElement(e)] += n
			}
			continue
		}
		if bare := answer.Unwrap(text); bare != "" {
			counts[key][answer.WrapSingle(bare)] += n
		}
	}

	for key, byValue := range counts {
		values := make([]string, 0, len(byValue))
		for v := range byValue {
			values = append(values, v)
		}
		slices.SortFunc(values, func(a, b string) int {
			if byValue[a] != byValue[b] {
				if byValue[a] > byValue[b] {
					return -1
				}
				return 1
			}
			if a < b {
				return -1
			}
			if a > b {
				return 1
			}
			return 0
		})
		opts[key] = values
	}

	logger.Debug("loaded live filter options", zap.Int("categories", len(opts)))
	return opts, nil
}
