package survey

import (
	"context"
	"slices"
	"strings"

	"github.com/rebeliceyang/surveylens/internal/answer"
	"github.com/rebeliceyang/surveylens/internal/db/query"
	"github.com/rebeliceyang/surveylens/internal/models"
	"github.com/rebeliceyang/surveylens/internal/sqltemplate"
)

// grouped runs a template returning (answer, respondents) pairs. Multi-select
// arrays are split into their options; since every respondent stores one
// array per question the element sums are still respondent counts.
func (s *Service) grouped(ctx context.Context, chart models.ChartSpec, name sqltemplate.Name, where string, multi bool) (models.Breakdown, error) {
	res, err := s.run(ctx, name, sqltemplate.Values{Where: where, QuestionID: chart.QuestionID})
	if err != nil {
		return models.Breakdown{}, err
	}

	counts := make(map[string]int64)
	var total int64
	for _, r := range res.Rows {
		if len(r) < 2 {
			continue
		}
		text := query.AsString(r[0])
		n, _ := query.AsInt64(r[1])
		total += n

		if multi {
			for _, e := range answer.Elements(text) {
				counts[strings.TrimSpace(e)] += n
			}
			continue
		}
		if bare := strings.TrimSpace(answer.Unwrap(text)); bare != "" {
			counts[bare] += n
		}
	}

	items := make([]models.BreakdownItem, 0, len(counts))
	for label, n := range counts {
		items = append(items, models.BreakdownItem{Label: label, Count: n, Share: share(n, total)})
	}
	SortItems(items)

	return models.Breakdown{Total: total, Items: items}, nil
}

// matrix aggregates a rating grid; shares are relative to each row
func (s *Service) matrix(ctx context.Context, chart models.ChartSpec, where string) (models.Breakdown, error) {
	res, err := s.run(ctx, sqltemplate.Matrix, sqltemplate.Values{Where: where, QuestionIDs: chart.Rows})
	if err != nil {
		return models.Breakdown{}, err
	}

	rowTotals := make(map[string]int64)
	var items []models.BreakdownItem
	for _, r := range res.Rows {
		if len(r) < 4 {
			continue
		}
		label := strings.TrimSpace(answer.Unwrap(query.AsString(r[2])))
		if label == "" {
			continue
		}
		n, _ := query.AsInt64(r[3])
		row := query.AsString(r[1])
		rowTotals[row] += n
		items = append(items, models.BreakdownItem{Row: row, Label: label, Count: n})
	}

	var total int64
	for i := range items {
		rt := rowTotals[items[i].Row]
		items[i].Share = share(items[i].Count, rt)
		total = max(total, rt)
	}
	if items == nil {
		items = []models.BreakdownItem{}
	}

	return models.Breakdown{Total: total, Items: items}, nil
}

func share(n, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(n) / float64(total)
}

// SortItems orders items by count, largest first, then by label
func SortItems(items []models.BreakdownItem) {
	slices.SortStableFunc(items, func(a, b models.BreakdownItem) int {
		switch {
		case a.Count > b.Count:
			return -1
		case a.Count < b.Count:
			return 1
		}
		return strings.Compare(a.Label, b.Label)
	})
}

// Labels returns item labels in order
func Labels(items []models.BreakdownItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

// ApplyOrder sorts items to follow a baseline label order. Labels missing
// from the baseline keep their relative order after the known ones.
// Matrix items are ordered within their row.
func ApplyOrder(items []models.BreakdownItem, baseline []string) []models.BreakdownItem {
	if len(baseline) == 0 {
		return items
	}
	pos := make(map[string]int, len(baseline))
	for i, l := range baseline {
		if _, ok := pos[l]; !ok {
			pos[l] = i
		}
	}
	rank := func(label string) int {
		if p, ok := pos[label]; ok {
			return p
		}
		return len(baseline)
	}

	rowPos := make(map[string]int)
	for _, it := range items {
		if _, ok := rowPos[it.Row]; !ok {
			rowPos[it.Row] = len(rowPos)
		}
	}

	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b models.BreakdownItem) int {
		if c := rowPos[a.Row] - rowPos[b.Row]; c != 0 {
			return c
		}
		return rank(a.Label) - rank(b.Label)
	})
	return out
}
