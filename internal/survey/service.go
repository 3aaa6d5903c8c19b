// Package survey implements the read operations charts call: respondent
// count, dashboard rows, section counts and single-chart breakdowns. Every
// operation is a function of the supplied filter state and returns a
// models.Result envelope instead of an error.
package survey

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rebeliceyang/surveylens/internal/db/connection"
	"github.com/rebeliceyang/surveylens/internal/db/query"
	"github.com/rebeliceyang/surveylens/internal/filter"
	"github.com/rebeliceyang/surveylens/internal/models"
	"github.com/rebeliceyang/surveylens/internal/registry"
	"github.com/rebeliceyang/surveylens/internal/sqltemplate"
)

// ErrUnknownChart is returned for a chart id missing from the catalog
var ErrUnknownChart = errors.New("unknown chart")

// Service runs survey queries against one engine
type Service struct {
	reg      *registry.Registry
	builder  *filter.Builder
	rewriter *sqltemplate.Rewriter
	executor *query.Executor
	logger   *zap.Logger
}

// NewService wires a service to an executor. The table prefix follows the
// engine configuration.
func NewService(reg *registry.Registry, executor *query.Executor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := executor.Engine().Config()
	schema := ""
	if cfg.NeedsSchemaPrefix() {
		schema = cfg.Schema
	}
	return &Service{
		reg:      reg,
		builder:  filter.NewBuilder(reg, schema, logger.Named("filter")),
		rewriter: sqltemplate.NewRewriter(cfg.Schema, cfg.NeedsSchemaPrefix(), logger.Named("sqltemplate")),
		executor: executor,
		logger:   logger,
	}
}

// Registry returns the catalog the service compiles against
func (s *Service) Registry() *registry.Registry {
	return s.reg
}

// Rewriter returns the template rewriter
func (s *Service) Rewriter() *sqltemplate.Rewriter {
	return s.rewriter
}

// Executor returns the query executor
func (s *Service) Executor() *query.Executor {
	return s.executor
}

// Compile builds the WHERE clause for state. An unsafe clause degrades to
// no filter: the result is Neutral and degraded is true.
func (s *Service) Compile(state models.FilterState) (where string, degraded bool) {
	clause, err := s.builder.BuildWhereChecked(state)
	if err != nil {
		s.logger.Warn("running unfiltered after validator rejection", zap.Error(err))
		return filter.Neutral, true
	}
	return clause, false
}

// RespondentCount returns how many respondents match state
func (s *Service) RespondentCount(ctx context.Context, state models.FilterState) models.Result[int64] {
	where, degraded := s.Compile(state)
	res, err := s.run(ctx, sqltemplate.Count, sqltemplate.Values{Where: where})
	if err != nil {
		return fail(s.logger, err, int64(0), "respondent count")
	}
	var n int64
	if len(res.Rows) > 0 && len(res.Rows[0]) > 0 {
		n, _ = query.AsInt64(res.Rows[0][0])
	}
	out := models.OK(n)
	out.Degraded = degraded
	return out
}

// DashboardRows returns the answered count of every question
func (s *Service) DashboardRows(ctx context.Context, state models.FilterState) models.Result[[]models.DashboardRow] {
	where, degraded := s.Compile(state)
	res, err := s.run(ctx, sqltemplate.Dashboard, sqltemplate.Values{Where: where})
	if err != nil {
		return fail(s.logger, err, []models.DashboardRow{}, "dashboard rows")
	}

	rows := make([]models.DashboardRow, 0, len(res.Rows))
	for _, r := range res.Rows {
		if len(r) < 3 {
			continue
		}
		n, _ := query.AsInt64(r[2])
		rows = append(rows, models.DashboardRow{
			QuestionID: query.AsString(r[0]),
			Section:    query.AsString(r[1]),
			Answered:   n,
		})
	}
	out := models.OK(rows)
	out.Degraded = degraded
	return out
}

// SectionCounts returns respondents with at least one answer per section
func (s *Service) SectionCounts(ctx context.Context, state models.FilterState) models.Result[map[string]int64] {
	where, degraded := s.Compile(state)
	res, err := s.run(ctx, sqltemplate.SectionCounts, sqltemplate.Values{Where: where})
	if err != nil {
		return fail(s.logger, err, map[string]int64{}, "section counts")
	}

	counts := make(map[string]int64, len(res.Rows))
	for _, r := range res.Rows {
		if len(r) < 2 {
			continue
		}
		n, _ := query.AsInt64(r[1])
		counts[query.AsString(r[0])] = n
	}
	out := models.OK(counts)
	out.Degraded = degraded
	return out
}

// Breakdown aggregates one chart for state
func (s *Service) Breakdown(ctx context.Context, chartID string, state models.FilterState) models.Result[models.Breakdown] {
	chart, ok := s.reg.Chart(chartID)
	if !ok {
		return models.Fail(models.KindValidation, fmt.Errorf("%w: %s", ErrUnknownChart, chartID), models.Breakdown{ChartID: chartID})
	}
	empty := models.Breakdown{
		ChartID:    chart.ID,
		QuestionID: chart.QuestionID,
		Kind:       chart.Kind.String(),
		Items:      []models.BreakdownItem{},
	}

	where, degraded := s.Compile(state)

	var (
		b   models.Breakdown
		err error
	)
	switch chart.Kind {
	case models.ChartMatrix:
		b, err = s.matrix(ctx, chart, where)
	case models.ChartThemes:
		b, err = s.grouped(ctx, chart, sqltemplate.Themes, where, false)
	default:
		b, err = s.grouped(ctx, chart, sqltemplate.Breakdown, where, chart.MultiSelect || s.reg.IsMultiSelect(chart.QuestionID))
	}
	if err != nil {
		return fail(s.logger, err, empty, "breakdown "+chart.ID)
	}

	b.ChartID, b.QuestionID, b.Kind = empty.ChartID, empty.QuestionID, empty.Kind
	out := models.OK(b)
	out.Degraded = degraded
	return out
}

// ChartSQL returns the statement Breakdown would run for one chart
func (s *Service) ChartSQL(chartID string, state models.FilterState) (string, error) {
	chart, ok := s.reg.Chart(chartID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownChart, chartID)
	}
	where, _ := s.Compile(state)
	switch chart.Kind {
	case models.ChartMatrix:
		return s.rewriter.PrepareNamed(sqltemplate.Matrix, sqltemplate.Values{Where: where, QuestionIDs: chart.Rows})
	case models.ChartThemes:
		return s.rewriter.PrepareNamed(sqltemplate.Themes, sqltemplate.Values{Where: where, QuestionID: chart.QuestionID})
	default:
		return s.rewriter.PrepareNamed(sqltemplate.Breakdown, sqltemplate.Values{Where: where, QuestionID: chart.QuestionID})
	}
}

func (s *Service) run(ctx context.Context, name sqltemplate.Name, v sqltemplate.Values) (models.QueryResult, error) {
	sql, err := s.rewriter.PrepareNamed(name, v)
	if err != nil {
		return models.QueryResult{}, err
	}
	return s.executor.Execute(ctx, sql)
}

// fail logs err and wraps it with its kind and the empty payload
func fail[T any](logger *zap.Logger, err error, empty T, op string) models.Result[T] {
	kind := Classify(err)
	logger.Warn("fetch failed",
		zap.String("op", op),
		zap.Stringer("kind", kind),
		zap.Error(err))
	return models.Fail(kind, fmt.Errorf("%s: %w", op, err), empty)
}

// Classify maps an error to the kind a Result carries
func Classify(err error) models.ErrorKind {
	switch {
	case err == nil:
		return models.KindNone
	case errors.Is(err, connection.ErrInitFailed), errors.Is(err, connection.ErrNotReady):
		return models.KindInit
	case errors.Is(err, filter.ErrInvalidQuestionID),
		errors.Is(err, filter.ErrUnsafeClause),
		errors.Is(err, sqltemplate.ErrUnresolvedPlaceholder),
		errors.Is(err, ErrUnknownChart):
		return models.KindValidation
	default:
		return models.KindEngine
	}
}
