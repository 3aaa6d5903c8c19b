package sqltemplate

import (
	"embed"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rebeliceyang/surveylens/internal/filter"
)

//go:embed templates/*.sql
var templateFS embed.FS

// Name identifies an embedded query template
type Name string

const (
	Count         Name = "count"
	Dashboard     Name = "dashboard"
	Breakdown     Name = "breakdown"
	Matrix        Name = "matrix"
	Themes        Name = "themes"
	SectionCounts Name = "section_counts"
	Options       Name = "options"
)

// Names lists every embedded template
var Names = []Name{Count, Dashboard, Breakdown, Matrix, Themes, SectionCounts, Options}

// Source returns the raw text of an embedded template
func Source(name Name) (string, error) {
	data, err := templateFS.ReadFile("templates/" + string(name) + ".sql")
	if err != nil {
		return "", fmt.Errorf("template %s: %w", name, err)
	}
	return string(data), nil
}

// Rewriter prepares templates for execution against one engine. Parsed
// templates are cached by source text.
type Rewriter struct {
	prefix string
	logger *zap.Logger

	mu     sync.RWMutex
	parsed map[string]*Template
}

// NewRewriter returns a rewriter that qualifies tables with schema when
// needsPrefix is set. Engines that expose the dataset unqualified pass false.
func NewRewriter(schema string, needsPrefix bool, logger *zap.Logger) *Rewriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix := ""
	if needsPrefix {
		prefix = filter.SchemaPrefix(schema)
	}
	return &Rewriter{
		prefix: prefix,
		logger: logger,
		parsed: make(map[string]*Template),
	}
}

// Prefix returns the table prefix, "" when none is applied
func (r *Rewriter) Prefix() string {
	return r.prefix
}

// Prepare turns template text into an executable query
func (r *Rewriter) Prepare(src string, v Values) (string, error) {
	sql, err := r.template(src).Render(r.prefix, v)
	if err != nil {
		r.logger.Warn("template render failed", zap.Error(err))
		return "", err
	}
	return sql, nil
}

// PrepareNamed is Prepare for an embedded template
func (r *Rewriter) PrepareNamed(name Name, v Values) (string, error) {
	src, err := Source(name)
	if err != nil {
		return "", err
	}
	sql, err := r.Prepare(src, v)
	if err != nil {
		return "", fmt.Errorf("prepare %s: %w", name, err)
	}
	return sql, nil
}

func (r *Rewriter) template(src string) *Template {
	r.mu.RLock()
	t, ok := r.parsed[src]
	r.mu.RUnlock()
	if ok {
		return t
	}

	t = Parse(src)
	r.mu.Lock()
	r.parsed[src] = t
	r.mu.Unlock()
	return t
}
