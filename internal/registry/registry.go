// Package registry holds the static filter definitions of the survey: which
// question each filter category reads, the legal options, and the chart
// catalog. Category keys are part of the public URL contract and must not be
// renamed.
package registry

import (
	"slices"

	"github.com/rebeliceyang/surveylens/internal/answer"
	"github.com/rebeliceyang/surveylens/internal/models"
)

// Category keys, in compile and serialization order.
const (
	Continent   = "continent"
	Experience  = "experience"
	Purpose     = "purpose"
	OrgSize     = "orgSize"
	Industry    = "industry"
	Influence   = "influence"
	Programming = "programming"
	Complexity  = "complexity"
	Production  = "production"
	Instances   = "instances"
	UseCases    = "useCases"
	Environment = "environment"
	EmailDomain = "emailDomain"
)

// GeographyQuestionID stores plain numeric country codes, not JSON arrays.
const GeographyQuestionID = "Lc8Xv1"

// Registry is the read-only filter and chart catalog
type Registry struct {
	categories []models.FilterCategory
	byKey      map[string]int
	multi      map[string]bool
	charts     []models.ChartSpec
	continents map[string][]int
}

// New builds a registry from category and chart definitions
func New(categories []models.FilterCategory, charts []models.ChartSpec, continents map[string][]int) *Registry {
	r := &Registry{
		categories: categories,
		byKey:      make(map[string]int, len(categories)),
		multi:      make(map[string]bool),
		charts:     charts,
		continents: continents,
	}
	for i, c := range categories {
		r.byKey[c.Key] = i
		if c.MultiSelect {
			r.multi[c.QuestionID] = true
		}
	}
	for _, ch := range charts {
		if ch.MultiSelect {
			r.multi[ch.QuestionID] = true
		}
	}
	return r
}

var defaultRegistry = New(defaultCategories, defaultCharts, continentCodes)

// Default returns the registry for the bundled survey
func Default() *Registry {
	return defaultRegistry
}

// Keys returns category keys in registry order
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.categories))
	for i, c := range r.categories {
		keys[i] = c.Key
	}
	return keys
}

// Categories returns all categories in registry order
func (r *Registry) Categories() []models.FilterCategory {
	return slices.Clone(r.categories)
}

// Category looks up a category by key
func (r *Registry) Category(key string) (models.FilterCategory, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return models.FilterCategory{}, false
	}
	return r.categories[i], true
}

// Has reports whether key is a known category
func (r *Registry) Has(key string) bool {
	_, ok := r.byKey[key]
	return ok
}

// NewState returns an empty filter state covering every category
func (r *Registry) NewState() models.FilterState {
	return models.NewFilterState(r.Keys())
}

// IsMultiSelect reports whether answers to questionID are JSON arrays
func (r *Registry) IsMultiSelect(questionID string) bool {
	return r.multi[questionID]
}

// ContinentCodes returns the numeric country codes of a continent
func (r *Registry) ContinentCodes(name string) []int {
	return slices.Clone(r.continents[name])
}

// ContinentOf returns the continent a country code belongs to
func (r *Registry) ContinentOf(code int) (string, bool) {
	for name, codes := range r.continents {
		if slices.Contains(codes, code) {
			return name, true
		}
	}
	return "", false
}

// StaticOptions returns the option values of a category
func (r *Registry) StaticOptions(key string) []string {
	c, ok := r.Category(key)
	if !ok {
		return nil
	}
	vals := make([]string, len(c.Options))
	for i, o := range c.Options {
		vals[i] = o.Value
	}
	return vals
}

// Label returns the human label of a raw value, falling back to its bare text
func (r *Registry) Label(key, value string) string {
	bare := answer.Unwrap(value)
	if c, ok := r.Category(key); ok {
		for _, o := range c.Options {
			if o.Value == bare {
				return o.Label
			}
		}
	}
	return bare
}

// Charts returns the chart catalog in display order
func (r *Registry) Charts() []models.ChartSpec {
	return slices.Clone(r.charts)
}

// Chart looks up a chart by id
func (r *Registry) Chart(id string) (models.ChartSpec, bool) {
	for _, c := range r.charts {
		if c.ID == id {
			return c, true
		}
	}
	return models.ChartSpec{}, false
}
