// Package urlstate maps filter and comparison state to the URL fragment
// used for bookmarking and sharing, and back.
//
// Normal mode:     #<section>?<category>=<slug>[,<slug>...]&...
// Comparison mode: #<section>?compare=true&a_<category>=...&b_<category>=...
package urlstate

import (
	"net/url"
	"slices"
	"strings"

	lev "github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"github.com/rebeliceyang/surveylens/internal/answer"
	"github.com/rebeliceyang/surveylens/internal/models"
	"github.com/rebeliceyang/surveylens/internal/registry"
)

// CompareParam switches a fragment into comparison mode
const CompareParam = "compare"

// Parsed is the decoded form of a fragment
type Parsed struct {
	SectionID string
	// Filters is the single-mode state. In comparison mode it is empty.
	Filters models.FilterState
	// Comparison is nil unless the fragment carried compare=true
	Comparison *models.ComparisonState
}

// HasFilters reports whether the fragment restored any value
func (p Parsed) HasFilters() bool {
	if p.Comparison != nil {
		return true
	}
	return !p.Filters.IsEmpty()
}

// Codec serializes and parses fragments against a registry
type Codec struct {
	reg    *registry.Registry
	logger *zap.Logger
	dev    bool
}

// NewCodec creates a codec. In development mode orphaned slugs are logged
// with the closest known option.
func NewCodec(reg *registry.Registry, logger *zap.Logger, dev bool) *Codec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Codec{reg: reg, logger: logger, dev: dev}
}

// Serialize renders state as a fragment including the leading '#'. cmp
// switches to comparison mode when non-nil. It returns "" when there is no
// section and nothing to encode.
func (c *Codec) Serialize(state models.FilterState, sectionID string, cmp *models.ComparisonState) string {
	var params []string
	if cmp != nil {
		params = append(params, CompareParam+"=true")
		params = append(params, c.encodeState(cmp.A, models.ColumnA.Prefix())...)
		params = append(params, c.encodeState(cmp.B, models.ColumnB.Prefix())...)
	} else {
		params = c.encodeState(state, "")
	}

	if sectionID == "" && len(params) == 0 {
		return ""
	}
	if len(params) == 0 {
		return "#" + sectionID
	}
	return "#" + sectionID + "?" + strings.Join(params, "&")
}

func (c *Codec) encodeState(state models.FilterState, prefix string) []string {
	var params []string
	for _, key := range c.reg.Keys() {
		var slugs []string
		for _, v := range state[key] {
			s := Slugify(answer.Unwrap(v))
			if s != "" && !slices.Contains(slugs, s) {
				slugs = append(slugs, s)
			}
		}
		if len(slugs) > 0 {
			params = append(params, prefix+key+"="+strings.Join(slugs, ","))
		}
	}
	return params
}

// NextFragment returns the fragment for the next state and whether it
// differs from prev. It is the outbound reducer behind the debounced
// address writer.
func (c *Codec) NextFragment(prev string, state models.FilterState, sectionID string, cmp *models.ComparisonState) (string, bool) {
	next := c.Serialize(state, sectionID, cmp)
	return next, next != prev
}

// Parse decodes a fragment. live holds the option lists read from the
// dataset; a category without live options falls back to the registry.
// Unknown categories and unmatched slugs are dropped.
func (c *Codec) Parse(fragment string, live map[string][]string) Parsed {
	fragment = strings.TrimPrefix(strings.TrimSpace(fragment), "#")
	section, rawQuery, _ := strings.Cut(fragment, "?")

	out := Parsed{
		SectionID: section,
		Filters:   c.reg.NewState(),
	}

	params := splitParams(rawQuery)
	compare := false
	for _, p := range params {
		if p.key == CompareParam && p.value == "true" {
			compare = true
			break
		}
	}

	if compare {
		cmp := &models.ComparisonState{
			A:        c.reg.NewState(),
			B:        c.reg.NewState(),
			Active:   models.ColumnA,
			BMounted: true,
		}
		for _, p := range params {
			var col models.Column
			var key string
			switch {
			case strings.HasPrefix(p.key, models.ColumnA.Prefix()):
				col, key = models.ColumnA, strings.TrimPrefix(p.key, models.ColumnA.Prefix())
			case strings.HasPrefix(p.key, models.ColumnB.Prefix()):
				col, key = models.ColumnB, strings.TrimPrefix(p.key, models.ColumnB.Prefix())
			default:
				continue
			}
			if !c.reg.Has(key) {
				c.logger.Debug("ignoring unknown category", zap.String("param", p.key))
				continue
			}
			cmp.Column(col).Set(key, c.decodeSlugs(key, p.value, live))
		}
		out.Comparison = cmp
		return out
	}

	for _, p := range params {
		if p.key == CompareParam {
			continue
		}
		if !c.reg.Has(p.key) {
			c.logger.Debug("ignoring unknown category", zap.String("param", p.key))
			continue
		}
		out.Filters.Set(p.key, c.decodeSlugs(p.key, p.value, live))
	}
	return out
}

// MatchSlug maps a slug back to the option of key it was generated from
func (c *Codec) MatchSlug(key, slug string, live map[string][]string) (string, bool) {
	for _, opt := range c.options(key, live) {
		if Slugify(answer.Unwrap(opt)) == slug {
			return opt, true
		}
	}
	return "", false
}

// Canonical returns the option of key that value names in any storage
// form, or value unchanged when no option matches
func (c *Codec) Canonical(key, value string, live map[string][]string) string {
	for _, opt := range c.options(key, live) {
		if models.SameValue(opt, value) {
			return opt
		}
	}
	return value
}

func (c *Codec) options(key string, live map[string][]string) []string {
	if opts := live[key]; len(opts) > 0 {
		return opts
	}
	return c.reg.StaticOptions(key)
}

func (c *Codec) decodeSlugs(key, list string, live map[string][]string) []string {
	var values []string
	for _, slug := range strings.Split(list, ",") {
		slug = strings.TrimSpace(slug)
		if slug == "" {
			continue
		}
		v, ok := c.MatchSlug(key, slug, live)
		if !ok {
			c.logOrphan(key, slug, live)
			continue
		}
		if !slices.Contains(values, v) {
			values = append(values, v)
		}
	}
	return values
}

func (c *Codec) logOrphan(key, slug string, live map[string][]string) {
	if !c.dev {
		c.logger.Debug("dropping unmatched slug", zap.String("category", key), zap.String("slug", slug))
		return
	}

	best, bestDist := "", -1
	for _, opt := range c.options(key, live) {
		s := Slugify(answer.Unwrap(opt))
		if d := lev.ComputeDistance(slug, s); bestDist < 0 || d < bestDist {
			best, bestDist = s, d
		}
	}
	c.logger.Debug("dropping unmatched slug",
		zap.String("category", key),
		zap.String("slug", slug),
		zap.String("closest", best),
		zap.Int("distance", bestDist))
}

type param struct {
	key   string
	value string
}

// splitParams keeps parameter order and tolerates percent-encoding
func splitParams(rawQuery string) []param {
	var params []param
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		if uk, err := url.QueryUnescape(k); err == nil {
			k = uk
		}
		if uv, err := url.QueryUnescape(v); err == nil {
			v = uv
		}
		params = append(params, param{key: k, value: v})
	}
	return params
}
