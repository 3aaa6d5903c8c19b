// Package geo loads the world geography file used by the respondent map
// and resolves numeric country codes to names and continents.
package geo

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/rebeliceyang/surveylens/internal/models"
	"github.com/rebeliceyang/surveylens/internal/registry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Country is one feature of the geography file
type Country struct {
	Code int
	Name string
}

// World indexes countries by ISO numeric code
type World struct {
	byCode map[int]Country
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	// id is a number in some exports and a zero-padded string in others
	ID         jsoniter.RawMessage `json:"id"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

// Load reads a GeoJSON FeatureCollection from path
func Load(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geography: %w", err)
	}
	return Parse(data)
}

// Parse decodes a GeoJSON FeatureCollection. Geometry is ignored.
func Parse(data []byte) (*World, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse geography: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("parse geography: unexpected type %q", fc.Type)
	}

	w := &World{byCode: make(map[int]Country, len(fc.Features))}
	for _, f := range fc.Features {
		code, ok := parseCode(f.ID)
		if !ok {
			continue
		}
		w.byCode[code] = Country{Code: code, Name: f.Properties.Name}
	}
	return w, nil
}

func parseCode(raw jsoniter.RawMessage) (int, bool) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" {
		return 0, false
	}
	code, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return code, true
}

// Len returns the number of countries
func (w *World) Len() int {
	return len(w.byCode)
}

// CountryName returns the name of a code, or the code itself when unknown
func (w *World) CountryName(code int) string {
	if w != nil {
		if c, ok := w.byCode[code]; ok && c.Name != "" {
			return c.Name
		}
	}
	return strconv.Itoa(code)
}

// LabelCountries replaces numeric labels of a map breakdown with names
func (w *World) LabelCountries(items []models.BreakdownItem) []models.BreakdownItem {
	out := slices.Clone(items)
	for i, it := range out {
		if code, err := strconv.Atoi(it.Label); err == nil {
			out[i].Label = w.CountryName(code)
		}
	}
	return out
}

// ByContinent folds a map breakdown keyed by numeric codes into continent
// totals. Codes outside every continent are counted under "Other".
func ByContinent(reg *registry.Registry, items []models.BreakdownItem) []models.BreakdownItem {
	totals := make(map[string]int64)
	var sum int64
	for _, it := range items {
		name := "Other"
		if code, err := strconv.Atoi(it.Label); err == nil {
			if c, ok := reg.ContinentOf(code); ok {
				name = c
			}
		}
		totals[name] += it.Count
		sum += it.Count
	}

	out := make([]models.BreakdownItem, 0, len(totals))
	for name, n := range totals {
		share := 0.0
		if sum > 0 {
			share = float64(n) / float64(sum)
		}
		out = append(out, models.BreakdownItem{Label: name, Count: n, Share: share})
	}
	slices.SortFunc(out, func(a, b models.BreakdownItem) int {
		if a.Count != b.Count {
			if a.Count > b.Count {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Label, b.Label)
	})
	return out
}
