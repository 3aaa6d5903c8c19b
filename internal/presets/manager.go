// Package presets manages named segments: partial filter states that can be
// applied in one step. Built-in presets ship with the binary; user presets
// live in presets.yaml in the config directory.
package presets

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rebeliceyang/surveylens/internal/models"
	"github.com/rebeliceyang/surveylens/internal/registry"
)

//go:embed presets.yaml
var builtinYAML []byte

// FileName is the user preset file inside the config directory
const FileName = "presets.yaml"

// Preset is a named partial filter state
type Preset struct {
	ID          string              `yaml:"id"`
	Name        string              `yaml:"name"`
	Description string              `yaml:"description,omitempty"`
	Filters     map[string][]string `yaml:"filters"`
	CreatedAt   time.Time           `yaml:"created_at,omitempty"`
	Builtin     bool                `yaml:"-"`
}

// Manager manages built-in and user presets
type Manager struct {
	path   string
	reg    *registry.Registry
	logger *zap.Logger

	mu      sync.RWMutex
	builtin []Preset
	user    []Preset
}

// NewManager loads built-in presets and, if present, the user file in
// configDir. An empty configDir disables user presets.
func NewManager(configDir string, reg *registry.Registry, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		reg:    reg,
		logger: logger,
		user:   []Preset{},
	}
	if configDir != "" {
		m.path = filepath.Join(configDir, FileName)
	}

	if err := yaml.Unmarshal(builtinYAML, &m.builtin); err != nil {
		return nil, fmt.Errorf("failed to parse built-in presets: %w", err)
	}
	for i := range m.builtin {
		m.builtin[i].Builtin = true
	}

	if m.path != "" {
		if _, err := os.Stat(m.path); err == nil {
			if err := m.Load(); err != nil {
				return nil, fmt.Errorf("failed to load presets: %w", err)
			}
		}
	}

	return m, nil
}

// Path returns the user preset file
func (m *Manager) Path() string {
	return m.path
}

// Load reloads user presets from YAML file
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("failed to read presets file: %w", err)
	}

	var user []Preset
	if err := yaml.Unmarshal(data, &user); err != nil {
		return fmt.Errorf("failed to parse presets: %w", err)
	}
	if user == nil {
		user = []Preset{}
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
	return nil
}

// save writes user presets; callers hold the lock
func (m *Manager) save() error {
	if m.path == "" {
		return fmt.Errorf("no config directory for user presets")
	}
	data, err := yaml.Marshal(m.user)
	if err != nil {
		return fmt.Errorf("failed to marshal presets: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write presets file: %w", err)
	}
	return nil
}

// Add saves the active categories of state as a user preset
func (m *Manager) Add(name, description string, state models.FilterState) (*Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("preset name cannot be empty")
	}

	filters := make(map[string][]string)
	for _, key := range m.reg.Keys() {
		if vals := state[key]; len(vals) > 0 {
			filters[key] = slices.Clone(vals)
		}
	}
	if len(filters) == 0 {
		return nil, fmt.Errorf("preset %q has no active filters", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Check for duplicate names (case-insensitive)
	for _, p := range slices.Concat(m.builtin, m.user) {
		if strings.EqualFold(p.Name, name) {
			return nil, fmt.Errorf("a preset named '%s' already exists (names are case-insensitive)", name)
		}
	}

	preset := Preset{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Filters:     filters,
		CreatedAt:   time.Now(),
	}
	m.user = append(m.user, preset)

	if err := m.save(); err != nil {
		m.user = m.user[:len(m.user)-1]
		return nil, fmt.Errorf("failed to save preset: %w", err)
	}
	return &preset, nil
}

// Delete removes a user preset by ID. Built-ins cannot be deleted.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, p := range m.user {
		if p.ID == id {
			m.user = slices.Delete(m.user, i, i+1)
			if err := m.save(); err != nil {
				return fmt.Errorf("failed to save presets after deletion: %w", err)
			}
			return nil
		}
	}
	for _, p := range m.builtin {
		if p.ID == id {
			return fmt.Errorf("preset '%s' is built in", id)
		}
	}
	return fmt.Errorf("preset with ID '%s' was not found", id)
}

// Get returns a preset by ID
func (m *Manager) Get(id string) (*Preset, error) {
	for _, p := range m.All() {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("preset with ID '%s' was not found", id)
}

// All returns built-in presets followed by user presets
func (m *Manager) All() []Preset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Concat(m.builtin, m.user)
}

// Search matches presets by name or description
func (m *Manager) Search(q string) []Preset {
	all := m.All()
	if q == "" {
		return all
	}

	q = strings.ToLower(q)
	var results []Preset
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			results = append(results, p)
		}
	}
	return results
}

// Overlay applies a preset onto an empty state: only the preset's
// categories are set and unknown categories are dropped.
func (m *Manager) Overlay(p Preset) models.FilterState {
	state := m.reg.NewState()
	for key, vals := range p.Filters {
		if !state.Set(key, vals) {
			m.logger.Debug("preset names unknown category",
				zap.String("preset", p.ID),
				zap.String("category", key))
		}
	}
	return state
}
