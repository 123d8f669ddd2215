// Package plugin is the plugin store: a built-in catalog and the set of
// installed plugin ids, persisted under the installed_plugins config key.
package plugin

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"webide-cli/internal/bridge"
	"webide-cli/internal/logging"
	"webide-cli/internal/store"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Categories in display order. CategoryAll matches every plugin.
const (
	CategoryAll      = "all"
	CategoryTheme    = "theme"
	CategoryLanguage = "language"
	CategoryTools    = "tools"
	CategorySnippets = "snippets"
)

var Categories = []string{CategoryAll, CategoryTheme, CategoryLanguage, CategoryTools, CategorySnippets}

var categoryNames = map[string]string{
	CategoryAll:      "All",
	CategoryTheme:    "Themes",
	CategoryLanguage: "Languages",
	CategoryTools:    "Tools",
	CategorySnippets: "Snippets",
}

// CategoryName is the label for a category id.
func CategoryName(category string) string {
	if n, ok := categoryNames[category]; ok {
		return n
	}
	return category
}

type Plugin struct {
	ID              string   `yaml:"id" json:"id"`
	Name            string   `yaml:"name" json:"name"`
	Author          string   `yaml:"author" json:"author"`
	Description     string   `yaml:"description" json:"description"`
	Category        string   `yaml:"category" json:"category"`
	Icon            string   `yaml:"icon" json:"icon"`
	Version         string   `yaml:"version" json:"version"`
	Downloads       int      `yaml:"downloads" json:"downloads"`
	Rating          float64  `yaml:"rating" json:"rating"`
	Features        []string `yaml:"features" json:"features"`
	LongDescription string   `yaml:"long_description" json:"longDescription,omitempty"`
}

// Details is the long description, or the short one when absent.
func (p Plugin) Details() string {
	if p.LongDescription != "" {
		return p.LongDescription
	}
	return p.Description
}

type catalogFile struct {
	Plugins []Plugin `yaml:"plugins"`
}

// Catalog parses the built-in catalog.
func Catalog() ([]Plugin, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog decodes a YAML catalog. Ids must be present and unique.
func ParseCatalog(b []byte) ([]Plugin, error) {
	var f catalogFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse plugin catalog: %w", err)
	}
	seen := map[string]bool{}
	for _, p := range f.Plugins {
		if strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("parse plugin catalog: plugin %q has no id", p.Name)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("parse plugin catalog: duplicate id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return f.Plugins, nil
}

// Filter keeps plugins in category whose name, description or author
// contains keyword, case-insensitively. Catalog order is preserved.
func Filter(plugins []Plugin, category, keyword string) []Plugin {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	out := make([]Plugin, 0, len(plugins))
	for _, p := range plugins {
		if category != "" && category != CategoryAll && p.Category != category {
			continue
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(p.Name), keyword) &&
			!strings.Contains(strings.ToLower(p.Description), keyword) &&
			!strings.Contains(strings.ToLower(p.Author), keyword) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FormatDownloads renders 15420 as "15.4K"; counts below 1000 print as is.
func FormatDownloads(n int) string {
	if n >= 1000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%d", n)
}

// Store is the catalog plus the installed set.
type Store struct {
	fs      *bridge.Adapter
	plugins []Plugin
	log     *zap.Logger

	mu        sync.Mutex
	installed map[string]bool
}

// Open loads the catalog and the persisted installed set. A malformed
// persisted value is treated as an empty set.
func Open(fs *bridge.Adapter) (*Store, error) {
	plugins, err := Catalog()
	if err != nil {
		return nil, err
	}
	s := &Store{fs: fs, plugins: plugins, log: logging.Named("plugin"), installed: map[string]bool{}}
	if raw := fs.GetConfig(store.KeyInstalledPlugins); raw != "" {
		var ids []string
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			s.log.Warn("ignoring malformed installed plugin set", zap.Error(err))
		}
		for _, id := range ids {
			s.installed[id] = true
		}
	}
	return s, nil
}

func (s *Store) Plugins() []Plugin { return append([]Plugin(nil), s.plugins...) }

func (s *Store) Get(id string) (Plugin, bool) {
	for _, p := range s.plugins {
		if p.ID == id {
			return p, true
		}
	}
	return Plugin{}, false
}

func (s *Store) Filter(category, keyword string) []Plugin {
	return Filter(s.plugins, category, keyword)
}

func (s *Store) Installed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.installed[id]
}

// InstalledIDs returns the installed set, sorted.
func (s *Store) InstalledIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idsLocked()
}

func (s *Store) idsLocked() []string {
	ids := make([]string, 0, len(s.installed))
	for id := range s.installed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Toggle installs or uninstalls id, persists the set and reports the new
// state with a toast.
func (s *Store) Toggle(id string) (installed bool, err error) {
	if _, ok := s.Get(id); !ok {
		return false, fmt.Errorf("unknown plugin %q", id)
	}
	s.mu.Lock()
	installed = !s.installed[id]
	if installed {
		s.installed[id] = true
	} else {
		delete(s.installed, id)
	}
	ids := s.idsLocked()
	s.mu.Unlock()

	s.persist(ids)
	if installed {
		s.fs.ShowToast("Plugin installed")
	} else {
		s.fs.ShowToast("Plugin uninstalled")
	}
	return installed, nil
}

// SetInstalled forces the state of id; it is a no-op when already there.
func (s *Store) SetInstalled(id string, want bool) error {
	if s.Installed(id) == want {
		if _, ok := s.Get(id); !ok {
			return fmt.Errorf("unknown plugin %q", id)
		}
		return nil
	}
	_, err := s.Toggle(id)
	return err
}

func (s *Store) persist(ids []string) {
	b, err := json.Marshal(ids)
	if err != nil {
		s.log.Warn("encode installed plugins", zap.Error(err))
		return
	}
	s.fs.SetConfig(store.KeyInstalledPlugins, string(b))
}
