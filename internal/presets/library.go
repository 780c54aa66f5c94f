package presets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// DefaultPattern matches every supported preset file below the root.
const DefaultPattern = "**/*.{yaml,yml,toml,json}"

// ErrNotFound is returned by Get for an unknown preset ID.
var ErrNotFound = errors.New("preset not found")

type file struct {
	Presets []Preset `json:"presets" yaml:"presets" toml:"presets"`
}

// Library is a concurrency-safe preset catalog.
type Library struct {
	mu        sync.RWMutex
	presets   map[string]Preset
	order     []string
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
}

// NewLibrary creates a library seeded with the built-in presets.
func NewLibrary(logger *zap.Logger) *Library {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Library{
		presets:   make(map[string]Preset),
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}
	for _, p := range Builtin() {
		l.put(p)
	}
	return l
}

// List returns presets in insertion order: built-ins first, then loaded files.
func (l *Library) List() []Preset {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Preset, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.presets[id])
	}
	return out
}

// Get returns the preset with the given ID.
func (l *Library) Get(id string) (Preset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.presets[slug(id)]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

// Len returns the number of presets.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

// LoadDir loads every file under dir matching pattern. See LoadFS.
func (l *Library) LoadDir(dir, pattern string) (int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return 0, fmt.Errorf("presets dir: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("presets dir %s is not a directory", dir)
	}
	return l.LoadFS(os.DirFS(dir), pattern)
}

// LoadFS loads every file in fsys matching pattern, in lexical order. It
// returns the number of presets added; per-file and per-entry problems are
// joined into the error while loading carries on. A later preset replaces
// an earlier one with the same ID.
func (l *Library) LoadFS(fsys fs.FS, pattern string) (int, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return 0, fmt.Errorf("glob %q: %w", pattern, err)
	}
	sort.Strings(matches)

	var errs []error
	loaded := 0
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		entries, err := Decode(name, data)
		if err != nil {
			l.logger.Warn("Skipping preset file", zap.String("file", name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		for i, p := range entries {
			p, err := l.clean(p)
			if err != nil {
				l.logger.Warn("Skipping preset", zap.String("file", name), zap.Int("index", i), zap.Error(err))
				errs = append(errs, fmt.Errorf("%s[%d]: %w", name, i, err))
				continue
			}
			p.Source = name
			l.put(p)
			loaded++
		}
	}

	l.logger.Info("Presets loaded",
		zap.Int("files", len(matches)),
		zap.Int("presets", loaded),
		zap.Int("errors", len(errs)))
	return loaded, errors.Join(errs...)
}

// Decode parses a preset file, choosing the format from its extension.
func Decode(name string, data []byte) ([]Preset, error) {
	var f file
	var err error
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".toml":
		err = toml.Unmarshal(data, &f)
	case ".json":
		err = sonic.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("unsupported preset format %q", path.Ext(name))
	}
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return f.Presets, nil
}

func (l *Library) clean(p Preset) (Preset, error) {
	p.ID = l.sanitizer.Sanitize(p.ID)
	p.Name = l.sanitizer.Sanitize(p.Name)
	p.Description = strings.TrimSpace(l.sanitizer.Sanitize(p.Description))
	p.Icon = l.sanitizer.Sanitize(p.Icon)
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		if t = strings.TrimSpace(l.sanitizer.Sanitize(t)); t != "" {
			tags = append(tags, t)
		}
	}
	p.Tags = tags
	return normalize(p)
}

func (l *Library) put(p Preset) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.presets[p.ID]; !exists {
		l.order = append(l.order, p.ID)
	} else {
		l.logger.Debug("Preset replaced", zap.String("id", p.ID), zap.String("source", p.Source))
	}
	l.presets[p.ID] = p
}
