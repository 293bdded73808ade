package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/celerix-dev/celerix-admin/pkg/schema"
)

// SettingsFile is the file name of the persisted preferences document.
const SettingsFile = "settings.json"

// overrideExts are tried in order; the first existing file wins.
var overrideExts = []string{".yaml", ".yml", ".json"}

// Persistence handles the disk I/O for the Catalog
type Persistence struct {
	DataDir string
	log     zerolog.Logger
	mu      sync.Mutex // Protects concurrent writes to the filesystem
}

// NewPersistence initializes a persistence handler.
func NewPersistence(dir string, log zerolog.Logger) (*Persistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Persistence{DataDir: dir, log: log.With().Str("component", "persistence").Logger()}, nil
}

// LoadDataset returns base with every part replaced by its override file
// from the data directory, when one exists. Unreadable or malformed files are
// logged and skipped.
func (p *Persistence) LoadDataset(base Dataset) (Dataset, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries, err := os.ReadDir(p.DataDir)
	if err != nil {
		return base, err
	}
	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			present[e.Name()] = true
		}
	}

	d := base
	for _, part := range d.parts() {
		for _, ext := range overrideExts {
			name := part.name + ext
			if !present[name] {
				continue
			}
			content, err := os.ReadFile(filepath.Join(p.DataDir, name))
			if err != nil {
				p.log.Warn().Err(err).Str("file", name).Msg("could not read override")
				break
			}
			unmarshal := yaml.Unmarshal
			if ext == ".json" {
				unmarshal = json.Unmarshal
			}
			if err := part.decode(content, unmarshal); err != nil {
				p.log.Warn().Err(err).Str("file", name).Msg("could not decode override")
				break
			}
			p.log.Debug().Str("file", name).Msg("loaded override")
			break
		}
	}
	return d, nil
}

// LoadSettings reads the persisted preferences. It reports false, with the
// defaults, when nothing usable is on disk, including a document that fails
// the settings validation rules.
func (p *Persistence) LoadSettings() (schema.Settings, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	content, err := os.ReadFile(filepath.Join(p.DataDir, SettingsFile))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			p.log.Warn().Err(err).Msg("could not read settings")
		}
		return schema.DefaultSettings(), false
	}
	s := schema.DefaultSettings()
	if err := json.Unmarshal(content, &s); err != nil {
		p.log.Warn().Err(err).Msg("could not decode settings")
		return schema.DefaultSettings(), false
	}
	// Held to the same rules as PUT /api/settings and SETTINGS_SET.
	if err := binding.Validator.ValidateStruct(&s); err != nil {
		p.log.Warn().Err(err).Msg("ignoring invalid settings")
		return schema.DefaultSettings(), false
	}
	return s, true
}

// SaveSettings writes the preferences document atomically.
func (p *Persistence) SaveSettings(s schema.Settings) error {
	return p.saveJSON(SettingsFile, s)
}

// SaveCollection writes one collection as JSON so LoadDataset picks it up.
// YAML overrides of the same name would shadow it, so they are removed once
// the JSON file is in place.
func (p *Persistence) SaveCollection(name string, records any) error {
	if err := p.saveJSON(name+".json", records); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ext := range overrideExts {
		if ext == ".json" {
			continue
		}
		err := os.Remove(filepath.Join(p.DataDir, name+ext))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove stale override %s%s: %w", name, ext, err)
		}
	}
	return nil
}

func (p *Persistence) saveJSON(name string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	filePath := filepath.Join(p.DataDir, name)
	tempPath := filePath + ".tmp"

	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	if err := os.WriteFile(tempPath, bytes, 0644); err != nil {
		return err
	}

	// Either the old file or the new one survives a crash, never a torn write.
	return os.Rename(tempPath, filePath)
}
