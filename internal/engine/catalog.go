package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/celerix-dev/celerix-admin/internal/dashboard"
	"github.com/celerix-dev/celerix-admin/internal/export"
	"github.com/celerix-dev/celerix-admin/pkg/listing"
	"github.com/celerix-dev/celerix-admin/pkg/schema"
)

// Catalog is the thread-safe embedded AdminStore. Collections and the
// dashboard are fixed at construction; only the settings change.
type Catalog struct {
	mu        sync.RWMutex
	sources   map[string]listing.Source
	order     []string
	dash      dashboard.Dataset
	settings  schema.Settings
	persister *Persistence
	log       zerolog.Logger
	wg        sync.WaitGroup
	saveMu    sync.Mutex
	now       func() time.Time
}

var _ AdminStore = (*Catalog)(nil)

// NewCatalog serves d with the given settings. A nil persister keeps settings
// in memory only.
func NewCatalog(d Dataset, settings schema.Settings, p *Persistence, log zerolog.Logger) *Catalog {
	c := &Catalog{
		sources:   make(map[string]listing.Source),
		dash:      d.Dashboard,
		settings:  settings,
		persister: p,
		log:       log.With().Str("component", "catalog").Logger(),
		now:       time.Now,
	}
	for _, s := range d.sources() {
		c.sources[s.Name()] = s
		c.order = append(c.order, s.Name())
	}
	return c
}

// Open builds a catalog from the embedded seed, the data directory overrides
// and the persisted settings.
func Open(p *Persistence, log zerolog.Logger) (*Catalog, error) {
	seed, err := Seed()
	if err != nil {
		return nil, err
	}
	d, err := p.LoadDataset(seed)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	settings, _ := p.LoadSettings()
	return NewCatalog(d, settings, p, log), nil
}

// Wait waits for all background persistence tasks to complete.
func (c *Catalog) Wait() {
	c.wg.Wait()
}

// Source returns the type-erased collection behind name.
func (c *Catalog) Source(name string) (listing.Source, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return s, nil
}

func (c *Catalog) Collections() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...), nil
}

func (c *Catalog) List(collection string, q listing.Query) (any, error) {
	s, err := c.Source(collection)
	if err != nil {
		return nil, err
	}
	return s.List(q), nil
}

func (c *Catalog) Get(collection, id string) (any, error) {
	s, err := c.Source(collection)
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (c *Catalog) Options(collection, field string) ([]string, error) {
	s, err := c.Source(collection)
	if err != nil {
		return nil, err
	}
	return s.Options(field)
}

func (c *Catalog) Board(collection, field string, q listing.Query) (any, error) {
	s, err := c.Source(collection)
	if err != nil {
		return nil, err
	}
	return s.Board(field, q)
}

func (c *Catalog) Table(collection string, q listing.Query) (export.Table, error) {
	s, err := c.Source(collection)
	if err != nil {
		return export.Table{}, err
	}
	headers, rows := s.Table(q)
	return export.Table{Title: schema.Titles[collection], Headers: headers, Rows: rows}, nil
}

func (c *Catalog) Suggest(collection, query string) (string, error) {
	s, err := c.Source(collection)
	if err != nil {
		return "", err
	}
	return s.Suggest(query), nil
}

// NewView opens a fresh list page over a collection.
func (c *Catalog) NewView(collection string) (listing.Controller, error) {
	s, err := c.Source(collection)
	if err != nil {
		return nil, err
	}
	return s.NewView(), nil
}

func (c *Catalog) Dashboard(f dashboard.Filter) (dashboard.View, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return dashboard.Apply(c.dash, f, c.now())
}

// DashboardOptions lists the values of the dashboard breakdown filters.
func (c *Catalog) DashboardOptions() map[string][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return dashboard.Options(c.dash)
}

func (c *Catalog) Settings() (schema.Settings, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings, nil
}

func (c *Catalog) SaveSettings(s schema.Settings) error {
	c.mu.Lock()
	c.settings = s
	c.mu.Unlock()

	c.persist()
	return nil
}

func (c *Catalog) ResetSettings() (schema.Settings, error) {
	s := schema.DefaultSettings()
	c.mu.Lock()
	c.settings = s
	c.mu.Unlock()

	c.persist()
	return s, nil
}

// persist writes the settings in the background; Wait flushes it. Each write
// takes the value current at write time, so the last write on disk is the
// last value set.
func (c *Catalog) persist() {
	if c.persister == nil {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.saveMu.Lock()
		defer c.saveMu.Unlock()

		s, _ := c.Settings()
		if err := c.persister.SaveSettings(s); err != nil {
			c.log.Error().Err(err).Msg("failed to persist settings")
		}
	}()
}

// Close flushes pending settings writes.
func (c *Catalog) Close() error {
	c.Wait()
	return nil
}
