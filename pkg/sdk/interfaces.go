package sdk

import (
	"io"

	"github.com/celerix-dev/celerix-admin/internal/dashboard"
	"github.com/celerix-dev/celerix-admin/internal/engine"
	"github.com/celerix-dev/celerix-admin/internal/export"
	"github.com/celerix-dev/celerix-admin/pkg/listing"
	"github.com/celerix-dev/celerix-admin/pkg/schema"
)

var (
	// ErrCollectionNotFound is returned when a requested collection does not exist.
	ErrCollectionNotFound = engine.ErrCollectionNotFound
	// ErrRecordNotFound is returned when no record in a collection has the requested ID.
	ErrRecordNotFound = engine.ErrRecordNotFound
	// ErrUnknownFilter is returned when a collection does not declare the requested filter.
	ErrUnknownFilter = engine.ErrUnknownFilter
	// ErrInvalidRange is returned for a malformed or reversed dashboard date range.
	ErrInvalidRange = dashboard.ErrInvalidRange
)

// --- Functional Interfaces (Interface Segregation) ---

// CollectionReader defines the basic read operations on collections.
type CollectionReader interface {
	Collections() ([]string, error)
	List(collection string, q listing.Query) (any, error)
	Get(collection, id string) (any, error)
}

// CollectionBrowser derives filter options, boards, tables and suggestions
// from a collection.
type CollectionBrowser interface {
	Options(collection, field string) ([]string, error)
	Board(collection, field string, q listing.Query) (any, error)
	Table(collection string, q listing.Query) (export.Table, error)
	Suggest(collection, query string) (string, error)
}

// DashboardReader serves the analytics page.
type DashboardReader interface {
	Dashboard(f dashboard.Filter) (dashboard.View, error)
}

// SettingsStore reads and writes the preferences document.
type SettingsStore interface {
	Settings() (schema.Settings, error)
	SaveSettings(s schema.Settings) error
	ResetSettings() (schema.Settings, error)
}

// --- Composite Interfaces ---

// AdminStore is the primary interface for interacting with the panel's data.
// Close releases the connection, or flushes pending writes when embedded.
type AdminStore interface {
	CollectionReader
	CollectionBrowser
	DashboardReader
	SettingsStore
	io.Closer
}

var (
	_ engine.AdminStore = AdminStore(nil)
	_ AdminStore        = (*engine.Catalog)(nil)
	_ AdminStore        = (*Client)(nil)
)
