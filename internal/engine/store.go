// Package engine holds the admin catalog: the read-only collections, the
// dashboard dataset and the settings document.
package engine

import (
	"errors"

	"github.com/celerix-dev/celerix-admin/internal/dashboard"
	"github.com/celerix-dev/celerix-admin/internal/export"
	"github.com/celerix-dev/celerix-admin/pkg/listing"
	"github.com/celerix-dev/celerix-admin/pkg/schema"
)

var (
	// ErrCollectionNotFound is returned when a requested collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrRecordNotFound is returned when no record in a collection has the requested ID.
	ErrRecordNotFound = listing.ErrRecordNotFound
	// ErrUnknownFilter is returned when a collection does not declare the requested filter.
	ErrUnknownFilter = listing.ErrUnknownFilter
)

// AdminStore is the primary interface for reading the panel's data.
// Both the embedded catalog and the network client implement this contract.
type AdminStore interface {
	// Collections returns the collection names in navigation order.
	Collections() ([]string, error)
	// List returns the records of a collection passing the query, in order.
	List(collection string, q listing.Query) (any, error)
	// Get returns one record by ID.
	Get(collection, id string) (any, error)
	// Options lists the selectable values of a collection filter.
	Options(collection, field string) ([]string, error)
	// Board groups the records passing the query by a filter's values.
	Board(collection, field string, q listing.Query) (any, error)
	// Table renders the records passing the query with the collection's columns.
	Table(collection string, q listing.Query) (export.Table, error)
	// Suggest proposes a correction for a query that matches nothing.
	Suggest(collection, query string) (string, error)

	// Dashboard returns the analytics narrowed by the filter.
	Dashboard(f dashboard.Filter) (dashboard.View, error)

	// Settings returns the current preferences document.
	Settings() (schema.Settings, error)
	// SaveSettings replaces the preferences document.
	SaveSettings(s schema.Settings) error
	// ResetSettings restores the factory preferences and returns them.
	ResetSettings() (schema.Settings, error)
}
