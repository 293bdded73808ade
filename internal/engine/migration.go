package engine

import (
	"fmt"

	"github.com/celerix-dev/celerix-admin/internal/dashboard"
	"github.com/celerix-dev/celerix-admin/pkg/listing"
)

// Backup copies every collection, the dashboard dataset and the settings from
// src into p. The files are the overrides LoadDataset reads, so the backup
// directory works as the data directory of an offline catalog.
// This works for:
// - Remote -> Embedded (The "Backup/Offline")
// - Embedded -> Embedded (a snapshot of the current overrides)
func Backup(src AdminStore, p *Persistence) error {
	names, err := src.Collections()
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	for _, name := range names {
		records, err := src.List(name, listing.Query{})
		if err != nil {
			return fmt.Errorf("failed to dump collection %s: %w", name, err)
		}
		if err := p.SaveCollection(name, records); err != nil {
			return fmt.Errorf("failed to write collection %s: %w", name, err)
		}
	}

	view, err := src.Dashboard(dashboard.Filter{})
	if err != nil {
		return fmt.Errorf("failed to dump dashboard: %w", err)
	}
	if err := p.SaveCollection(DashboardFile, view.Dataset); err != nil {
		return fmt.Errorf("failed to write dashboard: %w", err)
	}

	settings, err := src.Settings()
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	if err := p.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
