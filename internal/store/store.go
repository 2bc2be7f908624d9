// Package store persists projects, cable sizing results, and size catalogs.
// Results are stored as JSON documents keyed by project and cable number;
// the engines themselves never touch the store.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sceap-org/sceap/internal/model"
	"github.com/sceap-org/sceap/internal/sizing"
)

// Store defines the persistence interface shared by the sqlite and
// postgres drivers.
type Store interface {
	// Projects
	CreateProject(ctx context.Context, p model.Project) (*model.Project, error)
	GetProject(ctx context.Context, id string) (*model.Project, error)
	ListProjects(ctx context.Context) ([]model.Project, error)

	// Cable results. UpsertResult reports whether a new row was created.
	// UpdateResultStatus mutates only the client-owned workflow status.
	SaveResults(ctx context.Context, projectID string, results []model.SizingResult) (int, error)
	ListResults(ctx context.Context, projectID string) ([]model.SizingResult, error)
	UpsertResult(ctx context.Context, projectID string, r model.SizingResult) (bool, error)
	UpdateResultStatus(ctx context.Context, projectID, cableNumber string, status model.Status) error

	// Catalogs
	SaveCatalog(ctx context.Context, name string, entries []sizing.CatalogEntry) error
	GetCatalog(ctx context.Context, name string) ([]sizing.CatalogEntry, error)
	ListCatalogs(ctx context.Context) ([]string, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a store for the configured driver and runs migrations.
func Open(ctx context.Context, driver, url string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch driver {
	case "postgres":
		s, err = NewPostgres(ctx, url)
	case "sqlite", "":
		s, err = NewSQLite(url)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
