package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sceap-org/sceap/internal/model"
	"github.com/sceap-org/sceap/internal/sizing"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore. It is satisfied
// by pgxmock pools in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store backed by a pgx connection pool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres connects to the given database URL.
func NewPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS projects (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	plant_type        TEXT,
	standard          TEXT,
	voltage_levels    JSONB,
	service_condition TEXT,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cable_results (
	id           TEXT PRIMARY KEY,
	project_id   TEXT NOT NULL,
	cable_number TEXT NOT NULL,
	payload      JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (project_id, cable_number)
);

CREATE TABLE IF NOT EXISTS catalogs (
	name       TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_cable_results_project ON cable_results(project_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateProject(ctx context.Context, p model.Project) (*model.Project, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now().UTC()

	levelsJSON, err := json.Marshal(p.VoltageLevels)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal voltage levels")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO projects (id, name, plant_type, standard, voltage_levels, service_condition, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Name, p.PlantType, p.Standard, levelsJSON, p.ServiceCondition, p.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert project")
	}
	return &p, nil
}

func (s *PostgresStore) GetProject(ctx context.Context, id string) (*model.Project, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, plant_type, standard, voltage_levels, service_condition, created_at
		 FROM projects WHERE id = $1`, id)

	var p model.Project
	var levelsJSON []byte
	err := row.Scan(&p.ID, &p.Name, &p.PlantType, &p.Standard, &levelsJSON, &p.ServiceCondition, &p.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, eris.Errorf("project not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get project")
	}
	if len(levelsJSON) > 0 {
		if err := json.Unmarshal(levelsJSON, &p.VoltageLevels); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal voltage levels")
		}
	}
	return &p, nil
}

func (s *PostgresStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, plant_type, standard, voltage_levels, service_condition, created_at
		 FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list projects")
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		var levelsJSON []byte
		if err := rows.Scan(&p.ID, &p.Name, &p.PlantType, &p.Standard, &levelsJSON, &p.ServiceCondition, &p.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan project")
		}
		if len(levelsJSON) > 0 {
			if err := json.Unmarshal(levelsJSON, &p.VoltageLevels); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal voltage levels")
			}
		}
		projects = append(projects, p)
	}
	return projects, eris.Wrap(rows.Err(), "postgres: list projects iterate")
}

func (s *PostgresStore) SaveResults(ctx context.Context, projectID string, results []model.SizingResult) (int, error) {
	saved := 0
	for _, r := range results {
		if _, err := s.UpsertResult(ctx, projectID, r); err != nil {
			return saved, err
		}
		saved++
	}
	return saved, nil
}

func (s *PostgresStore) ListResults(ctx context.Context, projectID string) ([]model.SizingResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT payload FROM cable_results WHERE project_id = $1 ORDER BY cable_number`, projectID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list results")
	}
	defer rows.Close()

	var results []model.SizingResult
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan result")
		}
		var r model.SizingResult
		if err := json.Unmarshal(payload, &r); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
		results = append(results, r)
	}
	return results, eris.Wrap(rows.Err(), "postgres: list results iterate")
}

func (s *PostgresStore) UpsertResult(ctx context.Context, projectID string, r model.SizingResult) (bool, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return false, eris.Wrap(err, "postgres: marshal result")
	}

	var inserted bool
	err = s.pool.QueryRow(ctx,
		`INSERT INTO cable_results (id, project_id, cable_number, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (project_id, cable_number)
		 DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at
		 RETURNING (xmax = 0)`,
		uuid.New().String(), projectID, r.CableNumber, payload, time.Now().UTC(),
	).Scan(&inserted)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: upsert result %s", r.CableNumber)
	}
	return inserted, nil
}

func (s *PostgresStore) UpdateResultStatus(ctx context.Context, projectID, cableNumber string, status model.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE cable_results
		 SET payload = jsonb_set(payload, '{status}', to_jsonb($1::text))
		 WHERE project_id = $2 AND cable_number = $3`,
		string(status), projectID, cableNumber,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update status %s", cableNumber)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("cable result not found: %s", cableNumber)
	}
	return nil
}

func (s *PostgresStore) SaveCatalog(ctx context.Context, name string, entries []sizing.CatalogEntry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal catalog")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO catalogs (name, payload, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		name, payload, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: save catalog %s", name)
}

func (s *PostgresStore) GetCatalog(ctx context.Context, name string) ([]sizing.CatalogEntry, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM catalogs WHERE name = $1`, name,
	).Scan(&payload)
	if err == pgx.ErrNoRows {
		return nil, eris.Errorf("catalog not found: %s", name)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get catalog")
	}

	var entries []sizing.CatalogEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal catalog")
	}
	return entries, nil
}

func (s *PostgresStore) ListCatalogs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name FROM catalogs ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list catalogs")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "postgres: scan catalog name")
		}
		names = append(names, name)
	}
	return names, eris.Wrap(rows.Err(), "postgres: list catalogs iterate")
}
