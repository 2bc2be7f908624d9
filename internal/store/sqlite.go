package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sceap-org/sceap/internal/model"
	"github.com/sceap-org/sceap/internal/sizing"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS projects (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	plant_type        TEXT,
	standard          TEXT,
	voltage_levels    TEXT,
	service_condition TEXT,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS cable_results (
	id           TEXT PRIMARY KEY,
	project_id   TEXT NOT NULL,
	cable_number TEXT NOT NULL,
	payload      TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (project_id, cable_number)
);

CREATE TABLE IF NOT EXISTS catalogs (
	name       TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_cable_results_project ON cable_results(project_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateProject(ctx context.Context, p model.Project) (*model.Project, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now().UTC()

	levelsJSON, err := json.Marshal(p.VoltageLevels)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal voltage levels")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, plant_type, standard, voltage_levels, service_condition, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.PlantType, p.Standard, string(levelsJSON), p.ServiceCondition, p.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert project")
	}
	return &p, nil
}

func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*model.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, plant_type, standard, voltage_levels, service_condition, created_at
		 FROM projects WHERE id = ?`, id)

	var p model.Project
	var levelsJSON string
	err := row.Scan(&p.ID, &p.Name, &p.PlantType, &p.Standard, &levelsJSON, &p.ServiceCondition, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("project not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get project")
	}
	if err := json.Unmarshal([]byte(levelsJSON), &p.VoltageLevels); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal voltage levels")
	}
	return &p, nil
}

func (s *SQLiteStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, plant_type, standard, voltage_levels, service_condition, created_at
		 FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list projects")
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		var levelsJSON string
		if err := rows.Scan(&p.ID, &p.Name, &p.PlantType, &p.Standard, &levelsJSON, &p.ServiceCondition, &p.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan project")
		}
		if err := json.Unmarshal([]byte(levelsJSON), &p.VoltageLevels); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal voltage levels")
		}
		projects = append(projects, p)
	}
	return projects, eris.Wrap(rows.Err(), "sqlite: list projects iterate")
}

func (s *SQLiteStore) SaveResults(ctx context.Context, projectID string, results []model.SizingResult) (int, error) {
	saved := 0
	for _, r := range results {
		if _, err := s.UpsertResult(ctx, projectID, r); err != nil {
			return saved, err
		}
		saved++
	}
	return saved, nil
}

func (s *SQLiteStore) ListResults(ctx context.Context, projectID string) ([]model.SizingResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM cable_results WHERE project_id = ? ORDER BY cable_number`, projectID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list results")
	}
	defer rows.Close()

	var results []model.SizingResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan result")
		}
		var r model.SizingResult
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal result")
		}
		results = append(results, r)
	}
	return results, eris.Wrap(rows.Err(), "sqlite: list results iterate")
}

func (s *SQLiteStore) UpsertResult(ctx context.Context, projectID string, r model.SizingResult) (bool, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: marshal result")
	}

	var existing string
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM cable_results WHERE project_id = ? AND cable_number = ?`,
		projectID, r.CableNumber,
	).Scan(&existing)

	switch {
	case err == sql.ErrNoRows:
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO cable_results (id, project_id, cable_number, payload, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			uuid.New().String(), projectID, r.CableNumber, string(payload), time.Now().UTC(),
		)
		if err != nil {
			return false, eris.Wrapf(err, "sqlite: insert result %s", r.CableNumber)
		}
		return true, nil
	case err != nil:
		return false, eris.Wrap(err, "sqlite: lookup result")
	default:
		_, err = s.db.ExecContext(ctx,
			`UPDATE cable_results SET payload = ?, created_at = ? WHERE id = ?`,
			string(payload), time.Now().UTC(), existing,
		)
		if err != nil {
			return false, eris.Wrapf(err, "sqlite: update result %s", r.CableNumber)
		}
		return false, nil
	}
}

func (s *SQLiteStore) UpdateResultStatus(ctx context.Context, projectID, cableNumber string, status model.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cable_results
		 SET payload = json_set(payload, '$.status', ?)
		 WHERE project_id = ? AND cable_number = ?`,
		string(status), projectID, cableNumber,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update status %s", cableNumber)
	}
	return checkRowsAffected(res, "cable result", cableNumber)
}

func (s *SQLiteStore) SaveCatalog(ctx context.Context, name string, entries []sizing.CatalogEntry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal catalog")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO catalogs (name, payload, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		name, string(payload), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save catalog %s", name)
}

func (s *SQLiteStore) GetCatalog(ctx context.Context, name string) ([]sizing.CatalogEntry, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM catalogs WHERE name = ?`, name,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("catalog not found: %s", name)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get catalog")
	}

	var entries []sizing.CatalogEntry
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal catalog")
	}
	return entries, nil
}

func (s *SQLiteStore) ListCatalogs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM catalogs ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list catalogs")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan catalog name")
		}
		names = append(names, name)
	}
	return names, eris.Wrap(rows.Err(), "sqlite: list catalogs iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}
