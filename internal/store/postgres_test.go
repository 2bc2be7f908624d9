package store

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sceap-org/sceap/internal/model"
	"github.com/sceap-org/sceap/internal/sizing"
)

func newMockStore(t *testing.T) (pgxmock.PgxPoolIface, *PostgresStore) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPostgresWithPool(mock)
}

func TestPostgresMigrate(t *testing.T) {
	mock, s := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS projects").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateProject(t *testing.T) {
	mock, s := newMockStore(t)

	mock.ExpectExec("INSERT INTO projects").
		WithArgs(pgxmock.AnyArg(), "Unit 3 BOP", "thermal", "IEC", pgxmock.AnyArg(), "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created, err := s.CreateProject(context.Background(), model.Project{
		Name:          "Unit 3 BOP",
		PlantType:     "thermal",
		Standard:      "IEC",
		VoltageLevels: []float64{415},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertResult(t *testing.T) {
	mock, s := newMockStore(t)

	mock.ExpectQuery("INSERT INTO cable_results").
		WithArgs(pgxmock.AnyArg(), "proj-1", "C-001", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(true))

	created, err := s.UpsertResult(context.Background(), "proj-1", model.SizingResult{CableNumber: "C-001"})
	require.NoError(t, err)
	assert.True(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateResultStatus(t *testing.T) {
	mock, s := newMockStore(t)

	mock.ExpectExec("UPDATE cable_results").
		WithArgs("approved", "proj-1", "C-001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.UpdateResultStatus(context.Background(), "proj-1", "C-001", model.StatusApproved))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateResultStatusNotFound(t *testing.T) {
	mock, s := newMockStore(t)

	mock.ExpectExec("UPDATE cable_results").
		WithArgs("hold", "proj-1", "C-404").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateResultStatus(context.Background(), "proj-1", "C-404", model.StatusHold)
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetCatalog(t *testing.T) {
	mock, s := newMockStore(t)

	mock.ExpectQuery("SELECT payload FROM catalogs").
		WithArgs("vendor-a").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).
			AddRow([]byte(`[{"size_mm2":25,"cores":3,"ampacity_air":80,"ampacity_ground":85}]`)))

	entries, err := s.GetCatalog(context.Background(), "vendor-a")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, sizing.CatalogEntry{SizeMM2: 25, Cores: 3, AmpacityAir: 80, AmpacityGround: 85}, entries[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListCatalogs(t *testing.T) {
	mock, s := newMockStore(t)

	mock.ExpectQuery("SELECT name FROM catalogs").
		WillReturnRows(pgxmock.NewRows([]string{"name"}).AddRow("vendor-a").AddRow("vendor-b"))

	names, err := s.ListCatalogs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"vendor-a", "vendor-b"}, names)
	require.NoError(t, mock.ExpectationsWereMet())
}
