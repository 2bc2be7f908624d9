package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sceap-org/sceap/internal/config"
	"github.com/sceap-org/sceap/internal/loadlist"
	"github.com/sceap-org/sceap/internal/model"
	"github.com/sceap-org/sceap/internal/routing"
	"github.com/sceap-org/sceap/internal/sizing"
	"github.com/sceap-org/sceap/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestAPI(t *testing.T) http.Handler {
	t.Helper()

	cfg = &config.Config{}
	cfg.Sizing.Standard = "IEC"
	cfg.Sizing.ClearingTimeSecs = 1.0
	cfg.Sizing.Concurrency = 4
	cfg.Routing.PenaltyFactor = routing.DefaultPenaltyFactor

	st, err := store.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	env := &appEnv{
		Store:  st,
		Engine: sizing.New(sizing.DefaultCatalog(), sizing.IEC60287()),
		Router: routing.NewRouter(routing.DefaultNetwork()),
	}
	return newRouter(&api{env: env, concurrency: 4})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestCableSingleEndpoint(t *testing.T) {
	h := newTestAPI(t)

	spec := model.CableSpec{
		CableNumber: "C-001",
		LoadKW:      50,
		Voltage:     400,
		PowerFactor: 0.8,
		Efficiency:  0.95,
		Length:      100,
		Runs:        1,
	}

	rec := doJSON(t, h, http.MethodPost, "/api/v1/cable/single", spec)
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.SizingResult
	decode(t, rec, &result)
	assert.Equal(t, 50.0, result.SelectedSize)
	assert.True(t, result.Approved)
}

func TestCableSingleValidationError(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/cable/single", model.CableSpec{
		CableNumber: "C-BAD",
		LoadKW:      50,
		Voltage:     0,
		PowerFactor: 0.8,
		Efficiency:  0.95,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, "C-BAD", body["cable_number"])
	assert.Equal(t, "voltage", body["field"])
}

func TestCableSingleStandardOverride(t *testing.T) {
	h := newTestAPI(t)

	spec := model.CableSpec{
		CableNumber: "C-001",
		LoadKW:      50,
		Voltage:     400,
		PowerFactor: 0.8,
		Efficiency:  0.95,
	}

	rec := doJSON(t, h, http.MethodPost, "/api/v1/cable/single?standard=IS", spec)
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.SizingResult
	decode(t, rec, &result)
	assert.Equal(t, "IS 1554", result.Standard)
}

func TestCableBulkEndpoint(t *testing.T) {
	h := newTestAPI(t)

	specs := make([]model.CableSpec, 10)
	for i := range specs {
		specs[i] = model.CableSpec{
			CableNumber: fmt.Sprintf("C-%03d", i+1),
			LoadKW:      20,
			Voltage:     415,
			PowerFactor: 0.9,
			Efficiency:  0.95,
			Length:      50,
		}
	}
	specs[3].Voltage = 0

	rec := doJSON(t, h, http.MethodPost, "/api/v1/cable/bulk", specs)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results []model.SizingResult `json:"results"`
		Errors  []struct {
			CableNumber string `json:"cable_number"`
		} `json:"errors"`
	}
	decode(t, rec, &body)
	assert.Len(t, body.Results, 9)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "C-004", body.Errors[0].CableNumber)
}

func TestCableImportEndpoint(t *testing.T) {
	h := newTestAPI(t)

	var xlsxBuf bytes.Buffer
	require.NoError(t, loadlist.WriteLoadListTemplate(&xlsxBuf))

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	part, err := mw.CreateFormFile("file", "load_list.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsxBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cable/import", &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Imported int                  `json:"imported"`
		Results  []model.SizingResult `json:"results"`
		Errors   []string             `json:"errors"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 1, body.Imported)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "C-001", body.Results[0].CableNumber)
	assert.Empty(t, body.Errors)
}

func TestRoutingEndpoints(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/routing/auto", routeRequest{
		Source: "Transformer", Target: "Panel A",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.RouteResult
	decode(t, rec, &result)
	assert.Equal(t, []string{"Transformer", "PHF-01", "PHF-02", "PHF-03", "DB-01", "Panel A"}, result.Path)
	assert.InDelta(t, 41.0, result.TotalLength, 1e-9)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/routing/optimize", routeRequest{
		Source: "Transformer", Target: "Panel A", Strategy: "least-fill",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/routing/auto", routeRequest{
		Source: "Transformer", Target: "Nowhere",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errBody map[string]any
	decode(t, rec, &errBody)
	assert.Equal(t, "unknown_node", errBody["code"])
}

func TestTraysAndGraphEndpoints(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/routing/trays", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var trays struct {
		Trays []struct {
			ID    string  `json:"id"`
			Fill  float64 `json:"fill_percent"`
			Level string  `json:"level"`
		} `json:"trays"`
		AverageFill float64 `json:"average_fill"`
	}
	decode(t, rec, &trays)
	require.Len(t, trays.Trays, 7)
	assert.InDelta(t, 46.43, trays.AverageFill, 0.01)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/routing/graph", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var topo model.Topology
	decode(t, rec, &topo)
	assert.Len(t, topo.Nodes, 12)
	assert.Len(t, topo.Edges, 10)
}

func TestReferenceDataEndpoints(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/standards", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "IEC 60287")

	rec = doJSON(t, h, http.MethodGet, "/api/v1/cable-sizes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var sizes struct {
		SizesMM2 []float64 `json:"sizes_mm2"`
	}
	decode(t, rec, &sizes)
	assert.Len(t, sizes.SizesMM2, 15)
	assert.Equal(t, 1.5, sizes.SizesMM2[0])
}

func TestCatalogEndpoints(t *testing.T) {
	h := newTestAPI(t)

	var xlsxBuf bytes.Buffer
	require.NoError(t, loadlist.WriteCatalogTemplate(&xlsxBuf))

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	require.NoError(t, mw.WriteField("name", "vendor-a"))
	part, err := mw.CreateFormFile("file", "catalog.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsxBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalogs", &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/catalogs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "vendor-a")

	rec = doJSON(t, h, http.MethodGet, "/api/v1/catalogs/vendor-a", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var catalog struct {
		Entries []sizing.CatalogEntry `json:"entries"`
	}
	decode(t, rec, &catalog)
	assert.Len(t, catalog.Entries, 2)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/catalogs/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTemplateEndpoints(t *testing.T) {
	h := newTestAPI(t)

	for _, path := range []string{"/api/v1/import/template", "/api/v1/catalogs/template"} {
		rec := doJSON(t, h, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"), path)
	}
}

func TestProjectWorkflow(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/projects", model.Project{
		Name:          "Unit 3 BOP",
		Standard:      "IEC",
		VoltageLevels: []float64{415, 6600},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var project model.Project
	decode(t, rec, &project)
	require.NotEmpty(t, project.ID)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unit 3 BOP")

	result := model.SizingResult{
		CableNumber:  "C-001",
		SelectedSize: 50,
		Approved:     true,
		Status:       model.StatusPending,
	}
	rec = doJSON(t, h, http.MethodPut, "/api/v1/projects/"+project.ID+"/cables/C-001", result)
	require.Equal(t, http.StatusCreated, rec.Code)

	// second put updates in place
	result.SelectedSize = 70
	rec = doJSON(t, h, http.MethodPut, "/api/v1/projects/"+project.ID+"/cables/C-001", result)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/projects/"+project.ID+"/cables/C-001/status",
		map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/projects/"+project.ID+"/cables", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cables struct {
		Cables []model.SizingResult `json:"cables"`
	}
	decode(t, rec, &cables)
	require.Len(t, cables.Cables, 1)
	assert.Equal(t, 70.0, cables.Cables[0].SelectedSize)
	assert.Equal(t, model.StatusApproved, cables.Cables[0].Status)
}

func TestProjectErrors(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/projects", model.Project{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/projects/missing/cables", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/projects/missing/cables/C-001/status",
		map[string]string{"status": "bogus"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
