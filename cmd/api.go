package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sceap-org/sceap/internal/loadlist"
	"github.com/sceap-org/sceap/internal/model"
	"github.com/sceap-org/sceap/internal/routing"
	"github.com/sceap-org/sceap/internal/sizing"
)

// api serves the HTTP surface over the wired engines and store.
type api struct {
	env         *appEnv
	concurrency int
}

func newRouter(a *api) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.health)

		r.Post("/cable/single", a.sizeSingle)
		r.Post("/cable/bulk", a.sizeBulk)
		r.Post("/cable/import", a.importLoadList)

		r.Post("/routing/auto", a.routeAuto)
		r.Post("/routing/optimize", a.routeOptimize)
		r.Get("/routing/trays", a.listTrays)
		r.Get("/routing/graph", a.topologyGraph)

		r.Get("/standards", a.listStandards)
		r.Get("/cable-sizes", a.listCableSizes)

		r.Post("/catalogs", a.uploadCatalog)
		r.Get("/catalogs", a.listCatalogs)
		r.Get("/catalogs/template", a.catalogTemplate)
		r.Get("/catalogs/{name}", a.getCatalog)
		r.Get("/import/template", a.importTemplate)

		r.Post("/projects", a.createProject)
		r.Get("/projects", a.listProjects)
		r.Get("/projects/{id}/cables", a.listProjectCables)
		r.Put("/projects/{id}/cables/{cable}", a.upsertProjectCable)
		r.Post("/projects/{id}/cables/{cable}/status", a.updateCableStatus)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeSizingError maps engine errors to structured 400 responses.
func writeSizingError(w http.ResponseWriter, err error) {
	var verr *sizing.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":        verr.Reason,
			"cable_number": verr.CableNumber,
			"field":        verr.Field,
		})
		return
	}
	var serr *sizing.SizingError
	if errors.As(err, &serr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":            serr.Reason,
			"cable_number":     serr.CableNumber,
			"code":             string(serr.Code),
			"recommended_runs": serr.RecommendedRuns,
		})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func writeRoutingError(w http.ResponseWriter, err error) {
	var rerr *routing.RoutingError
	if errors.As(err, &rerr) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":  rerr.Error(),
			"code":   string(rerr.Code),
			"source": rerr.Source,
			"target": rerr.Target,
		})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"features": []string{"sizing", "routing", "catalogs", "projects"},
	})
}

// engineFor applies per-request standard and catalog overrides.
func (a *api) engineFor(r *http.Request) (*sizing.Engine, error) {
	standard := r.URL.Query().Get("standard")
	catalogName := r.URL.Query().Get("catalog")
	if standard == "" && catalogName == "" {
		return a.env.Engine, nil
	}

	catalog := a.env.Engine.Catalog()
	if catalogName != "" {
		entries, err := a.env.Store.GetCatalog(r.Context(), catalogName)
		if err != nil {
			return nil, err
		}
		catalog, err = sizing.NewCatalog(entries)
		if err != nil {
			return nil, err
		}
	}

	profile := a.env.Engine.Profile()
	if standard != "" {
		profile = sizing.ProfileFor(standard)
	}
	return sizing.New(catalog, profile, sizing.WithClearingTime(cfg.Sizing.ClearingTimeSecs)), nil
}

func (a *api) sizeSingle(w http.ResponseWriter, r *http.Request) {
	var spec model.CableSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	engine, err := a.engineFor(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	result, err := engine.Size(spec)
	if err != nil {
		writeSizingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *api) sizeBulk(w http.ResponseWriter, r *http.Request) {
	var specs []model.CableSpec
	if err := json.NewDecoder(r.Body).Decode(&specs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	engine, err := a.engineFor(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	batch := engine.SizeBatch(r.Context(), specs, a.concurrency)
	writeJSON(w, http.StatusOK, map[string]any{
		"results": batch.Results,
		"errors":  batch.Errors,
	})
}

func (a *api) importLoadList(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload")
		return
	}

	var rows [][]string
	if strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		rows, err = loadlist.ReadCSV(strings.NewReader(string(data)))
	} else {
		rows, err = loadlist.ReadXLSXBytes(data)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	specs, rowErrs, err := loadlist.ParseLoadList(rows)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	batch := a.env.Engine.SizeBatch(r.Context(), specs, a.concurrency)

	errs := make([]string, 0, len(rowErrs)+len(batch.Errors))
	for _, e := range rowErrs {
		errs = append(errs, e.Error())
	}
	for _, e := range batch.Errors {
		errs = append(errs, e.Reason)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"imported": len(batch.Results),
		"results":  batch.Results,
		"errors":   errs,
		"inputs":   specs,
	})
}

type routeRequest struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Strategy string `json:"strategy,omitempty"`
}

func (a *api) routeAuto(w http.ResponseWriter, r *http.Request) {
	a.route(w, r, routing.StrategyShortest, false)
}

func (a *api) routeOptimize(w http.ResponseWriter, r *http.Request) {
	a.route(w, r, routing.StrategyLeastFill, true)
}

func (a *api) route(w http.ResponseWriter, r *http.Request, def routing.Strategy, allowOverride bool) {
	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Source == "" || req.Target == "" {
		writeError(w, http.StatusBadRequest, "source and target are required")
		return
	}

	strategy := def
	if allowOverride && req.Strategy != "" {
		s, err := routing.ParseStrategy(req.Strategy)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		strategy = s
	}

	result, err := a.env.Router.Route(req.Source, req.Target, strategy)
	if err != nil {
		writeRoutingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *api) listTrays(w http.ResponseWriter, r *http.Request) {
	trays := a.env.Router.Network().Trays()
	type trayView struct {
		ID       string          `json:"id"`
		Fill     float64         `json:"fill_percent"`
		Capacity int             `json:"capacity"`
		Level    model.FillLevel `json:"level"`
	}
	views := make([]trayView, 0, len(trays))
	var totalFill float64
	for _, t := range trays {
		views = append(views, trayView{
			ID:       t.ID,
			Fill:     t.Fill,
			Capacity: t.Capacity,
			Level:    model.ClassifyFill(t.Fill),
		})
		totalFill += t.Fill
	}
	avg := 0.0
	if len(trays) > 0 {
		avg = totalFill / float64(len(trays))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"trays":        views,
		"average_fill": avg,
	})
}

func (a *api) topologyGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.env.Router.Network().Topology())
}

func (a *api) listStandards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"standards": []string{"IEC 60287", "IS 1554"},
	})
}

func (a *api) listCableSizes(w http.ResponseWriter, r *http.Request) {
	entries := a.env.Engine.Catalog().Entries()
	sizes := make([]float64, 0, len(entries))
	for _, e := range entries {
		sizes = append(sizes, e.SizeMM2)
	}
	writeJSON(w, http.StatusOK, map[string]any{"sizes_mm2": sizes})
}

func (a *api) uploadCatalog(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	name := r.FormValue("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload")
		return
	}
	rows, err := loadlist.ReadXLSXBytes(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, rowErrs, err := loadlist.ParseCatalog(rows)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := sizing.NewCatalog(entries); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.env.Store.SaveCatalog(r.Context(), name, entries); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	errs := make([]string, 0, len(rowErrs))
	for _, e := range rowErrs {
		errs = append(errs, e.Error())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":     name,
		"imported": len(entries),
		"errors":   errs,
	})
}

func (a *api) listCatalogs(w http.ResponseWriter, r *http.Request) {
	names, err := a.env.Store.ListCatalogs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"catalogs": names})
}

func (a *api) getCatalog(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	entries, err := a.env.Store.GetCatalog(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusNotFound, "catalog not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "entries": entries})
}

func (a *api) catalogTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="catalog_template.xlsx"`)
	if err := loadlist.WriteCatalogTemplate(w); err != nil {
		zap.L().Error("write catalog template", zap.Error(err))
	}
}

func (a *api) importTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="load_list_template.xlsx"`)
	if err := loadlist.WriteLoadListTemplate(w); err != nil {
		zap.L().Error("write load list template", zap.Error(err))
	}
}

func (a *api) createProject(w http.ResponseWriter, r *http.Request) {
	var p model.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	created, err := a.env.Store.CreateProject(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *api) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := a.env.Store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (a *api) listProjectCables(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := a.env.Store.GetProject(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	results, err := a.env.Store.ListResults(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cables": results})
}

func (a *api) upsertProjectCable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cable := chi.URLParam(r, "cable")

	var result model.SizingResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if result.CableNumber == "" {
		result.CableNumber = cable
	}
	if result.CableNumber != cable {
		writeError(w, http.StatusBadRequest, "cable number mismatch")
		return
	}
	if _, err := a.env.Store.GetProject(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}

	created, err := a.env.Store.UpsertResult(r.Context(), id, result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}

func (a *api) updateCableStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cable := chi.URLParam(r, "cable")

	var req struct {
		Status model.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch req.Status {
	case model.StatusPending, model.StatusApproved, model.StatusModified, model.StatusHold, model.StatusHidden:
	default:
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	if err := a.env.Store.UpdateResultStatus(r.Context(), id, cable, req.Status); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"cable_number": cable,
		"status":       string(req.Status),
	})
}
