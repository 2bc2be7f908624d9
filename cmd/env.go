package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/sceap-org/sceap/internal/routing"
	"github.com/sceap-org/sceap/internal/sizing"
	"github.com/sceap-org/sceap/internal/store"
)

// appEnv holds the wired engines and store shared by commands.
type appEnv struct {
	Store  store.Store
	Engine *sizing.Engine
	Router *routing.Router
}

// initEnv opens the store and builds the sizing and routing engines from
// configuration. The caller must Close it.
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}

	catalog := sizing.DefaultCatalog()
	if cfg.Sizing.Catalog != "" {
		entries, err := st.GetCatalog(ctx, cfg.Sizing.Catalog)
		if err != nil {
			st.Close()
			return nil, err
		}
		catalog, err = sizing.NewCatalog(entries)
		if err != nil {
			st.Close()
			return nil, err
		}
		zap.L().Info("loaded catalog", zap.String("name", cfg.Sizing.Catalog), zap.Int("sizes", catalog.Len()))
	}

	engine := sizing.New(catalog, sizing.ProfileFor(cfg.Sizing.Standard),
		sizing.WithClearingTime(cfg.Sizing.ClearingTimeSecs))

	net := routing.DefaultNetwork()
	if cfg.Routing.TopologyPath != "" {
		net, err = routing.LoadNetwork(cfg.Routing.TopologyPath)
		if err != nil {
			st.Close()
			return nil, err
		}
		zap.L().Info("loaded tray topology", zap.String("path", cfg.Routing.TopologyPath))
	}
	router := routing.NewRouter(net, routing.WithPenaltyFactor(cfg.Routing.PenaltyFactor))

	return &appEnv{Store: st, Engine: engine, Router: router}, nil
}

func (e *appEnv) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("store close", zap.Error(err))
	}
}
