// Package app wires the connector's collaborators together for main().
package app

import (
	"log/slog"
	"net/http"

	"pinot-bridge/internal/api"
	"pinot-bridge/internal/cluster"
	"pinot-bridge/internal/config"
	"pinot-bridge/internal/planner"
)

// App holds the fully-wired connector: metadata client, planner, and the
// HTTP handler the router serves.
type App struct {
	Cluster *cluster.Client
	Planner *planner.Planner
	Router  http.Handler
}

// New wires the metadata client, planner, and HTTP surface from config.
func New(cfg *config.Config, logger *slog.Logger) *App {
	metadata := cluster.NewClient(cfg.ControllerURL, cfg.ServiceToken,
		logger.With("component", "cluster"),
		cluster.Options{
			Timeout:           cfg.FetchTimeout,
			RequestsPerSecond: cfg.FetchRPS,
			Burst:             cfg.FetchBurst,
		})

	p := planner.New(cfg.ConnectorID, metadata, logger.With("component", "planner"))

	handler := api.NewHandler(p, metadata, cfg.DefaultSession(), logger.With("component", "api"))

	return &App{
		Cluster: metadata,
		Planner: p,
		Router:  api.NewRouter(handler, cfg),
	}
}
