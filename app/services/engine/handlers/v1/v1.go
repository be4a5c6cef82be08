// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/powlab/powchain/app/services/engine/handlers/v1/chaingrp"
	"github.com/powlab/powchain/foundation/blockchain/state"
	"github.com/powlab/powchain/foundation/events"
	"github.com/powlab/powchain/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	cg := chaingrp.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/chain", cg.Chain)
	app.Handle(http.MethodGet, version, "/chain/latest", cg.LatestBlock)
	app.Handle(http.MethodGet, version, "/chain/validate", cg.Validate)
	app.Handle(http.MethodPost, version, "/chain/genesis", cg.Genesis)
	app.Handle(http.MethodPost, version, "/chain/blocks", cg.AddBlock)
	app.Handle(http.MethodPut, version, "/chain/difficulty", cg.Difficulty)
	app.Handle(http.MethodGet, version, "/events", cg.Events)
	app.Handle(http.MethodGet, version, "/algorithms", cg.Algorithms)
}
