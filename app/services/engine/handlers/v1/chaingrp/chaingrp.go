// Package chaingrp maintains the group of handlers for chain access.
package chaingrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/powlab/powchain/business/sys/metrics"
	"github.com/powlab/powchain/business/web/errs"
	"github.com/powlab/powchain/foundation/blockchain/chain"
	"github.com/powlab/powchain/foundation/blockchain/digest"
	"github.com/powlab/powchain/foundation/blockchain/state"
	"github.com/powlab/powchain/foundation/events"
	"github.com/powlab/powchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of chain endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Genesis discards the session's chain and mines a fresh genesis block
// under the requested algorithm and difficulty.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nc newChain
	if err := web.Decode(r, &nc); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	if !digest.Supported(nc.Algorithm) {
		return errs.NewTrusted(fmt.Errorf("algorithm %q is not supported", nc.Algorithm), http.StatusBadRequest)
	}

	h.Log.Infow("new chain", "traceid", v.TraceID, "algorithm", nc.Algorithm, "difficulty", nc.Difficulty)

	genesis, err := h.State.ResetChain(ctx, nc.Algorithm, nc.Difficulty)
	if err != nil {
		if errors.Is(err, digest.ErrInvalidInput) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return err
	}
	metrics.AddBlocksMined(ctx)

	return web.Respond(ctx, w, genesis, http.StatusCreated)
}

// AddBlock mines a block carrying the submitted transaction payload and
// appends it to the session's chain.
func (h Handlers) AddBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nb newBlock
	if err := web.Decode(r, &nb); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	h.Log.Infow("add block", "traceid", v.TraceID, "transaction", nb.Transaction)

	mined, err := h.State.AddBlock(ctx, nb.Transaction)
	if err != nil {
		if errors.Is(err, chain.ErrEmptyChain) {
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return err
	}
	metrics.AddBlocksMined(ctx)

	return web.Respond(ctx, w, mined, http.StatusCreated)
}

// Chain returns the full chain for the session.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveChain(), http.StatusOK)
}

// LatestBlock returns the last block mined onto the chain.
func (h Handlers) LatestBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveLatestBlock(), http.StatusOK)
}

// Validate re-checks every block in the chain and returns the per-block
// verdict report.
func (h Handlers) Validate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	report, err := h.State.ValidateChain()
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, report, http.StatusOK)
}

// Difficulty signals a background rebuild of the chain under a new
// difficulty. A rebuild already in flight is cancelled; only the latest
// requested difficulty wins.
func (h Handlers) Difficulty(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nd newDifficulty
	if err := web.Decode(r, &nd); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	h.Log.Infow("difficulty change", "traceid", v.TraceID, "difficulty", nd.Difficulty)

	h.State.SignalRebuild(nd.Difficulty)

	resp := struct {
		Status     string `json:"status"`
		Difficulty uint   `json:"difficulty"`
	}{
		Status:     "rebuild signaled",
		Difficulty: nd.Difficulty,
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// Algorithms returns the registered digest algorithm names and the
// session's current settings.
func (h Handlers) Algorithms(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	algorithm, difficulty := h.State.RetrieveSettings()

	resp := struct {
		Algorithms []string `json:"algorithms"`
		Current    settings `json:"current"`
	}{
		Algorithms: digest.Algorithms(),
		Current: settings{
			Algorithm:  algorithm,
			Difficulty: difficulty,
		},
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Events handles a web socket to provide engine events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
