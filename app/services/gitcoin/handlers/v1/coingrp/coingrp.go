// Package coingrp maintains the group of handlers for mining and coin access.
package coingrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gitcoinhq/gitcoin/business/core/mint"
	"github.com/gitcoinhq/gitcoin/business/data/ledger"
	v1 "github.com/gitcoinhq/gitcoin/business/web/v1"
	"github.com/gitcoinhq/gitcoin/foundation/events"
	"github.com/gitcoinhq/gitcoin/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of mining and coin endpoints.
type Handlers struct {
	Log       *zap.SugaredLogger
	Mint      *mint.Core
	Ledger    *ledger.Ledger
	WS        websocket.Upgrader
	Evts      *events.Events
	AuthToken string
}

// Submit runs one mining attempt against the current target. Rejections
// are a normal outcome and reported with success set to false.
func (h Handlers) Submit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ns newSubmission
	if err := web.Decode(r, &ns); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	h.Log.Infow("mining attempt", "traceid", v.TraceID, "owner", ns.Owner)

	resp := submission{GitcoinAssigned: false}

	coin, err := h.Mint.Submit(ctx, ns.Message, ns.Owner)
	switch {
	case err == nil:
		resp.Success = true
		resp.GitcoinAssigned = coin

	case errors.Is(err, mint.ErrDuplicateMessage), errors.Is(err, mint.ErrNotBelowTarget):
		// Not winning a coin is not an error.

	default:
		return fmt.Errorf("mining submission failed: %w", err)
	}

	newTarget, err := h.Mint.CurrentTarget()
	if err != nil {
		return fmt.Errorf("reading target: %w", err)
	}
	resp.NewTarget = newTarget

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Target returns the target a digest must be numerically below to mine
// a coin.
func (h Handlers) Target(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	current, err := h.Mint.CurrentTarget()
	if err != nil {
		return fmt.Errorf("reading target: %w", err)
	}

	return web.Respond(ctx, w, target{Target: current}, http.StatusOK)
}

// Coins returns every coin ever mined, newest first.
func (h Handlers) Coins(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	coins, err := h.Ledger.QueryCoins(ctx)
	if err != nil {
		return fmt.Errorf("querying coins: %w", err)
	}

	return web.Respond(ctx, w, coins, http.StatusOK)
}

// Coinbase returns the mined coins grouped by owner. Access requires the
// configured auth token.
func (h Handlers) Coinbase(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if r.Header.Get("Gitcoin-Token") != h.AuthToken {
		return v1.NewRequestError(errors.New("auth token required"), http.StatusUnauthorized)
	}

	coins, err := h.Ledger.QueryCoins(ctx)
	if err != nil {
		return fmt.Errorf("querying coins: %w", err)
	}

	byOwner := make(map[string][]ownedCoin)
	for _, coin := range coins {
		byOwner[coin.Owner] = append(byOwner[coin.Owner], ownedCoin{
			Value:   coin.Value,
			Message: coin.Message,
			Owner:   coin.Owner,
		})
	}

	return web.Respond(ctx, w, byOwner, http.StatusOK)
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
		case evt, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(evt.String())); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
