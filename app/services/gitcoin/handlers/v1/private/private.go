// Package private maintains the group of handlers for operator access.
package private

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gitcoinhq/gitcoin/business/core/auction"
	"github.com/gitcoinhq/gitcoin/business/core/mint"
	v1 "github.com/gitcoinhq/gitcoin/business/web/v1"
	"github.com/gitcoinhq/gitcoin/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of operator endpoints.
type Handlers struct {
	Log     *zap.SugaredLogger
	Mint    *mint.Core
	Auction *auction.Core
}

// Status returns the current target and round summary for operators.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	target, err := h.Mint.CurrentTarget()
	if err != nil {
		return fmt.Errorf("reading target: %w", err)
	}

	round, err := h.Auction.CurrentRound()
	if err != nil {
		return fmt.Errorf("loading round: %w", err)
	}

	resp := struct {
		Target string `json:"target"`
		Active bool   `json:"active"`
		Points int    `json:"points"`
		Posses int    `json:"posses"`
	}{
		Target: target,
		Active: round.Active(),
		Points: round.Points(),
		Posses: len(round.Posses()),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SettleAuction completes the current round, awarding the leading posse
// and debiting its pledged coins.
func (h Handlers) SettleAuction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.Log.Infow("settle auction", "traceid", v.TraceID)

	settlement, err := h.Auction.Settle(ctx)
	if err != nil {
		switch {
		case errors.Is(err, auction.ErrNoBids):
			return v1.NewRequestError(err, http.StatusConflict)

		case errors.Is(err, auction.ErrRoundClosed):
			return v1.NewRequestError(err, http.StatusConflict)

		default:
			return fmt.Errorf("settling auction: %w", err)
		}
	}

	resp := struct {
		Posse  string `json:"posse"`
		Points int    `json:"points"`
		Debits int    `json:"debits"`
	}{
		Posse:  settlement.Award.Posse,
		Points: settlement.Award.Value,
		Debits: len(settlement.Bids),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// OpenAuction clears the round slot so a fresh round begins on the
// next read.
func (h Handlers) OpenAuction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := h.Auction.OpenRound(); err != nil {
		return fmt.Errorf("opening round: %w", err)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "round opened",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ResetTarget overwrites the mining target with the maximum value.
func (h Handlers) ResetTarget(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := h.Mint.Reset(); err != nil {
		return fmt.Errorf("resetting target: %w", err)
	}

	resp := struct {
		Status string `json:"status"`
		Target string `json:"target"`
	}{
		Status: "target reset",
		Target: mint.MaxTarget,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
