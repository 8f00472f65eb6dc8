// Package auctiongrp maintains the group of handlers for the point auction.
package auctiongrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gitcoinhq/gitcoin/business/core/auction"
	"github.com/gitcoinhq/gitcoin/business/data/ledger"
	v1 "github.com/gitcoinhq/gitcoin/business/web/v1"
	"github.com/gitcoinhq/gitcoin/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of auction endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	Core   *auction.Core
	Ledger *ledger.Ledger
}

// Bid pledges a coin, identified by its message, toward a posse in the
// current round. The boundary validations belong here: the posse must be
// one of the fixed set and the coin must exist and be unspent.
func (h Handlers) Bid(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nb newBid
	if err := web.Decode(r, &nb); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	if !auction.ValidPosse(nb.Posse) {
		err := fmt.Errorf("sorry, %s is not a valid posse", nb.Posse)
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	coin, err := h.Ledger.QueryCoinByMessage(ctx, nb.Message)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			err := fmt.Errorf("sorry, %s is not a valid coin message", nb.Message)
			return v1.NewRequestError(err, http.StatusBadRequest)
		}
		return fmt.Errorf("querying coin: %w", err)
	}

	debited, err := h.Ledger.IsDebited(ctx, coin.Digest)
	if err != nil {
		return fmt.Errorf("checking debits: %w", err)
	}
	if debited {
		err := fmt.Errorf("sorry, %s has already been spent", nb.Message)
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("place bid", "traceid", v.TraceID, "posse", nb.Posse, "digest", coin.Digest)

	if err := h.Core.PlaceBid(ctx, nb.Posse, coin); err != nil {
		switch {
		case errors.Is(err, auction.ErrDuplicateBid):
			err := fmt.Errorf("sorry, %s has already been bid on this auction", nb.Message)
			return v1.NewRequestError(err, http.StatusBadRequest)

		case errors.Is(err, auction.ErrRoundClosed):
			return v1.NewRequestError(err, http.StatusConflict)

		default:
			return fmt.Errorf("placing bid: %w", err)
		}
	}

	resp := bidResult{
		Success: true,
		Message: fmt.Sprintf("bid coin %s toward %s", coin.Digest, nb.Posse),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Auction returns the current round: each posse's bids and total in the
// order the posses first bid, plus the round's status and prize.
func (h Handlers) Auction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	round, err := h.Core.CurrentRound()
	if err != nil {
		return fmt.Errorf("loading round: %w", err)
	}

	view := roundView{
		Active:    round.Active(),
		Points:    round.Points(),
		Standings: []posseStanding{},
	}
	for _, posse := range round.Posses() {
		view.Standings = append(view.Standings, posseStanding{
			Posse: posse,
			Total: round.Total(posse),
			Bids:  round.PosseBids(posse),
		})
	}

	return web.Respond(ctx, w, view, http.StatusOK)
}

// Awards returns the settlement history, newest first.
func (h Handlers) Awards(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	awards, err := h.Ledger.QueryAwards(ctx)
	if err != nil {
		return fmt.Errorf("querying awards: %w", err)
	}

	return web.Respond(ctx, w, awards, http.StatusOK)
}
