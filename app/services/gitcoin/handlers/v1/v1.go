// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/gitcoinhq/gitcoin/app/services/gitcoin/handlers/v1/auctiongrp"
	"github.com/gitcoinhq/gitcoin/app/services/gitcoin/handlers/v1/coingrp"
	"github.com/gitcoinhq/gitcoin/app/services/gitcoin/handlers/v1/private"
	"github.com/gitcoinhq/gitcoin/business/core/auction"
	"github.com/gitcoinhq/gitcoin/business/core/mint"
	"github.com/gitcoinhq/gitcoin/business/data/ledger"
	"github.com/gitcoinhq/gitcoin/foundation/events"
	"github.com/gitcoinhq/gitcoin/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log       *zap.SugaredLogger
	Mint      *mint.Core
	Auction   *auction.Core
	Ledger    *ledger.Ledger
	Evts      *events.Events
	AuthToken string
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	cgh := coingrp.Handlers{
		Log:       cfg.Log,
		Mint:      cfg.Mint,
		Ledger:    cfg.Ledger,
		Evts:      cfg.Evts,
		AuthToken: cfg.AuthToken,
	}

	app.Handle(http.MethodPost, version, "/hash", cgh.Submit)
	app.Handle(http.MethodGet, version, "/target", cgh.Target)
	app.Handle(http.MethodGet, version, "/coins", cgh.Coins)
	app.Handle(http.MethodGet, version, "/coinbase", cgh.Coinbase)
	app.Handle(http.MethodGet, version, "/events", cgh.Events)

	agh := auctiongrp.Handlers{
		Log:    cfg.Log,
		Core:   cfg.Auction,
		Ledger: cfg.Ledger,
	}

	app.Handle(http.MethodPost, version, "/bid", agh.Bid)
	app.Handle(http.MethodGet, version, "/auction", agh.Auction)
	app.Handle(http.MethodGet, version, "/awards", agh.Awards)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:     cfg.Log,
		Mint:    cfg.Mint,
		Auction: cfg.Auction,
	}

	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodPost, version, "/auction/settle", prv.SettleAuction)
	app.Handle(http.MethodPost, version, "/auction/open", prv.OpenAuction)
	app.Handle(http.MethodPost, version, "/target/reset", prv.ResetTarget)
}
