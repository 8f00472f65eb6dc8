package auctiongrp

import "github.com/gitcoinhq/gitcoin/business/core/auction"

type newBid struct {
	Posse   string `json:"posse" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type bidResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type posseStanding struct {
	Posse string        `json:"posse"`
	Total int           `json:"total"`
	Bids  []auction.Bid `json:"bids"`
}

type roundView struct {
	Active    bool            `json:"active"`
	Points    int             `json:"points"`
	Standings []posseStanding `json:"standings"`
}
