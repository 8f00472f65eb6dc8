package auction_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/gitcoinhq/gitcoin/business/core/auction"
	"github.com/gitcoinhq/gitcoin/business/data/keystore"
	"github.com/gitcoinhq/gitcoin/business/data/ledger"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func newTestCore(t *testing.T) (*auction.Core, *ledger.Ledger) {
	log := zap.NewNop().Sugar()

	ldgr, err := ledger.Open(ledger.Config{Log: log})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to open the ledger: %v", failed, err)
	}
	t.Cleanup(func() { ldgr.Close() })

	keys, err := keystore.Open(keystore.Config{Log: log})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to open the key store: %v", failed, err)
	}
	t.Cleanup(func() { keys.Close() })

	core := auction.NewCore(auction.Config{
		Log:      log,
		Ledger:   ldgr,
		KeyStore: keys,
	})

	return core, ldgr
}

func coin(digest string, value int) ledger.Coin {
	return ledger.Coin{
		Digest: digest,
		Value:  value,
	}
}

func TestPlaceBid(t *testing.T) {
	core, _ := newTestCore(t)
	ctx := context.Background()

	t.Log("Given the need to accumulate bids for the current round.")
	{
		t.Log("\tTest 0:\tWhen placing bids toward two posses.")
		{
			if err := core.PlaceBid(ctx, "Ada Lovelace", coin("d1", 5)); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to place the first bid: %v", failed, err)
			}
			if err := core.PlaceBid(ctx, "Grace Hopper", coin("d2", 15)); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to place the second bid: %v", failed, err)
			}
			if err := core.PlaceBid(ctx, "Ada Lovelace", coin("d3", 50)); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to place the third bid: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to place bids.", success)

			round, err := core.CurrentRound()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the round: %v", failed, err)
			}
			if total := round.Total("Ada Lovelace"); total != 55 {
				t.Fatalf("\t%s\tTest 0:\tShould total 55 for Ada Lovelace, got %d.", failed, total)
			}
			if total := round.Total("Grace Hopper"); total != 15 {
				t.Fatalf("\t%s\tTest 0:\tShould total 15 for Grace Hopper, got %d.", failed, total)
			}
			t.Logf("\t%s\tTest 0:\tShould compute per posse totals independently.", success)
		}

		t.Log("\tTest 1:\tWhen re-bidding a coin toward the same posse.")
		{
			err := core.PlaceBid(ctx, "Ada Lovelace", coin("d1", 5))
			if !errors.Is(err, auction.ErrDuplicateBid) {
				t.Fatalf("\t%s\tTest 1:\tShould get ErrDuplicateBid, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get ErrDuplicateBid.", success)
		}

		t.Log("\tTest 2:\tWhen re-bidding a coin toward a different posse.")
		{
			err := core.PlaceBid(ctx, "Donald Knuth", coin("d1", 5))
			if !errors.Is(err, auction.ErrDuplicateBid) {
				t.Fatalf("\t%s\tTest 2:\tShould get ErrDuplicateBid, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould get ErrDuplicateBid.", success)

			round, err := core.CurrentRound()
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to load the round: %v", failed, err)
			}
			var bids int
			for _, posse := range round.Posses() {
				bids += len(round.PosseBids(posse))
			}
			if bids != 3 {
				t.Fatalf("\t%s\tTest 2:\tShould hold exactly 3 bids across all posses, got %d.", failed, bids)
			}
			t.Logf("\t%s\tTest 2:\tShould hold exactly 3 bids across all posses.", success)
		}
	}
}

func TestSettle(t *testing.T) {
	core, ldgr := newTestCore(t)
	ctx := context.Background()

	t.Log("Given the need to settle a round with bids.")
	{
		if err := core.PlaceBid(ctx, "Ada Lovelace", coin("s1", 5)); err != nil {
			t.Fatalf("\t%s\tShould be able to place a bid: %v", failed, err)
		}
		if err := core.PlaceBid(ctx, "Grace Hopper", coin("s2", 20)); err != nil {
			t.Fatalf("\t%s\tShould be able to place a bid: %v", failed, err)
		}

		settlement, err := core.Settle(ctx)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to settle the round: %v", failed, err)
		}
		if settlement.Award.Posse != "Grace Hopper" {
			t.Fatalf("\t%s\tShould award the posse with the highest total, got %s.", failed, settlement.Award.Posse)
		}
		if settlement.Award.Value != auction.DefaultPoints {
			t.Fatalf("\t%s\tShould award the round points, got %d.", failed, settlement.Award.Value)
		}
		t.Logf("\t%s\tShould award the posse with the highest total.", success)

		debited, err := ldgr.IsDebited(ctx, "s2")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to check debits: %v", failed, err)
		}
		if !debited {
			t.Fatalf("\t%s\tShould debit the winning posse's coins.", failed)
		}

		debited, err = ldgr.IsDebited(ctx, "s1")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to check debits: %v", failed, err)
		}
		if debited {
			t.Fatalf("\t%s\tShould not debit the losing posse's coins.", failed)
		}
		t.Logf("\t%s\tShould debit exactly the winning posse's coins.", success)

		round, err := core.CurrentRound()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to load the round: %v", failed, err)
		}
		if round.Active() {
			t.Fatalf("\t%s\tShould mark the round inactive.", failed)
		}
		t.Logf("\t%s\tShould mark the round inactive.", success)

		if err := core.PlaceBid(ctx, "Ada Lovelace", coin("s3", 1)); !errors.Is(err, auction.ErrRoundClosed) {
			t.Fatalf("\t%s\tShould reject bids on a closed round, got %v.", failed, err)
		}
		t.Logf("\t%s\tShould reject bids on a closed round.", success)

		if _, err := core.Settle(ctx); !errors.Is(err, auction.ErrRoundClosed) {
			t.Fatalf("\t%s\tShould reject settling a closed round, got %v.", failed, err)
		}
		t.Logf("\t%s\tShould reject settling a closed round.", success)

		if err := core.OpenRound(); err != nil {
			t.Fatalf("\t%s\tShould be able to open a fresh round: %v", failed, err)
		}
		round, err = core.CurrentRound()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to load the fresh round: %v", failed, err)
		}
		if !round.Active() || len(round.Posses()) != 0 {
			t.Fatalf("\t%s\tShould get a fresh active round with no bids.", failed)
		}
		t.Logf("\t%s\tShould get a fresh active round with no bids.", success)
	}
}

func TestSettleTieBreak(t *testing.T) {
	core, _ := newTestCore(t)
	ctx := context.Background()

	t.Log("Given the need to break ties between posses with equal totals.")
	{
		if err := core.PlaceBid(ctx, "Alan Kay", coin("t1", 10)); err != nil {
			t.Fatalf("\t%s\tShould be able to place a bid: %v", failed, err)
		}
		if err := core.PlaceBid(ctx, "Dennis Ritchie", coin("t2", 10)); err != nil {
			t.Fatalf("\t%s\tShould be able to place a bid: %v", failed, err)
		}

		settlement, err := core.Settle(ctx)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to settle the round: %v", failed, err)
		}
		if settlement.Award.Posse != "Dennis Ritchie" {
			t.Fatalf("\t%s\tShould award the posse whose first bid came latest, got %s.", failed, settlement.Award.Posse)
		}
		t.Logf("\t%s\tShould award the posse whose first bid came latest.", success)
	}
}

func TestSettleNoBids(t *testing.T) {
	core, ldgr := newTestCore(t)
	ctx := context.Background()

	t.Log("Given the need to reject settling a round with no bids.")
	{
		if _, err := core.Settle(ctx); !errors.Is(err, auction.ErrNoBids) {
			t.Fatalf("\t%s\tShould get ErrNoBids, got %v.", failed, err)
		}
		t.Logf("\t%s\tShould get ErrNoBids.", success)

		awards, err := ldgr.QueryAwards(ctx)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to query awards: %v", failed, err)
		}
		if len(awards) != 0 {
			t.Fatalf("\t%s\tShould not record an award, got %d.", failed, len(awards))
		}
		t.Logf("\t%s\tShould not record an award.", success)
	}
}

func TestRoundWireFormat(t *testing.T) {
	core, _ := newTestCore(t)
	ctx := context.Background()

	t.Log("Given the need to round-trip a round through its wire format.")
	{
		if err := core.PlaceBid(ctx, "Weirich", coin("w1", 15)); err != nil {
			t.Fatalf("\t%s\tShould be able to place a bid: %v", failed, err)
		}
		if err := core.PlaceBid(ctx, "Alan Kay", coin("w2", 50)); err != nil {
			t.Fatalf("\t%s\tShould be able to place a bid: %v", failed, err)
		}
		if err := core.PlaceBid(ctx, "Weirich", coin("w3", 1)); err != nil {
			t.Fatalf("\t%s\tShould be able to place a bid: %v", failed, err)
		}

		round, err := core.CurrentRound()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to load the round: %v", failed, err)
		}

		data, err := json.Marshal(round)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to marshal the round: %v", failed, err)
		}

		var parsed auction.Round
		if err := json.Unmarshal(data, &parsed); err != nil {
			t.Fatalf("\t%s\tShould be able to unmarshal the round: %v", failed, err)
		}

		posses := parsed.Posses()
		if len(posses) != 2 || posses[0] != "Weirich" || posses[1] != "Alan Kay" {
			t.Fatalf("\t%s\tShould preserve the posse order, got %v.", failed, posses)
		}
		t.Logf("\t%s\tShould preserve the posse order.", success)

		if total := parsed.Total("Weirich"); total != 16 {
			t.Fatalf("\t%s\tShould preserve the bids, got total %d.", failed, total)
		}
		if parsed.Active() != round.Active() || parsed.Points() != round.Points() {
			t.Fatalf("\t%s\tShould preserve the active flag and points.", failed)
		}
		t.Logf("\t%s\tShould preserve the bids, active flag and points.", success)
	}

	t.Log("Given the need to default missing wire fields.")
	{
		var parsed auction.Round
		if err := json.Unmarshal([]byte(`{"bids":{}}`), &parsed); err != nil {
			t.Fatalf("\t%s\tShould be able to unmarshal an empty document: %v", failed, err)
		}
		if !parsed.Active() {
			t.Fatalf("\t%s\tShould default the active flag to true.", failed)
		}
		if parsed.Points() != auction.DefaultPoints {
			t.Fatalf("\t%s\tShould default the points to %d, got %d.", failed, auction.DefaultPoints, parsed.Points())
		}
		t.Logf("\t%s\tShould default the active flag and points.", success)
	}
}

func TestValidPosse(t *testing.T) {
	t.Log("Given the need to validate posse names against the fixed set.")
	{
		if !auction.ValidPosse("Yukihiro Matsumoto") {
			t.Fatalf("\t%s\tShould accept a posse from the fixed set.", failed)
		}
		t.Logf("\t%s\tShould accept a posse from the fixed set.", success)

		if auction.ValidPosse("Rob Pike") {
			t.Fatalf("\t%s\tShould reject a posse outside the fixed set.", failed)
		}
		t.Logf("\t%s\tShould reject a posse outside the fixed set.", success)
	}
}
