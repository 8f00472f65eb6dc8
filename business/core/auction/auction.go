// Package auction implements the point auction engine. Coin owners pledge
// mined coins toward a posse, and at settlement the posse with the highest
// pledged value wins the round's points while its pledged coins are
// permanently spent.
package auction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gitcoinhq/gitcoin/business/data/keystore"
	"github.com/gitcoinhq/gitcoin/business/data/ledger"
	"github.com/gitcoinhq/gitcoin/foundation/events"
	"go.uber.org/zap"
)

// RoundKey is the key-value slot holding the serialized current round.
const RoundKey = "current_point_auction"

// Posses is the fixed set of teams a bid may be attributed to.
var Posses = []string{
	"Alan Kay",
	"Tim Berners-Lee",
	"Fred Brooks",
	"Donald Knuth",
	"Ada Lovelace",
	"Grace Hopper",
	"James Golick",
	"Weirich",
	"Adele Goldberg",
	"Dennis Ritchie",
	"Ezra Zygmuntowicz",
	"Yukihiro Matsumoto",
}

// ValidPosse reports whether the specified name is in the fixed posse set.
func ValidPosse(name string) bool {
	for _, posse := range Posses {
		if posse == name {
			return true
		}
	}
	return false
}

// Set of error variables for expected auction rejections.
var (
	ErrDuplicateBid = errors.New("coin has already been bid this round")
	ErrRoundClosed  = errors.New("round is no longer accepting bids")
	ErrNoBids       = errors.New("no bids to settle")
)

// Settlement carries the outcome of completing a round.
type Settlement struct {
	Award ledger.PosseAward
	Bids  []Bid
}

// Config represents the mandatory systems required by the auction engine.
type Config struct {
	Log      *zap.SugaredLogger
	Ledger   *ledger.Ledger
	KeyStore *keystore.KeyStore
	Evts     *events.Events
}

// Core manages the auction state machine. The round is loaded from its
// key-value slot at the start of each operation and persisted at the end,
// with a process-wide lock guarding the full read-modify-write sequence.
type Core struct {
	log    *zap.SugaredLogger
	ledger *ledger.Ledger
	keys   *keystore.KeyStore
	evts   *events.Events
	mu     sync.Mutex
}

// NewCore constructs an auction engine.
func NewCore(cfg Config) *Core {
	return &Core{
		log:    cfg.Log,
		ledger: cfg.Ledger,
		keys:   cfg.KeyStore,
		evts:   cfg.Evts,
	}
}

// CurrentRound returns the round bids are currently attributed to. A
// fresh round begins when the slot has never been written or was cleared.
func (c *Core) CurrentRound() (*Round, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loadRound()
}

// PlaceBid pledges a coin's value toward a posse in the current round.
// The caller is responsible for having validated that the posse is one of
// Posses and that the coin exists and is unspent.
func (c *Core) PlaceBid(ctx context.Context, posse string, coin ledger.Coin) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	round, err := c.loadRound()
	if err != nil {
		return err
	}

	bid := Bid{
		Digest: coin.Digest,
		Value:  coin.Value,
	}
	if err := round.placeBid(posse, bid); err != nil {
		return err
	}

	if err := c.saveRound(round); err != nil {
		return err
	}

	if c.evts != nil {
		c.evts.Send(events.KindBid, "coin %s bid toward %s for %d points", coin.Digest, posse, coin.Value)
	}

	return nil
}

// Settle completes the current round: the leading posse is awarded the
// round's points, every coin pledged toward it is debited, and the round
// stops accepting bids. The award and its debits commit as one relational
// transaction; if that transaction fails nothing is written and the round
// stays open.
func (c *Core) Settle(ctx context.Context) (Settlement, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	round, err := c.loadRound()
	if err != nil {
		return Settlement{}, err
	}

	if !round.Active() {
		return Settlement{}, ErrRoundClosed
	}

	leader, err := round.leader()
	if err != nil {
		return Settlement{}, err
	}

	bids := round.PosseBids(leader)
	digests := make([]string, len(bids))
	for i, bid := range bids {
		digests[i] = bid.Digest
	}

	award := ledger.PosseAward{
		Value:     round.Points(),
		Posse:     leader,
		CreatedAt: time.Now().UTC(),
	}
	award, err = c.ledger.CreateSettlement(ctx, award, digests)
	if err != nil {
		return Settlement{}, fmt.Errorf("recording settlement: %w", err)
	}

	round.close()
	if err := c.saveRound(round); err != nil {

		// The award and debits are committed but the closed round could
		// not be persisted, so the slot still holds an open round whose
		// winning coins are spent. This is a data integrity problem, not
		// a bad request, and is logged as such.
		c.log.Errorw("settlement recorded but round not closed", "award", award.ID, "posse", leader, "ERROR", err)
		return Settlement{}, fmt.Errorf("persisting closed round: %w", err)
	}

	c.log.Infow("auction settled", "posse", leader, "points", award.Value, "debits", len(digests))
	if c.evts != nil {
		c.evts.Send(events.KindSettlement, "%s wins %d points, %d coins spent", leader, award.Value, len(digests))
	}

	return Settlement{Award: award, Bids: bids}, nil
}

// OpenRound clears the round slot so the next read begins a fresh round.
// A settled round otherwise remains the current auction indefinitely.
func (c *Core) OpenRound() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.keys.Delete(RoundKey); err != nil {
		return fmt.Errorf("clearing round slot: %w", err)
	}

	c.log.Infow("auction round opened", "points", DefaultPoints)
	return nil
}

// =============================================================================

// loadRound reads the current round from its slot. The caller must hold
// the lock.
func (c *Core) loadRound() (*Round, error) {
	data, err := c.keys.Get(RoundKey)
	if err != nil {
		if errors.Is(err, keystore.ErrNotFound) {
			return NewRound(), nil
		}
		return nil, fmt.Errorf("reading round slot: %w", err)
	}

	var round Round
	if err := json.Unmarshal(data, &round); err != nil {
		return nil, fmt.Errorf("decoding round: %w", err)
	}

	return &round, nil
}

// saveRound writes the round back to its slot. The caller must hold
// the lock.
func (c *Core) saveRound(round *Round) error {
	data, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("encoding round: %w", err)
	}

	if err := c.keys.Set(RoundKey, data); err != nil {
		return fmt.Errorf("writing round slot: %w", err)
	}

	return nil
}
