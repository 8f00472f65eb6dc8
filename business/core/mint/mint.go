// Package mint implements the mining engine. A submitted message yields a
// coin when its digest is numerically below the shared target, and every
// successful mine advances the target.
package mint

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/gitcoinhq/gitcoin/business/data/keystore"
	"github.com/gitcoinhq/gitcoin/business/data/ledger"
	"github.com/gitcoinhq/gitcoin/foundation/events"
	"go.uber.org/zap"
)

// TargetKey is the key-value slot holding the current mining target.
const TargetKey = "gitcoin:current_target"

// MaxTarget is the ceiling the target is initialized to and reset to
// after an overshoot.
var MaxTarget = strings.Repeat("F", 40)

// resetThreshold marks a digest so small that adopting it as the next
// target would make the puzzle effectively unsolvable. Mining a digest
// below it re-opens the game at the maximum target instead.
var resetThreshold = mustHexValue("0000000" + strings.Repeat("F", 33))

// Set of error variables for expected mining rejections. These are normal
// negative outcomes, not faults.
var (
	ErrDuplicateMessage = errors.New("message has already been mined")
	ErrNotBelowTarget   = errors.New("digest is not below the current target")
)

// Config represents the mandatory systems required by the mining engine.
type Config struct {
	Log      *zap.SugaredLogger
	Ledger   *ledger.Ledger
	KeyStore *keystore.KeyStore
	Evts     *events.Events
}

// Core manages the mining state machine: coin validity, coin value and
// the shared target.
type Core struct {
	log    *zap.SugaredLogger
	ledger *ledger.Ledger
	keys   *keystore.KeyStore
	evts   *events.Events
	mu     sync.Mutex
}

// NewCore constructs a mining engine, initializing the target slot to the
// maximum value if it has never been written.
func NewCore(cfg Config) (*Core, error) {
	c := Core{
		log:    cfg.Log,
		ledger: cfg.Ledger,
		keys:   cfg.KeyStore,
		evts:   cfg.Evts,
	}

	if _, err := c.keys.Get(TargetKey); err != nil {
		if !errors.Is(err, keystore.ErrNotFound) {
			return nil, fmt.Errorf("reading target slot: %w", err)
		}
		if err := c.keys.Set(TargetKey, []byte(MaxTarget)); err != nil {
			return nil, fmt.Errorf("initializing target slot: %w", err)
		}
	}

	return &c, nil
}

// CurrentTarget returns the target a submission's digest must be
// numerically below to mine a coin.
func (c *Core) CurrentTarget() (string, error) {
	value, err := c.keys.Get(TargetKey)
	if err != nil {
		return "", fmt.Errorf("reading target slot: %w", err)
	}
	return string(value), nil
}

// Submit runs one mining attempt for the specified message. On success a
// coin is recorded for the owner and the target advances. Rejections are
// reported through ErrDuplicateMessage and ErrNotBelowTarget.
//
// The whole read-target, validate, append-coin, write-target sequence runs
// under a single exclusive lock so at most one submission is in flight
// process-wide. Two submissions racing the same stale target could
// otherwise both mine while only one target advance survives.
func (c *Core) Submit(ctx context.Context, message string, owner string) (ledger.Coin, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	target, err := c.CurrentTarget()
	if err != nil {
		return ledger.Coin{}, err
	}
	targetValue, err := hexValue(target)
	if err != nil {
		return ledger.Coin{}, fmt.Errorf("corrupt target slot: %w", err)
	}

	// Re-mining a message that already produced a coin is rejected no
	// matter what the target is.
	if _, err := c.ledger.QueryCoinByMessage(ctx, message); err == nil {
		return ledger.Coin{}, ErrDuplicateMessage
	} else if !errors.Is(err, ledger.ErrNotFound) {
		return ledger.Coin{}, fmt.Errorf("checking message uniqueness: %w", err)
	}

	digest := hashMessage(message)
	digestValue, err := hexValue(digest)
	if err != nil {
		return ledger.Coin{}, fmt.Errorf("hashing message: %w", err)
	}

	if digestValue.Cmp(targetValue) >= 0 {
		return ledger.Coin{}, ErrNotBelowTarget
	}

	coin := ledger.Coin{
		Digest:    digest,
		Message:   message,
		Owner:     owner,
		Value:     Value(digest),
		Parent:    target,
		CreatedAt: time.Now().UTC(),
	}

	if err := c.ledger.CreateCoin(ctx, coin); err != nil {
		if errors.Is(err, ledger.ErrDuplicate) {
			return ledger.Coin{}, ErrDuplicateMessage
		}
		return ledger.Coin{}, fmt.Errorf("recording coin: %w", err)
	}

	if err := c.advanceTarget(digest); err != nil {
		return ledger.Coin{}, err
	}

	c.log.Infow("assigned coin", "digest", coin.Digest, "owner", coin.Owner, "value", coin.Value)
	if c.evts != nil {
		c.evts.Send(events.KindMined, "coin %s mined by %s for %d points", coin.Digest, coin.Owner, coin.Value)
	}

	return coin, nil
}

// Reset overwrites the target with the maximum value, re-opening the game.
func (c *Core) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.keys.Set(TargetKey, []byte(MaxTarget)); err != nil {
		return fmt.Errorf("writing target slot: %w", err)
	}

	c.log.Infow("reset the coins", "target", MaxTarget)
	if c.evts != nil {
		c.evts.Send(events.KindReset, "target reset to %s", MaxTarget)
	}

	return nil
}

// =============================================================================

// NextTarget applies the target-update rule to a freshly mined digest:
// the digest becomes the next target, unless it overshot below the reset
// threshold, in which case the target snaps back to the maximum.
func NextTarget(digest string) (string, error) {
	digestValue, err := hexValue(digest)
	if err != nil {
		return "", err
	}

	if digestValue.Cmp(resetThreshold) < 0 {
		return MaxTarget, nil
	}

	return digest, nil
}

// advanceTarget writes the next target for the freshly mined digest.
func (c *Core) advanceTarget(digest string) error {
	next, err := NextTarget(digest)
	if err != nil {
		return err
	}

	if next != digest {
		c.log.Infow("coin below threshold, resetting target", "digest", digest, "target", MaxTarget)
		if c.evts != nil {
			c.evts.Send(events.KindReset, "coin %s was below threshold, target reset", digest)
		}
	}

	if err := c.keys.Set(TargetKey, []byte(next)); err != nil {
		return fmt.Errorf("writing target slot: %w", err)
	}

	return nil
}

// hashMessage produces the hex encoded SHA-1 digest of the message. The
// digest choice is load-bearing: stored digests are compared as hex
// integers, so it must never change for a live ledger.
func hashMessage(message string) string {
	digest := sha1.Sum([]byte(message))
	return hex.EncodeToString(digest[:])
}

// hexValue interprets a hex string as a large unsigned integer.
func hexValue(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("value %q is not valid hex", s)
	}
	return v, nil
}

func mustHexValue(s string) *big.Int {
	v, err := hexValue(s)
	if err != nil {
		panic(err)
	}
	return v
}
