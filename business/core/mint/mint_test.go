package mint_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gitcoinhq/gitcoin/business/core/mint"
	"github.com/gitcoinhq/gitcoin/business/data/keystore"
	"github.com/gitcoinhq/gitcoin/business/data/ledger"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// SHA-1 digests of the fixed messages the tests submit.
const (
	msgHello    = "hello world"
	digestHello = "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"

	msgSerrano    = "serrano"
	digestSerrano = "01fd7f6b914a6b54e47d526120ab4b60330ab7a1"

	msgJalapeno = "jalapeno"
)

func newTestCore(t *testing.T) *mint.Core {
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

	core, err := mint.NewCore(mint.Config{
		Log:      log,
		Ledger:   ldgr,
		KeyStore: keys,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the engine: %v", failed, err)
	}

	return core
}

func TestValue(t *testing.T) {
	type table struct {
		digest string
		value  int
	}

	tt := []table{
		{"2aae6c35c94fcfb415dbe95f408b9ce91ee846ed", 1},
		{"0aae6c35c94fcfb415dbe95f408b9ce91ee846ed", 1},
		{"0000ffffffffffffffffffffffffffffffffffff", 1},
		{"00000fffffffffffffffffffffffffffffffffff", 15},
		{"000000ffffffffffffffffffffffffffffffffff", 15},
		{"0000000fffffffffffffffffffffffffffffffff", 50},
		{strings.Repeat("0", 40), 50},
	}

	t.Log("Given the need to value coins by leading zero digits.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen valuing digest %s.", testID, tst.digest)
			{
				if got := mint.Value(tst.digest); got != tst.value {
					t.Fatalf("\t%s\tTest %d:\tShould get value %d, got %d.", failed, testID, tst.value, got)
				}
				t.Logf("\t%s\tTest %d:\tShould get value %d.", success, testID, tst.value)
			}
		}
	}
}

func TestNextTarget(t *testing.T) {
	t.Log("Given the need to advance the target after a successful mine.")
	{
		t.Log("\tTest 0:\tWhen the digest is above the reset threshold.")
		{
			next, err := mint.NextTarget(digestHello)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to compute the next target: %v", failed, err)
			}
			if next != digestHello {
				t.Fatalf("\t%s\tTest 0:\tShould adopt the digest as the next target, got %s.", failed, next)
			}
			t.Logf("\t%s\tTest 0:\tShould adopt the digest as the next target.", success)
		}

		t.Log("\tTest 1:\tWhen the digest is below the reset threshold.")
		{
			digest := "0000000" + "0" + strings.Repeat("f", 32)
			next, err := mint.NextTarget(digest)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to compute the next target: %v", failed, err)
			}
			if next != mint.MaxTarget {
				t.Fatalf("\t%s\tTest 1:\tShould reset the target to the maximum, got %s.", failed, next)
			}
			t.Logf("\t%s\tTest 1:\tShould reset the target to the maximum.", success)
		}

		t.Log("\tTest 2:\tWhen the digest equals the reset threshold exactly.")
		{
			digest := "0000000" + strings.Repeat("f", 33)
			next, err := mint.NextTarget(digest)
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to compute the next target: %v", failed, err)
			}
			if next != digest {
				t.Fatalf("\t%s\tTest 2:\tShould adopt the digest, not reset, got %s.", failed, next)
			}
			t.Logf("\t%s\tTest 2:\tShould adopt the digest, not reset.", success)
		}
	}
}

func TestSubmit(t *testing.T) {
	core := newTestCore(t)
	ctx := context.Background()

	t.Log("Given the need to mine coins against a shared target.")
	{
		t.Log("\tTest 0:\tWhen submitting the first message.")
		{
			coin, err := core.Submit(ctx, msgHello, "alice")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to mine against the maximum target: %v", failed, err)
			}
			if coin.Digest != digestHello {
				t.Fatalf("\t%s\tTest 0:\tShould get digest %s, got %s.", failed, digestHello, coin.Digest)
			}
			if coin.Value != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould get value 1, got %d.", failed, coin.Value)
			}
			if coin.Parent != mint.MaxTarget {
				t.Fatalf("\t%s\tTest 0:\tShould record the maximum target as parent, got %s.", failed, coin.Parent)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to mine against the maximum target.", success)

			target, err := core.CurrentTarget()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to read the target: %v", failed, err)
			}
			if target != digestHello {
				t.Fatalf("\t%s\tTest 0:\tShould advance the target to the digest, got %s.", failed, target)
			}
			t.Logf("\t%s\tTest 0:\tShould advance the target to the digest.", success)
		}

		t.Log("\tTest 1:\tWhen submitting a message whose digest is above the target.")
		{
			if _, err := core.Submit(ctx, msgJalapeno, "bob"); !errors.Is(err, mint.ErrNotBelowTarget) {
				t.Fatalf("\t%s\tTest 1:\tShould get ErrNotBelowTarget, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get ErrNotBelowTarget.", success)

			target, err := core.CurrentTarget()
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to read the target: %v", failed, err)
			}
			if target != digestHello {
				t.Fatalf("\t%s\tTest 1:\tShould leave the target unchanged, got %s.", failed, target)
			}
			t.Logf("\t%s\tTest 1:\tShould leave the target unchanged.", success)
		}

		t.Log("\tTest 2:\tWhen submitting a message whose digest is below the target.")
		{
			coin, err := core.Submit(ctx, msgSerrano, "bob")
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to mine: %v", failed, err)
			}
			if coin.Parent != digestHello {
				t.Fatalf("\t%s\tTest 2:\tShould record the previous target as parent, got %s.", failed, coin.Parent)
			}
			t.Logf("\t%s\tTest 2:\tShould be able to mine.", success)

			target, err := core.CurrentTarget()
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to read the target: %v", failed, err)
			}
			if target != digestSerrano {
				t.Fatalf("\t%s\tTest 2:\tShould advance the target to the new digest, got %s.", failed, target)
			}
			t.Logf("\t%s\tTest 2:\tShould advance the target to the new digest.", success)
		}

		t.Log("\tTest 3:\tWhen re-submitting an already mined message.")
		{
			if _, err := core.Submit(ctx, msgHello, "carol"); !errors.Is(err, mint.ErrDuplicateMessage) {
				t.Fatalf("\t%s\tTest 3:\tShould get ErrDuplicateMessage, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould get ErrDuplicateMessage.", success)
		}

		t.Log("\tTest 4:\tWhen resetting the target.")
		{
			if err := core.Reset(); err != nil {
				t.Fatalf("\t%s\tTest 4:\tShould be able to reset the target: %v", failed, err)
			}

			target, err := core.CurrentTarget()
			if err != nil {
				t.Fatalf("\t%s\tTest 4:\tShould be able to read the target: %v", failed, err)
			}
			if target != mint.MaxTarget {
				t.Fatalf("\t%s\tTest 4:\tShould get the maximum target, got %s.", failed, target)
			}
			t.Logf("\t%s\tTest 4:\tShould get the maximum target.", success)
		}
	}
}
