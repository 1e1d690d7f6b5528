package rsacrack

import (
	"context"
	"math/big"
	"testing"

	"github.com/pkg/errors"
)

func TestBonehDurfee_SmallExponent(t *testing.T) {
	if testing.Short() {
		t.Skip("lattice reduction is slow")
	}
	attack := NewBonehDurfee()
	key := mustKey(t, bdN, bdE)

	res, err := attack.Attempt(context.Background(), &Target{Keys: []*PublicKey{key}})
	if err != nil {
		t.Fatalf("attempt failed: %v", err)
	}
	if res.Empty() {
		t.Fatal("expected the lattice attack to succeed")
	}
	if res.PrivateKey.D.Cmp(mustInt(t, bdD)) != 0 {
		t.Errorf("wrong exponent: got %s want %s", res.PrivateKey.D, bdD)
	}
	checkFactors(t, res.PrivateKey, mustInt(t, bdP), mustInt(t, bdQ))
}

func TestBonehDurfee_StrictBound(t *testing.T) {
	// delta = 0.45 is far beyond what m = 4 can support; the determinant
	// check fails deterministically for this key.
	attack := NewBonehDurfee().WithDelta(9, 20).WithStrict(true)
	key := mustKey(t, bdN, bdE)

	_, err := attack.Attempt(context.Background(), &Target{Keys: []*PublicKey{key}})
	if !errors.Is(err, ErrBoundExceeded) {
		t.Fatalf("expected ErrBoundExceeded, got %v", err)
	}
}

func TestBonehDurfee_LenientBoundContinues(t *testing.T) {
	if testing.Short() {
		t.Skip("lattice reduction is slow")
	}
	// Same parameters without strict mode: the bound failure is only
	// logged and the attempt runs to completion (finding nothing).
	attack := NewBonehDurfee().WithDelta(9, 20)
	key := mustKey(t, bdN, bdE)

	var logged bool
	target := &Target{
		Keys: []*PublicKey{key},
		Log:  logFunc(func(string, ...interface{}) { logged = true }),
	}
	res, err := attack.Attempt(context.Background(), target)
	if err != nil {
		t.Fatalf("attempt failed: %v", err)
	}
	_ = res
	if !logged {
		t.Error("expected a diagnostic about the failed bound")
	}
}

func TestBonehDurfee_OversizedModulus(t *testing.T) {
	n := new(big.Int).Lsh(big.NewInt(1), 8200)
	n.Add(n, big.NewInt(1))
	key := mustKey(t, n.String(), "65537")

	_, err := NewBonehDurfee().Attempt(context.Background(), &Target{Keys: []*PublicKey{key}})
	if !errors.Is(err, ErrUnsupportedSize) {
		t.Fatalf("expected ErrUnsupportedSize, got %v", err)
	}
}

func TestBonehDurfee_SmallPublicExponentSkipped(t *testing.T) {
	// e = 65537 cannot pair with a small d; the attack must bail out
	// before doing any lattice work.
	key := mustKey(t, bdN, "65537")

	res, err := NewBonehDurfee().Attempt(context.Background(), &Target{Keys: []*PublicKey{key}})
	if err != nil {
		t.Fatalf("attempt failed: %v", err)
	}
	if !res.Empty() {
		t.Fatal("no result expected for a small public exponent")
	}
}

// logFunc adapts a function to the Logger interface.
type logFunc func(format string, args ...interface{})

func (f logFunc) Printf(format string, args ...interface{}) { f(format, args...) }
