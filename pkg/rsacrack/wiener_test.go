package rsacrack

import (
	"context"
	"testing"
)

func TestWiener_SmallExponent(t *testing.T) {
	attack := NewWiener()
	key := mustKey(t, wienerN, wienerE)

	res, err := attack.Attempt(context.Background(), &Target{Keys: []*PublicKey{key}})
	if err != nil {
		t.Fatalf("attempt failed: %v", err)
	}
	if res.Empty() {
		t.Fatal("expected the continued-fraction attack to succeed")
	}
	if res.PrivateKey.D.Cmp(mustInt(t, wienerD)) != 0 {
		t.Errorf("wrong exponent: got %s want %s", res.PrivateKey.D, wienerD)
	}
	checkFactors(t, res.PrivateKey, mustInt(t, wienerP), mustInt(t, wienerQ))
}

func TestWiener_StrongKeyResists(t *testing.T) {
	// A standard e = 65537 key has a huge d; no convergent matches.
	key := mustKey(t, bdN, "65537")

	res, err := NewWiener().Attempt(context.Background(), &Target{Keys: []*PublicKey{key}})
	if err != nil {
		t.Fatalf("attempt failed: %v", err)
	}
	if !res.Empty() {
		t.Fatal("strong key must not be broken")
	}
}

func TestWiener_Cancellation(t *testing.T) {
	key := mustKey(t, bdN, bdE)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewWiener().Attempt(ctx, &Target{Keys: []*PublicKey{key}})
	if err != nil {
		t.Fatalf("attempt failed: %v", err)
	}
	if !res.Empty() {
		t.Fatal("cancelled attempt must not produce a result")
	}
}
