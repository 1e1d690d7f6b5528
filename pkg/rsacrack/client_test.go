package rsacrack

import (
	"context"
	"testing"
)

func TestClient_RecoverSharedPrime(t *testing.T) {
	client := NewClient().WithAttacks(NewCommonFactor(), NewFermat())

	keys := []*PublicKey{
		mustKey(t, sharedN1, "65537"),
		mustKey(t, sharedN2, "65537"),
	}
	res, err := client.Recover(context.Background(), keys, nil)
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	if res.Attack != "commonfactor" {
		t.Errorf("unexpected winning attack %q", res.Attack)
	}
	checkFactors(t, res.PrivateKey, mustInt(t, sharedPrime), mustInt(t, sharedQ1))
}

func TestClient_RecoverBroadcast(t *testing.T) {
	var keys []*PublicKey
	var cts []Ciphertext
	for _, n := range hastadModuli {
		keys = append(keys, mustKey(t, n, "3"))
		cts = append(cts, Ciphertext(mustInt(t, hastadCipher).Bytes()))
	}

	res, err := NewClient().WithAttacks(NewHastad()).Recover(context.Background(), keys, cts)
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	if string(res.Plaintext) != "hi" {
		t.Errorf("wrong plaintext %q", res.Plaintext)
	}
}

func TestClient_NoAttackSucceeds(t *testing.T) {
	client := NewClient().WithAttacks(NewFermat().WithRounds(10))

	_, err := client.RecoverKey(context.Background(), mustKey(t, wienerN, "65537"))
	if err == nil {
		t.Fatal("expected an error when nothing succeeds")
	}
}

func TestClient_DefaultBattery(t *testing.T) {
	// The default battery must break a Wiener-weak key without the caller
	// choosing attacks; the continued fractions finish first and cancel
	// the rest.
	res, err := NewClient().Recover(context.Background(), []*PublicKey{mustKey(t, wienerN, wienerE)}, nil)
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}
	if res.PrivateKey == nil || res.PrivateKey.D.Cmp(mustInt(t, wienerD)) != 0 {
		t.Fatal("default battery failed on a weak key")
	}
}
