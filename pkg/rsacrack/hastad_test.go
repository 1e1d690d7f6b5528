package rsacrack

import (
	"context"
	"crypto/rand"
	"testing"
)

func TestHastad_Broadcast(t *testing.T) {
	attack := NewHastad()

	var keys []*PublicKey
	var cts []Ciphertext
	for _, n := range hastadModuli {
		keys = append(keys, mustKey(t, n, "3"))
		cts = append(cts, Ciphertext(mustInt(t, hastadCipher).Bytes()))
	}

	res, err := attack.Attempt(context.Background(), &Target{Keys: keys, Ciphertexts: cts})
	if err != nil {
		t.Fatalf("attempt failed: %v", err)
	}
	if res.Empty() {
		t.Fatal("expected a recovered plaintext")
	}
	if string(res.Plaintext) != "hi" {
		t.Errorf("wrong plaintext: %q", res.Plaintext)
	}
}

func TestHastad_GeneratedBroadcast(t *testing.T) {
	msg := []byte("attack at dawn")
	keys, cts, err := GenerateBroadcast(rand.Reader, 256, 3, 3, msg)
	if err != nil {
		t.Fatalf("generating broadcast: %v", err)
	}

	res, err := NewHastad().Attempt(context.Background(), &Target{Keys: keys, Ciphertexts: cts})
	if err != nil {
		t.Fatalf("attempt failed: %v", err)
	}
	if res.Empty() {
		t.Fatal("expected a recovered plaintext")
	}
	if string(res.Plaintext) != string(msg) {
		t.Errorf("wrong plaintext: %q", res.Plaintext)
	}
}

func TestHastad_FewerPairsThanExponent(t *testing.T) {
	// Two ciphertexts with e = 3: the message is short, so m^3 still fits
	// below n1*n2 and the combination recovers it.
	keys := []*PublicKey{
		mustKey(t, hastadModuli[0], "3"),
		mustKey(t, hastadModuli[1], "3"),
	}
	cts := []Ciphertext{
		Ciphertext(mustInt(t, hastadCipher).Bytes()),
		Ciphertext(mustInt(t, hastadCipher).Bytes()),
	}

	res, err := NewHastad().Attempt(context.Background(), &Target{Keys: keys, Ciphertexts: cts})
	if err != nil {
		t.Fatalf("attempt failed: %v", err)
	}
	if res.Empty() {
		t.Fatal("expected a recovered plaintext from two pairs")
	}
	if string(res.Plaintext) != "hi" {
		t.Errorf("wrong plaintext: %q", res.Plaintext)
	}
}

func TestHastad_FiltersLargeExponents(t *testing.T) {
	// A key outside the small-exponent range is skipped, not a reason to
	// abandon the usable pairs.
	keys := []*PublicKey{
		mustKey(t, hastadModuli[0], "3"),
		mustKey(t, hastadModuli[1], "65537"),
		mustKey(t, hastadModuli[2], "3"),
	}
	cts := []Ciphertext{
		Ciphertext(mustInt(t, hastadCipher).Bytes()),
		Ciphertext(mustInt(t, hastadCipher).Bytes()),
		Ciphertext(mustInt(t, hastadCipher).Bytes()),
	}

	res, err := NewHastad().Attempt(context.Background(), &Target{Keys: keys, Ciphertexts: cts})
	if err != nil {
		t.Fatalf("attempt failed: %v", err)
	}
	if res.Empty() {
		t.Fatal("expected a recovered plaintext from the small-exponent pairs")
	}
	if string(res.Plaintext) != "hi" {
		t.Errorf("wrong plaintext: %q", res.Plaintext)
	}
}

func TestHastad_MixedExponents(t *testing.T) {
	keys := []*PublicKey{
		mustKey(t, hastadModuli[0], "3"),
		mustKey(t, hastadModuli[1], "5"),
	}
	cts := []Ciphertext{
		Ciphertext(mustInt(t, hastadCipher).Bytes()),
		Ciphertext(mustInt(t, hastadCipher).Bytes()),
	}

	res, err := NewHastad().Attempt(context.Background(), &Target{Keys: keys, Ciphertexts: cts})
	if err != nil {
		t.Fatalf("attempt failed: %v", err)
	}
	if !res.Empty() {
		t.Fatal("mixed exponents must not produce a result")
	}
}

func TestHastad_LargeExponentSkipped(t *testing.T) {
	keys := []*PublicKey{
		mustKey(t, hastadModuli[0], "65537"),
		mustKey(t, hastadModuli[1], "65537"),
	}
	cts := []Ciphertext{
		Ciphertext(mustInt(t, hastadCipher).Bytes()),
		Ciphertext(mustInt(t, hastadCipher).Bytes()),
	}

	res, err := NewHastad().Attempt(context.Background(), &Target{Keys: keys, Ciphertexts: cts})
	if err != nil {
		t.Fatalf("attempt failed: %v", err)
	}
	if !res.Empty() {
		t.Fatal("e = 65537 is out of range for the broadcast attack")
	}
}

func TestHastad_TooFewCiphertexts(t *testing.T) {
	keys := []*PublicKey{mustKey(t, hastadModuli[0], "3")}
	cts := []Ciphertext{Ciphertext(mustInt(t, hastadCipher).Bytes())}

	res, err := NewHastad().Attempt(context.Background(), &Target{Keys: keys, Ciphertexts: cts})
	if err != nil {
		t.Fatalf("attempt failed: %v", err)
	}
	if !res.Empty() {
		t.Fatal("a single ciphertext must not produce a result")
	}
}
