package rsacrack

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
)

func TestNewPublicKey_Validation(t *testing.T) {
	if _, err := NewPublicKey(big.NewInt(1), big.NewInt(3)); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("n = 1: expected ErrInvalidKey, got %v", err)
	}
	if _, err := NewPublicKey(big.NewInt(15), big.NewInt(1)); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("e = 1: expected ErrInvalidKey, got %v", err)
	}
	if _, err := NewPublicKey(nil, big.NewInt(3)); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("nil n: expected ErrInvalidKey, got %v", err)
	}
	key, err := NewPublicKey(big.NewInt(15), big.NewInt(3))
	if err != nil {
		t.Fatalf("valid key rejected: %v", err)
	}
	if key.N.Cmp(big.NewInt(15)) != 0 {
		t.Error("modulus not copied")
	}
}

func TestNewPublicKey_CopiesInputs(t *testing.T) {
	n := big.NewInt(15)
	key, err := NewPublicKey(n, big.NewInt(3))
	if err != nil {
		t.Fatal(err)
	}
	n.SetInt64(99)
	if key.N.Cmp(big.NewInt(15)) != 0 {
		t.Error("key shares storage with the caller's input")
	}
}

func TestPrivateKeyFromFactors_WrongProduct(t *testing.T) {
	_, err := PrivateKeyFromFactors(big.NewInt(3), big.NewInt(5), big.NewInt(7), big.NewInt(16))
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestPrivateKeyFromFactors_DerivesExponent(t *testing.T) {
	p := mustInt(t, wienerP)
	q := mustInt(t, wienerQ)
	n := mustInt(t, wienerN)
	e := mustInt(t, wienerE)

	priv, err := PrivateKeyFromFactors(p, q, e, n)
	if err != nil {
		t.Fatalf("building key: %v", err)
	}
	if priv.D.Cmp(mustInt(t, wienerD)) != 0 {
		t.Errorf("wrong derived exponent: got %s", priv.D)
	}
}

func TestPrivateKeyFromExponent_RecoversFactors(t *testing.T) {
	n := mustInt(t, wienerN)
	e := mustInt(t, wienerE)
	d := mustInt(t, wienerD)

	priv, err := PrivateKeyFromExponent(n, e, d)
	if err != nil {
		t.Fatalf("building key: %v", err)
	}
	checkFactors(t, priv, mustInt(t, wienerP), mustInt(t, wienerQ))
}

func TestNewPrivateKey_Dispatch(t *testing.T) {
	n := mustInt(t, wienerN)
	e := mustInt(t, wienerE)
	d := mustInt(t, wienerD)
	p := mustInt(t, wienerP)
	q := mustInt(t, wienerQ)

	byFactors, err := NewPrivateKey(n, e, nil, p, q)
	if err != nil {
		t.Fatalf("factors path: %v", err)
	}
	if byFactors.D.Cmp(d) != 0 {
		t.Error("factors path derived the wrong exponent")
	}

	byExponent, err := NewPrivateKey(n, e, d, nil, nil)
	if err != nil {
		t.Fatalf("exponent path: %v", err)
	}
	if byExponent.P == nil || byExponent.Q == nil {
		t.Error("exponent path did not recover the factors")
	}

	if _, err := NewPrivateKey(n, e, nil, nil, nil); !errors.Is(err, ErrIncompleteKey) {
		t.Errorf("expected ErrIncompleteKey, got %v", err)
	}
}

func TestDecryptRoundTrip(t *testing.T) {
	priv, err := NewPrivateKey(mustInt(t, wienerN), mustInt(t, wienerE), mustInt(t, wienerD), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("lattice")
	c := new(big.Int).Exp(new(big.Int).SetBytes(msg), priv.E, priv.N)

	got := priv.Decrypt(Ciphertext(c.Bytes()))
	if string(got) != string(msg) {
		t.Errorf("round trip failed: %q", got)
	}
}

func TestResultEmpty(t *testing.T) {
	var nilRes *Result
	if !nilRes.Empty() {
		t.Error("nil result should be empty")
	}
	if !(&Result{}).Empty() {
		t.Error("zero result should be empty")
	}
	if (&Result{Plaintext: []byte("x")}).Empty() {
		t.Error("plaintext result should not be empty")
	}
}
