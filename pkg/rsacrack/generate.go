package rsacrack

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/pkg/errors"

	"github.com/ctfkit/rsacrack/pkg/rsamath"
)

// Weak-key generators for benchmarks, examples and tests. Each returns keys
// that the correspondingly named attack is expected to break.

// GenerateCloseFactors returns a key whose primes share their upper half, so
// |p - q| is small and a few Fermat rounds factor the modulus.
func GenerateCloseFactors(rng io.Reader, bits int) (*PrivateKey, error) {
	if bits < 64 {
		return nil, errors.Errorf("rsacrack: modulus too small (%d bits)", bits)
	}
	half := bits / 2
	for {
		p, err := rand.Prime(rng, half)
		if err != nil {
			return nil, errors.Wrap(err, "rsacrack: generating prime")
		}
		// Next prime above p: q = p + small even offset.
		q := new(big.Int).Set(p)
		two := big.NewInt(2)
		for {
			q.Add(q, two)
			if q.ProbablyPrime(20) {
				break
			}
		}
		n := new(big.Int).Mul(p, q)
		e := big.NewInt(65537)
		priv, err := PrivateKeyFromFactors(p, q, e, n)
		if err == nil {
			return priv, nil
		}
	}
}

// GenerateSmallD returns a key with a secret exponent of dBits bits, far
// below the safe range. Keys with d < n^0.25/3 fall to the continued-fraction
// attack; larger (but still small) d falls to the lattice attack.
func GenerateSmallD(rng io.Reader, bits, dBits int) (*PrivateKey, error) {
	if bits < 64 || dBits < 8 || dBits >= bits {
		return nil, errors.Errorf("rsacrack: bad sizes (n=%d bits, d=%d bits)", bits, dBits)
	}
	for {
		p, err := rand.Prime(rng, bits/2)
		if err != nil {
			return nil, errors.Wrap(err, "rsacrack: generating prime")
		}
		q, err := rand.Prime(rng, bits/2)
		if err != nil {
			return nil, errors.Wrap(err, "rsacrack: generating prime")
		}
		if p.Cmp(q) == 0 {
			continue
		}
		n := new(big.Int).Mul(p, q)

		// e*d = 1 mod phi(n), the relation the small-d attacks assume.
		phi := new(big.Int).Sub(p, one)
		phi.Mul(phi, new(big.Int).Sub(q, one))

		d, err := rand.Prime(rng, dBits)
		if err != nil {
			return nil, errors.Wrap(err, "rsacrack: generating exponent")
		}
		e, err := rsamath.ModInverse(d, phi)
		if err != nil {
			continue
		}
		return &PrivateKey{
			N: n,
			E: e,
			D: d,
			P: p,
			Q: q,
		}, nil
	}
}

// GenerateBroadcast encrypts msg under count fresh moduli with the shared
// exponent e, returning the keys and ciphertexts for a Hastad run. msg^e must
// be shorter than the product of the moduli, which holds whenever count >= e
// and msg fits one modulus.
func GenerateBroadcast(rng io.Reader, bits int, e int64, count int, msg []byte) ([]*PublicKey, []Ciphertext, error) {
	if count < 2 {
		return nil, nil, errors.Errorf("rsacrack: broadcast needs at least 2 recipients, got %d", count)
	}
	eBig := big.NewInt(e)
	m := new(big.Int).SetBytes(msg)

	keys := make([]*PublicKey, 0, count)
	cts := make([]Ciphertext, 0, count)
	for len(keys) < count {
		p, err := rand.Prime(rng, bits/2)
		if err != nil {
			return nil, nil, errors.Wrap(err, "rsacrack: generating prime")
		}
		q, err := rand.Prime(rng, bits/2)
		if err != nil {
			return nil, nil, errors.Wrap(err, "rsacrack: generating prime")
		}
		if p.Cmp(q) == 0 {
			continue
		}
		// e must be invertible mod lambda for the key to be a valid target.
		pm1 := new(big.Int).Sub(p, one)
		qm1 := new(big.Int).Sub(q, one)
		if new(big.Int).GCD(nil, nil, eBig, pm1).Cmp(one) != 0 ||
			new(big.Int).GCD(nil, nil, eBig, qm1).Cmp(one) != 0 {
			continue
		}
		n := new(big.Int).Mul(p, q)
		if m.Cmp(n) >= 0 {
			return nil, nil, errors.New("rsacrack: message does not fit the modulus")
		}
		key, err := NewPublicKey(n, eBig)
		if err != nil {
			return nil, nil, err
		}
		c := new(big.Int).Exp(m, eBig, n)
		keys = append(keys, key)
		cts = append(cts, Ciphertext(c.Bytes()))
	}
	return keys, cts, nil
}

// GenerateSharedPrime returns two keys whose moduli share one prime, the
// batch-GCD failure mode.
func GenerateSharedPrime(rng io.Reader, bits int) (*PublicKey, *PublicKey, error) {
	e := big.NewInt(65537)
	coprime := func(p *big.Int) bool {
		pm1 := new(big.Int).Sub(p, one)
		return new(big.Int).GCD(nil, nil, e, pm1).Cmp(one) == 0
	}
	var shared *big.Int
	for {
		p, err := rand.Prime(rng, bits/2)
		if err != nil {
			return nil, nil, errors.Wrap(err, "rsacrack: generating prime")
		}
		if coprime(p) {
			shared = p
			break
		}
	}
	var keys []*PublicKey
	for len(keys) < 2 {
		q, err := rand.Prime(rng, bits/2)
		if err != nil {
			return nil, nil, errors.Wrap(err, "rsacrack: generating prime")
		}
		if q.Cmp(shared) == 0 || !coprime(q) {
			continue
		}
		key, err := NewPublicKey(new(big.Int).Mul(shared, q), e)
		if err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
	}
	return keys[0], keys[1], nil
}
