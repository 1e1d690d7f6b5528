package rsacrack

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/ctfkit/rsacrack/pkg/rsamath"
)

var (
	// ErrInvalidKey marks malformed key material; it is raised during
	// construction, before any attack runs.
	ErrInvalidKey = errors.New("rsacrack: invalid key")

	// ErrIncompleteKey is returned when a private key is requested from
	// material that contains neither both primes nor the private exponent.
	ErrIncompleteKey = errors.New("rsacrack: incomplete private key material")

	// ErrBoundExceeded signals that a lattice attack's determinant exceeded
	// its theoretical bound while running in strict mode. Distinguishable
	// from an ordinary miss so callers can retune the lattice parameters.
	ErrBoundExceeded = errors.New("rsacrack: lattice determinant exceeds theoretical bound")

	// ErrUnsupportedSize rejects inputs whose magnitude is outside the
	// range an attack is prepared to handle.
	ErrUnsupportedSize = errors.New("rsacrack: input size unsupported")
)

var one = big.NewInt(1)

// PublicKey is an RSA public key. It is immutable once constructed: attacks
// never write discovered factors back into it, they return a PrivateKey.
type PublicKey struct {
	N *big.Int
	E *big.Int
}

// NewPublicKey validates and copies the modulus and public exponent.
func NewPublicKey(n, e *big.Int) (*PublicKey, error) {
	if n == nil || n.Cmp(one) <= 0 {
		return nil, errors.Wrapf(ErrInvalidKey, "modulus must exceed 1, got %v", n)
	}
	if e == nil || e.Cmp(one) <= 0 {
		return nil, errors.Wrapf(ErrInvalidKey, "public exponent must exceed 1, got %v", e)
	}
	return &PublicKey{
		N: new(big.Int).Set(n),
		E: new(big.Int).Set(e),
	}, nil
}

// Ciphertext is raw ciphertext, interpreted as a big-endian unsigned integer
// for modular operations.
type Ciphertext []byte

// Int returns the ciphertext as an integer.
func (c Ciphertext) Int() *big.Int {
	return new(big.Int).SetBytes(c)
}

// PrivateKey is a recovered RSA private key. P and Q may be nil when only
// the private exponent could be recovered (e.g. a prime modulus).
type PrivateKey struct {
	N *big.Int
	E *big.Int
	D *big.Int
	P *big.Int
	Q *big.Int
}

// NewPrivateKey builds a private key from whatever material is available:
// both primes, or the private exponent. With neither, it fails with
// ErrIncompleteKey.
func NewPrivateKey(n, e, d, p, q *big.Int) (*PrivateKey, error) {
	switch {
	case p != nil && q != nil:
		return PrivateKeyFromFactors(p, q, e, n)
	case d != nil:
		return PrivateKeyFromExponent(n, e, d)
	default:
		return nil, ErrIncompleteKey
	}
}

// PrivateKeyFromFactors derives the full private key from the two prime
// factors. It fails with a validation error when p*q != n, rather than
// silently producing an inconsistent key.
func PrivateKeyFromFactors(p, q, e, n *big.Int) (*PrivateKey, error) {
	if p == nil || q == nil || e == nil || n == nil {
		return nil, errors.Wrap(ErrInvalidKey, "nil component")
	}
	prod := new(big.Int).Mul(p, q)
	if prod.Cmp(n) != 0 {
		return nil, errors.Wrapf(ErrInvalidKey, "p*q != n (p=%v q=%v)", p, q)
	}

	// d = e^-1 mod lcm(p-1, q-1)
	pm1 := new(big.Int).Sub(p, one)
	qm1 := new(big.Int).Sub(q, one)
	carmichael := new(big.Int).Mul(pm1, qm1)
	gcd := new(big.Int).GCD(nil, nil, pm1, qm1)
	carmichael.Div(carmichael, gcd)

	d, err := rsamath.ModInverse(e, carmichael)
	if err != nil {
		return nil, errors.Wrap(err, "rsacrack: e is not invertible modulo lambda(n)")
	}

	return &PrivateKey{
		N: new(big.Int).Set(n),
		E: new(big.Int).Set(e),
		D: d,
		P: new(big.Int).Set(p),
		Q: new(big.Int).Set(q),
	}, nil
}

// PrivateKeyFromExponent builds a private key from (n, e, d) and tries to
// recover the prime factors from the exponent pair. The factors stay nil
// when recovery fails (for instance when n is prime); the key is still
// usable for decryption.
func PrivateKeyFromExponent(n, e, d *big.Int) (*PrivateKey, error) {
	if n == nil || e == nil || d == nil {
		return nil, errors.Wrap(ErrInvalidKey, "nil component")
	}
	if d.Sign() <= 0 {
		return nil, errors.Wrapf(ErrInvalidKey, "non-positive private exponent %v", d)
	}
	key := &PrivateKey{
		N: new(big.Int).Set(n),
		E: new(big.Int).Set(e),
		D: new(big.Int).Set(d),
	}
	if p, q, ok := recoverFactors(n, e, d); ok {
		key.P, key.Q = p, q
	}
	return key, nil
}

// Public returns the public part of the key.
func (k *PrivateKey) Public() *PublicKey {
	return &PublicKey{N: new(big.Int).Set(k.N), E: new(big.Int).Set(k.E)}
}

// Decrypt reduces the ciphertext modulo n and raises it to d. No padding is
// removed; the caller gets the minimal big-endian encoding of the result.
func (k *PrivateKey) Decrypt(c Ciphertext) []byte {
	m := new(big.Int).Exp(c.Int(), k.D, k.N)
	return m.Bytes()
}

// recoverFactors factors n given a valid exponent pair (e, d) using the
// standard square-root-of-unity search: e*d - 1 = 2^s * r with r odd, and
// for most bases g, some g^(r*2^i) mod n is a nontrivial square root of 1,
// whose gcd with n exposes a factor.
func recoverFactors(n, e, d *big.Int) (*big.Int, *big.Int, bool) {
	k := new(big.Int).Mul(e, d)
	k.Sub(k, one)
	if k.Sign() <= 0 || k.Bit(0) == 1 {
		return nil, nil, false
	}

	r := new(big.Int).Set(k)
	s := 0
	for r.Bit(0) == 0 {
		r.Rsh(r, 1)
		s++
	}

	nm1 := new(big.Int).Sub(n, one)
	two := big.NewInt(2)
	for g := int64(2); g < 100; g++ {
		x := new(big.Int).Exp(big.NewInt(g), r, n)
		if x.Cmp(one) == 0 || x.Cmp(nm1) == 0 {
			continue
		}
		// At most s squarings bring x to 1 when (e, d) is a valid pair;
		// the cap also protects against bogus exponents.
		for i := 0; i < s && x.Cmp(one) != 0; i++ {
			y := new(big.Int).Exp(x, two, n)
			if y.Cmp(one) == 0 {
				// x is a nontrivial square root of 1 mod n.
				p := new(big.Int).GCD(nil, nil, new(big.Int).Sub(x, one), n)
				if p.Cmp(one) > 0 && p.Cmp(n) < 0 {
					q := new(big.Int).Div(n, p)
					if p.Cmp(q) > 0 {
						p, q = q, p
					}
					return p, q, true
				}
				break
			}
			if y.Cmp(nm1) == 0 {
				break
			}
			x = y
		}
	}
	return nil, nil, false
}

// Result is the outcome of an attack. Both payload fields are optional; a
// nil Result (or one with neither field set) means "no result" and is never
// signalled through an error.
type Result struct {
	PrivateKey *PrivateKey
	Plaintext  []byte

	// Attack is the name of the attack that produced the result; KeyIndex
	// is the index of the affected key, or -1 for results spanning the
	// whole key set.
	Attack   string
	KeyIndex int
}

// Empty reports whether r carries neither a private key nor a plaintext.
func (r *Result) Empty() bool {
	return r == nil || (r.PrivateKey == nil && len(r.Plaintext) == 0)
}
