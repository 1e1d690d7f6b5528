// Package parser loads RSA public keys and ciphertexts from the formats
// weak-key material usually arrives in: PEM/DER certificates, PKIX and
// PKCS#1 public keys, and plain-text n/e listings.
package parser

import (
	"crypto/rsa"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"regexp"
	"strings"

	stdx509 "crypto/x509"

	"github.com/zmap/zcrypto/x509"

	"github.com/ctfkit/rsacrack/pkg/rsacrack"
)

// textKeyLine matches "n = 0xdeadbeef" or "e=65537" style assignments.
var textKeyLine = regexp.MustCompile(`(?mi)^\s*([ne])\s*[:=]\s*(0x[0-9a-f]+|[0-9]+)\s*$`)

// ParseKeyFile reads every RSA public key it can find in the file. PEM input
// may carry several blocks; raw DER and the plain-text format carry one key.
func ParseKeyFile(path string) ([]*rsacrack.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	keys, err := ParseKeys(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return keys, nil
}

// ParseKeys extracts RSA public keys from PEM, DER or plain-text input.
func ParseKeys(data []byte) ([]*rsacrack.PublicKey, error) {
	if strings.Contains(string(data), "-----BEGIN") {
		return parsePEM(data)
	}
	if key, err := parseDER(data); err == nil {
		return []*rsacrack.PublicKey{key}, nil
	}
	if key, err := parseText(string(data)); err == nil {
		return []*rsacrack.PublicKey{key}, nil
	}
	return nil, fmt.Errorf("unrecognized key format")
}

func parsePEM(data []byte) ([]*rsacrack.PublicKey, error) {
	var keys []*rsacrack.PublicKey
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		key, err := parseDER(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("PEM block %q: %w", block.Type, err)
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no usable PEM block")
	}
	return keys, nil
}

// parseDER tries the DER encodings in decreasing order of likelihood:
// certificate, SubjectPublicKeyInfo, PKCS#1. Certificates go through
// zcrypto, which keeps parsing keys that the standard library rejects as
// malformed; research-grade weak keys often are.
func parseDER(der []byte) (*rsacrack.PublicKey, error) {
	if c, err := x509.ParseCertificate(der); err == nil {
		pub, ok := c.PublicKey.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("certificate carries a %s key, not RSA", c.PublicKeyAlgorithm)
		}
		return fromRSA(pub)
	}
	if pub, err := x509.ParsePKIXPublicKey(der); err == nil {
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("SubjectPublicKeyInfo is not an RSA key")
		}
		return fromRSA(rsaPub)
	}
	if pub, err := stdx509.ParsePKCS1PublicKey(der); err == nil {
		return fromRSA(pub)
	}
	return nil, fmt.Errorf("not a certificate, PKIX or PKCS#1 key")
}

// parseText reads the "n = ..., e = ..." listing format, hex or decimal.
func parseText(s string) (*rsacrack.PublicKey, error) {
	var n, e *big.Int
	for _, m := range textKeyLine.FindAllStringSubmatch(s, -1) {
		v, err := parseInt(m[2])
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(m[1]) {
		case "n":
			n = v
		case "e":
			e = v
		}
	}
	if n == nil || e == nil {
		return nil, fmt.Errorf("text key needs both n and e")
	}
	return rsacrack.NewPublicKey(n, e)
}

func parseInt(s string) (*big.Int, error) {
	base := 10
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		s, base = s[2:], 16
	}
	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("bad integer %q", s)
	}
	return v, nil
}

func fromRSA(pub *rsa.PublicKey) (*rsacrack.PublicKey, error) {
	return rsacrack.NewPublicKey(pub.N, big.NewInt(int64(pub.E)))
}

// ParseCiphertextFile reads one ciphertext. Hex text (with or without 0x)
// and decimal text are decoded; anything else is taken as raw bytes.
func ParseCiphertextFile(path string) (rsacrack.Ciphertext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ciphertext file: %w", err)
	}
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		if b, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(s), "0x")); err == nil {
			return rsacrack.Ciphertext(b), nil
		}
	}
	if v, ok := new(big.Int).SetString(s, 10); ok {
		return rsacrack.Ciphertext(v.Bytes()), nil
	}
	if b, err := hex.DecodeString(s); err == nil {
		return rsacrack.Ciphertext(b), nil
	}
	return rsacrack.Ciphertext(data), nil
}
