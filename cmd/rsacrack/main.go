package main

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ctfkit/rsacrack/internal/factordb"
	"github.com/ctfkit/rsacrack/internal/factorext"
	"github.com/ctfkit/rsacrack/internal/parser"
	"github.com/ctfkit/rsacrack/pkg/rsacrack"
)

func main() {
	var (
		keyFiles    = flag.String("keys", "", "Comma-separated key files (PEM/DER certificate, PKIX, PKCS#1 or n=/e= text)")
		cipherFiles = flag.String("ciphers", "", "Comma-separated ciphertext files, paired with keys by position")
		attackList  = flag.String("attacks", "", "Comma-separated attack names to run (default: all built-in attacks)")
		timeout     = flag.Duration("timeout", 0, "Per-attack timeout (0 = none)")
		workers     = flag.Int("workers", 0, "Number of parallel attack workers (0 = auto-detect based on CPU cores)")
		strict      = flag.Bool("strict", false, "Fail with a distinct error when the lattice bound check fails instead of continuing")
		useFactorDB = flag.Bool("factordb", false, "Also query factordb.com (network)")
		factorCmd   = flag.String("factorcmd", "", "External factorization command; '{}' is replaced with the modulus")
		private     = flag.Bool("private", false, "Print the recovered private key in PEM form")
		dumpKey     = flag.Bool("dumpkey", false, "Dump the key components (n, e, d, p, q)")
		ext         = flag.Bool("ext", false, "With -dumpkey, also dump dp, dq, pinv, qinv")
		verbose     = flag.Bool("verbose", false, "Log attack diagnostics to stderr")
	)
	flag.Parse()

	if *keyFiles == "" {
		fmt.Fprintf(os.Stderr, "Error: -keys is required\n")
		flag.Usage()
		os.Exit(1)
	}

	var keys []*rsacrack.PublicKey
	for _, path := range strings.Split(*keyFiles, ",") {
		parsed, err := parser.ParseKeyFile(strings.TrimSpace(path))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		keys = append(keys, parsed...)
	}

	var ciphertexts []rsacrack.Ciphertext
	if *cipherFiles != "" {
		for _, path := range strings.Split(*cipherFiles, ",") {
			ct, err := parser.ParseCiphertextFile(strings.TrimSpace(path))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			ciphertexts = append(ciphertexts, ct)
		}
	}

	attacks, err := selectAttacks(*attackList, *strict, *useFactorDB, *factorCmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	client := rsacrack.NewClient().
		WithAttacks(attacks...).
		WithTimeout(*timeout).
		WithWorkers(*workers)
	if *verbose {
		client = client.WithLogger(log.New(os.Stderr, "", log.LstdFlags))
	}

	fmt.Printf("Running %d attacks against %d key(s)...\n", len(attacks), len(keys))
	start := time.Now()
	res, err := client.Recover(context.Background(), keys, ciphertexts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Sorry, cracking failed.")
		if *verbose {
			fmt.Fprintf(os.Stderr, "  %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("\n[+] Broken by %q in %s (key %d)\n", res.Attack, time.Since(start).Round(time.Millisecond), res.KeyIndex)
	printResults(res, *private, *dumpKey, *ext)
}

// selectAttacks resolves the attack battery from the -attacks flag and the
// optional online/external additions.
func selectAttacks(names string, strict, useFactorDB bool, factorCmd string) ([]rsacrack.Attack, error) {
	registry := rsacrack.NewRegistry(
		rsacrack.NewHastad(),
		rsacrack.NewCommonFactor(),
		rsacrack.NewFermat(),
		rsacrack.NewWiener(),
		rsacrack.NewFactorization(),
		rsacrack.NewBonehDurfee().WithStrict(strict),
	)
	if useFactorDB {
		registry.Register(factordb.NewAttack(nil))
	}
	if factorCmd != "" {
		parts := strings.Fields(factorCmd)
		registry.Register(factorext.NewAttack(factorext.NewRunner(parts[0], parts[1:]...)))
	}

	all := registry.Attacks()
	if names == "" {
		return all, nil
	}

	byName := make(map[string]rsacrack.Attack, len(all))
	for _, a := range all {
		byName[a.Name()] = a
	}
	var picked []rsacrack.Attack
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		a, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown attack %q", name)
		}
		picked = append(picked, a)
	}
	return picked, nil
}

func printResults(res *rsacrack.Result, private, dumpKey, ext bool) {
	if len(res.Plaintext) > 0 {
		fmt.Println("\nUnciphered data:")
		fmt.Printf("    %q\n", res.Plaintext)
		fmt.Printf("    hex: %x\n", res.Plaintext)
	}

	priv := res.PrivateKey
	if priv == nil {
		return
	}

	if private {
		if pemBytes := encodePEM(priv); pemBytes != nil {
			fmt.Println("\nPrivate key:")
			os.Stdout.Write(pemBytes)
		} else {
			fmt.Println("\nPrivate key cannot be PEM-encoded (factors unknown or oversized e); use -dumpkey")
		}
	}

	if dumpKey {
		fmt.Println("\nKey components:")
		fmt.Printf("n: %s\n", priv.N)
		fmt.Printf("e: %s\n", priv.E)
		fmt.Printf("d: %s\n", priv.D)
		if priv.P != nil {
			fmt.Printf("p: %s\n", priv.P)
		}
		if priv.Q != nil {
			fmt.Printf("q: %s\n", priv.Q)
		}
		if ext && priv.P != nil && priv.Q != nil {
			one := big.NewInt(1)
			dp := new(big.Int).Mod(priv.D, new(big.Int).Sub(priv.P, one))
			dq := new(big.Int).Mod(priv.D, new(big.Int).Sub(priv.Q, one))
			pinv := new(big.Int).ModInverse(priv.P, priv.Q)
			qinv := new(big.Int).ModInverse(priv.Q, priv.P)
			fmt.Printf("dp: %s\n", dp)
			fmt.Printf("dq: %s\n", dq)
			fmt.Printf("pinv: %s\n", pinv)
			fmt.Printf("qinv: %s\n", qinv)
		}
	}
}

// encodePEM renders the key as PKCS#1 PEM when the factorization is known
// and e fits the standard library's key type.
func encodePEM(priv *rsacrack.PrivateKey) []byte {
	if priv.P == nil || priv.Q == nil || !priv.E.IsInt64() {
		return nil
	}
	key := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{N: priv.N, E: int(priv.E.Int64())},
		D:         priv.D,
		Primes:    []*big.Int{priv.P, priv.Q},
	}
	key.Precompute()
	if err := key.Validate(); err != nil {
		return nil
	}
	return pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
}
