// Package rsacrack recovers RSA private keys and plaintexts from weak public
// keys: small private exponents (Wiener's continued fractions and the
// Boneh-Durfee lattice attack), close or shared prime factors, low-exponent
// broadcasts (Håstad), and degenerate moduli.
//
// # Quick Start
//
//	import "github.com/ctfkit/rsacrack/pkg/rsacrack"
//
//	// Create a client with the default attack battery
//	client := rsacrack.NewClient()
//
//	key, err := rsacrack.NewPublicKey(n, e)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := client.RecoverKey(ctx, key)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Recovered d: %s\n", result.PrivateKey.D.Text(16))
//
// # Customization
//
// Attacks are configured with builders and can be cherry-picked:
//
//	client := rsacrack.NewClient().
//	    WithAttacks(
//	        rsacrack.NewWiener(),
//	        rsacrack.NewBonehDurfee().WithM(6).WithStrict(true),
//	    ).
//	    WithTimeout(2 * time.Minute).
//	    WithWorkers(8)
//
// Attacks run concurrently; the first success wins and cancels the rest.
// In strict mode the lattice attack reports a failed determinant bound as
// ErrBoundExceeded so the caller can retune M or the delta exponent.
//
// # Custom Attacks
//
// Implement the Attack interface to add techniques to the battery:
//
//	type MyAttack struct{}
//
//	func (a *MyAttack) Name() string   { return "myattack" }
//	func (a *MyAttack) MultiKey() bool { return false }
//
//	func (a *MyAttack) Attempt(ctx context.Context, t *rsacrack.Target) (*rsacrack.Result, error) {
//	    // Your factoring logic; return (nil, nil) when nothing is found.
//	}
//
//	client := rsacrack.NewClient().WithAttacks(&MyAttack{})
package rsacrack
