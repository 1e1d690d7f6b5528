package rsacrack

import "context"

// Logger is the diagnostic sink handed to attacks. Attacks write progress
// and failure diagnostics to it instead of any process-wide logger.
type Logger interface {
	Printf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...interface{}) {}

// NopLogger discards all diagnostics.
var NopLogger Logger = nopLogger{}

// Target is the material a single attack invocation works on. Single-key
// attacks receive exactly one key (plus its ciphertext when one is paired);
// multi-key attacks receive the full set. Attacks must treat the target as
// read-only.
type Target struct {
	Keys        []*PublicKey
	Ciphertexts []Ciphertext
	Log         Logger
}

// Logf writes to the target's diagnostic sink, if any.
func (t *Target) Logf(format string, args ...interface{}) {
	if t.Log != nil {
		t.Log.Printf(format, args...)
	}
}

// Attack is a single cryptanalytic technique.
//
// Attempt returns (nil, nil) when the attack is inapplicable or simply finds
// nothing; that is the normal outcome and never an error. Errors are
// reserved for exceptional conditions (ErrBoundExceeded in strict mode,
// ErrUnsupportedSize, internal arithmetic failures) and are contained by the
// orchestrator.
type Attack interface {
	// Name identifies the attack in results and diagnostics.
	Name() string

	// MultiKey reports whether the attack consumes the whole key set at
	// once (like the broadcast attack) instead of one key at a time.
	MultiKey() bool

	Attempt(ctx context.Context, t *Target) (*Result, error)
}

// DefaultAttacks returns the built-in attack battery in its default order:
// cheap arithmetic checks first, the lattice attack last.
func DefaultAttacks() []Attack {
	return []Attack{
		NewHastad(),
		NewCommonFactor(),
		NewFermat(),
		NewWiener(),
		NewFactorization(),
		NewBonehDurfee(),
	}
}

// Registry is an ordered collection of attacks.
type Registry struct {
	attacks []Attack
}

// NewRegistry builds a registry over the given attacks, keeping their order.
func NewRegistry(attacks ...Attack) *Registry {
	return &Registry{attacks: append([]Attack{}, attacks...)}
}

// Register appends an attack.
func (r *Registry) Register(a Attack) {
	r.attacks = append(r.attacks, a)
}

// Attacks returns the registered attacks in registration order.
func (r *Registry) Attacks() []Attack {
	return append([]Attack{}, r.attacks...)
}
