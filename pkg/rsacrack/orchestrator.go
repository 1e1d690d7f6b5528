package rsacrack

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Orchestrator dispatches a battery of attacks over one or more public keys
// and stops at the first success. Attacks run concurrently across a worker
// pool; each key is attempted independently by single-key attacks while
// multi-key attacks see the whole set once. A failing or panicking attack
// never aborts the others.
type Orchestrator struct {
	attacks []Attack
	timeout time.Duration
	workers int
	log     Logger
}

// NewOrchestrator builds an orchestrator over the given attacks. With no
// attacks the default battery is used.
func NewOrchestrator(attacks ...Attack) *Orchestrator {
	if len(attacks) == 0 {
		attacks = DefaultAttacks()
	}
	return &Orchestrator{
		attacks: attacks,
		log:     NopLogger,
	}
}

// WithTimeout sets the per-attack-invocation timeout. Zero means no timeout.
func (o *Orchestrator) WithTimeout(d time.Duration) *Orchestrator {
	o.timeout = d
	return o
}

// WithWorkers sets the number of concurrent attack invocations
// (0 = one per CPU).
func (o *Orchestrator) WithWorkers(n int) *Orchestrator {
	o.workers = n
	return o
}

// WithLogger sets the diagnostic sink passed to every attack.
func (o *Orchestrator) WithLogger(l Logger) *Orchestrator {
	if l == nil {
		l = NopLogger
	}
	o.log = l
	return o
}

type job struct {
	attack   Attack
	target   *Target
	keyIndex int // -1 for multi-key jobs
}

// Run attempts every registered attack against the supplied keys and returns
// the first non-empty result. (nil, nil) means no attack succeeded. The only
// error returned from an attack itself is ErrBoundExceeded, which a
// strict-mode lattice attack uses to demand a parameter retune; everything
// else is logged and treated as "no result".
func (o *Orchestrator) Run(ctx context.Context, keys []*PublicKey, ciphertexts []Ciphertext) (*Result, error) {
	if len(keys) == 0 {
		return nil, errors.New("rsacrack: no keys supplied")
	}
	for _, k := range keys {
		if k == nil || k.N == nil || k.N.Cmp(one) <= 0 || k.E == nil || k.E.Cmp(one) <= 0 {
			return nil, errors.Wrap(ErrInvalidKey, "rsacrack: malformed key in input")
		}
	}

	var jobs []job
	for _, a := range o.attacks {
		if a.MultiKey() {
			jobs = append(jobs, job{
				attack:   a,
				target:   &Target{Keys: keys, Ciphertexts: ciphertexts, Log: o.log},
				keyIndex: -1,
			})
			continue
		}
		for i, k := range keys {
			t := &Target{Keys: []*PublicKey{k}, Log: o.log}
			if i < len(ciphertexts) {
				t.Ciphertexts = []Ciphertext{ciphertexts[i]}
			}
			jobs = append(jobs, job{attack: a, target: t, keyIndex: i})
		}
	}

	workers := o.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobCh := make(chan job)
	resultCh := make(chan *Result, 1)
	fatalCh := make(chan error, 1)

	go func() {
		defer close(jobCh)
		for _, j := range jobs {
			select {
			case <-runCtx.Done():
				return
			case jobCh <- j:
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				if runCtx.Err() != nil {
					return
				}
				res, err := o.attempt(runCtx, j)
				if err != nil {
					if errors.Is(err, ErrBoundExceeded) {
						// Strict mode: surface distinctly and stop.
						select {
						case fatalCh <- err:
							cancel()
						default:
						}
						return
					}
					o.log.Printf("[%s] key %d: %v", j.attack.Name(), j.keyIndex, err)
					continue
				}
				if !res.Empty() {
					// First success wins; later winners are dropped.
					select {
					case resultCh <- res:
						cancel()
					default:
					}
					return
				}
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	// A success always beats a simultaneous strict-mode error: when both
	// channels hold a value, the result is drained first.
	select {
	case res := <-resultCh:
		return res, nil
	case err := <-fatalCh:
		select {
		case res := <-resultCh:
			return res, nil
		default:
		}
		return nil, err
	case <-done:
		// All workers drained; a success may still be parked in the channel.
		select {
		case res := <-resultCh:
			return res, nil
		default:
		}
		select {
		case err := <-fatalCh:
			return nil, err
		default:
		}
		return nil, ctx.Err()
	}
}

// attempt runs one attack invocation under the per-attack timeout, fills in
// result provenance, and converts panics into "no result".
func (o *Orchestrator) attempt(ctx context.Context, j job) (res *Result, err error) {
	attackCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		attackCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			o.log.Printf("[%s] key %d: panic contained: %v", j.attack.Name(), j.keyIndex, r)
			res, err = nil, nil
		}
	}()

	start := time.Now()
	res, err = j.attack.Attempt(attackCtx, j.target)
	if attackCtx.Err() == context.DeadlineExceeded && res.Empty() && err == nil {
		o.log.Printf("[%s] key %d: timed out after %s", j.attack.Name(), j.keyIndex, time.Since(start).Round(time.Millisecond))
		return nil, nil
	}
	if res != nil {
		res.Attack = j.attack.Name()
		// Multi-key attacks report which key they broke themselves.
		if j.keyIndex >= 0 {
			res.KeyIndex = j.keyIndex
		}
	}
	return res, err
}
