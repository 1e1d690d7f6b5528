// Package factorext wraps an external factorization tool (yafu, cado-nfs,
// msieve wrappers and the like) behind the attack contract. The tool is
// given the modulus and must print a nontrivial factor in decimal on stdout.
package factorext

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"os/exec"
	"strings"
	"time"

	"github.com/ctfkit/rsacrack/pkg/rsacrack"
)

// Runner invokes one external command per modulus. The placeholder "{}" in
// Args is replaced with the decimal modulus; without a placeholder the
// modulus is appended as the last argument.
type Runner struct {
	Command string
	Args    []string
	Timeout time.Duration
}

func NewRunner(command string, args ...string) *Runner {
	return &Runner{Command: command, Args: args, Timeout: 5 * time.Minute}
}

// Factor runs the tool and parses the first integer on stdout.
func (r *Runner) Factor(ctx context.Context, n *big.Int) (*big.Int, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	args := make([]string, 0, len(r.Args)+1)
	replaced := false
	for _, a := range r.Args {
		if strings.Contains(a, "{}") {
			a = strings.ReplaceAll(a, "{}", n.String())
			replaced = true
		}
		args = append(args, a)
	}
	if !replaced {
		args = append(args, n.String())
	}

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("factorext: %s: %w", r.Command, err)
	}

	for _, field := range strings.Fields(stdout.String()) {
		v, ok := new(big.Int).SetString(field, 10)
		if !ok {
			continue
		}
		if v.Cmp(big.NewInt(1)) > 0 && v.Cmp(n) < 0 {
			return v, nil
		}
	}
	return nil, nil
}

// Attack adapts the runner to the attack battery.
type Attack struct {
	runner *Runner
}

func NewAttack(runner *Runner) *Attack {
	return &Attack{runner: runner}
}

func (a *Attack) Name() string { return "factorext" }

func (a *Attack) MultiKey() bool { return false }

func (a *Attack) Attempt(ctx context.Context, t *rsacrack.Target) (*rsacrack.Result, error) {
	key := t.Keys[0]
	p, err := a.runner.Factor(ctx, key.N)
	if err != nil {
		t.Logf("factorext: %v", err)
		return nil, nil
	}
	if p == nil {
		return nil, nil
	}

	var rem big.Int
	q := new(big.Int)
	q.QuoRem(key.N, p, &rem)
	if rem.Sign() != 0 {
		t.Logf("factorext: tool output %s does not divide the modulus", p)
		return nil, nil
	}
	priv, err := rsacrack.PrivateKeyFromFactors(p, q, key.E, key.N)
	if err != nil {
		return nil, nil
	}
	return &rsacrack.Result{PrivateKey: priv}, nil
}
