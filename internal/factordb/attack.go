package factordb

import (
	"context"
	"math/big"

	"github.com/ctfkit/rsacrack/pkg/rsacrack"
	"github.com/ctfkit/rsacrack/pkg/rsamath"
)

// Attack adapts the database lookup to the attack battery.
type Attack struct {
	client *Client
}

func NewAttack(client *Client) *Attack {
	if client == nil {
		client = NewClient()
	}
	return &Attack{client: client}
}

func (a *Attack) Name() string { return "factordb" }

func (a *Attack) MultiKey() bool { return false }

func (a *Attack) Attempt(ctx context.Context, t *rsacrack.Target) (*rsacrack.Result, error) {
	key := t.Keys[0]
	lookup, err := a.client.Factor(ctx, key.N)
	if err != nil {
		t.Logf("factordb: %v", err)
		return nil, nil
	}
	if lookup == nil {
		return nil, nil
	}

	if lookup.Prime {
		d, err := rsamath.ModInverse(key.E, new(big.Int).Sub(key.N, big.NewInt(1)))
		if err != nil {
			return nil, nil
		}
		priv, err := rsacrack.NewPrivateKey(key.N, key.E, d, nil, nil)
		if err != nil {
			return nil, nil
		}
		return &rsacrack.Result{PrivateKey: priv}, nil
	}

	priv, err := rsacrack.PrivateKeyFromFactors(lookup.P, lookup.Q, key.E, key.N)
	if err != nil {
		t.Logf("factordb: database factors rejected: %v", err)
		return nil, nil
	}
	return &rsacrack.Result{PrivateKey: priv}, nil
}
