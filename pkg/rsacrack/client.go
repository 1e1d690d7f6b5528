package rsacrack

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Client provides the high-level API for running the attack battery.
type Client struct {
	attacks []Attack
	timeout time.Duration
	workers int
	logger  Logger
}

// NewClient creates a client with the default attack battery.
func NewClient() *Client {
	return &Client{
		attacks: DefaultAttacks(),
		logger:  NopLogger,
	}
}

// WithAttacks replaces the attack battery, keeping the given order.
func (c *Client) WithAttacks(attacks ...Attack) *Client {
	c.attacks = append([]Attack{}, attacks...)
	return c
}

// WithTimeout sets the per-attack timeout (0 = none).
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.timeout = d
	return c
}

// WithWorkers sets the number of concurrent attack invocations (0 = auto).
func (c *Client) WithWorkers(n int) *Client {
	c.workers = n
	return c
}

// WithLogger sets the diagnostic sink.
func (c *Client) WithLogger(l Logger) *Client {
	c.logger = l
	return c
}

// Recover runs the battery against the keys (and optional ciphertexts,
// paired by index) and returns the first successful result.
func (c *Client) Recover(ctx context.Context, keys []*PublicKey, ciphertexts []Ciphertext) (*Result, error) {
	orch := NewOrchestrator(c.attacks...).
		WithTimeout(c.timeout).
		WithWorkers(c.workers).
		WithLogger(c.logger)

	res, err := orch.Run(ctx, keys, ciphertexts)
	if err != nil {
		return nil, err
	}
	if res.Empty() {
		return nil, errors.New("rsacrack: no attack succeeded")
	}
	return res, nil
}

// RecoverKey is a convenience wrapper for a single key without ciphertext.
func (c *Client) RecoverKey(ctx context.Context, key *PublicKey) (*Result, error) {
	return c.Recover(ctx, []*PublicKey{key}, nil)
}
