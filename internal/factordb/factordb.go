// Package factordb looks up moduli in the factordb.com database of known
// factorizations. It is an online attack and is only registered when the
// caller explicitly enables network lookups.
package factordb

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"regexp"
	"strings"
)

const DefaultBaseURL = "http://factordb.com"

var (
	idPattern    = regexp.MustCompile(`(?i)index\.php\?id=([0-9]+)`)
	primePattern = regexp.MustCompile(`<td>P</td>`)
	valuePattern = regexp.MustCompile(`(?i)value="([0-9^\-]+)"`)
	powerExpr    = regexp.MustCompile(`^([0-9]+)\^([0-9]+)-([0-9]+)$`)
)

// Client queries a factordb instance.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient() *Client {
	return &Client{BaseURL: DefaultBaseURL, HTTPClient: http.DefaultClient}
}

// Lookup is the outcome of a modulus query.
type Lookup struct {
	// Prime is set when the database knows n itself is prime.
	Prime bool
	// P and Q are set when the database has a two-factor split.
	P, Q *big.Int
}

// Factor asks the database about n. A nil Lookup with nil error means the
// database has nothing useful.
func (c *Client) Factor(ctx context.Context, n *big.Int) (*Lookup, error) {
	page, err := c.get(ctx, fmt.Sprintf("%s/index.php?query=%s", c.BaseURL, n.String()))
	if err != nil {
		return nil, err
	}

	ids := idPattern.FindAllStringSubmatch(page, -1)

	// Two links means the query row points at a single entry: n is fully
	// known. When that entry is flagged prime, n itself is prime.
	if len(ids) == 2 && len(primePattern.FindAllString(page, -1)) == 1 {
		return &Lookup{Prime: true}, nil
	}
	if len(ids) < 3 {
		return nil, nil
	}

	p, err := c.fetchFactor(ctx, ids[1][1])
	if err != nil {
		return nil, err
	}
	q, err := c.fetchFactor(ctx, ids[2][1])
	if err != nil {
		return nil, err
	}
	if p == nil || q == nil {
		return nil, nil
	}
	if p.Cmp(n) == 0 || q.Cmp(n) == 0 {
		// Unfactored entries point back at n itself.
		return nil, nil
	}
	return &Lookup{P: p, Q: q}, nil
}

// fetchFactor resolves one factor entry, which the database renders either
// as a plain integer or as a k^j-s expression.
func (c *Client) fetchFactor(ctx context.Context, id string) (*big.Int, error) {
	page, err := c.get(ctx, fmt.Sprintf("%s/index.php?id=%s", c.BaseURL, id))
	if err != nil {
		return nil, err
	}
	m := valuePattern.FindStringSubmatch(page)
	if m == nil {
		return nil, nil
	}
	return parseValue(m[1])
}

// parseValue evaluates a factordb value: a decimal integer or "k^j-s".
func parseValue(s string) (*big.Int, error) {
	if !strings.ContainsAny(s, "^-") {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("factordb: bad integer %q", s)
		}
		return v, nil
	}
	m := powerExpr.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("factordb: unparseable expression %q", s)
	}
	k, _ := new(big.Int).SetString(m[1], 10)
	j, _ := new(big.Int).SetString(m[2], 10)
	sub, _ := new(big.Int).SetString(m[3], 10)
	v := new(big.Int).Exp(k, j, nil)
	return v.Sub(v, sub), nil
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("factordb: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("factordb: unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("factordb: %w", err)
	}
	return string(body), nil
}
