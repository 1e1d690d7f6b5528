package factordb

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ctfkit/rsacrack/pkg/rsacrack"
)

// fakeDB mimics the two page shapes the scraper consumes.
func fakeDB(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if id := query.Get("id"); id != "" {
			page, ok := pages["id:"+id]
			if !ok {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, page)
			return
		}
		page, ok := pages["query:"+query.Get("query")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, page)
	}))
}

func TestFactor_CompositeSplit(t *testing.T) {
	// 3233 = 53 * 61.
	srv := fakeDB(t, map[string]string{
		"query:3233": `<table><tr>
			<td><a href="index.php?id=100">3233</a></td>
			<td><a href="index.php?id=101">53</a></td>
			<td><a href="index.php?id=102">61</a></td>
			</tr></table>`,
		"id:101": `<form><input type="text" value="53" /></form>`,
		"id:102": `<form><input type="text" value="61" /></form>`,
	})
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, HTTPClient: srv.Client()}
	lookup, err := c.Factor(context.Background(), big.NewInt(3233))
	if err != nil {
		t.Fatalf("factor failed: %v", err)
	}
	if lookup == nil {
		t.Fatal("expected a lookup result")
	}
	if lookup.P.Int64() != 53 || lookup.Q.Int64() != 61 {
		t.Errorf("wrong factors: %s, %s", lookup.P, lookup.Q)
	}
}

func TestFactor_PowerExpression(t *testing.T) {
	// 2^16-1 = 65535 as factordb renders large entries.
	srv := fakeDB(t, map[string]string{
		"query:9999": `<a href="index.php?id=1">x</a>
			<a href="index.php?id=2">x</a>
			<a href="index.php?id=3">x</a>`,
		"id:2": `<input value="2^16-1">`,
		"id:3": `<input value="3">`,
	})
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, HTTPClient: srv.Client()}
	lookup, err := c.Factor(context.Background(), big.NewInt(9999))
	if err != nil {
		t.Fatalf("factor failed: %v", err)
	}
	if lookup == nil || lookup.P.Int64() != 65535 {
		t.Fatalf("power expression not evaluated: %+v", lookup)
	}
}

func TestFactor_PrimeModulus(t *testing.T) {
	srv := fakeDB(t, map[string]string{
		"query:13": `<tr><td>P</td>
			<td><a href="index.php?id=50">13</a></td>
			<td><a href="index.php?id=50">13</a></td></tr>`,
	})
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, HTTPClient: srv.Client()}
	lookup, err := c.Factor(context.Background(), big.NewInt(13))
	if err != nil {
		t.Fatalf("factor failed: %v", err)
	}
	if lookup == nil || !lookup.Prime {
		t.Fatalf("expected a prime result, got %+v", lookup)
	}
}

func TestFactor_Unknown(t *testing.T) {
	srv := fakeDB(t, map[string]string{
		"query:77": `<a href="index.php?id=9">77</a>`,
	})
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, HTTPClient: srv.Client()}
	lookup, err := c.Factor(context.Background(), big.NewInt(77))
	if err != nil {
		t.Fatalf("factor failed: %v", err)
	}
	if lookup != nil {
		t.Fatalf("expected no result, got %+v", lookup)
	}
}

func TestAttack_BuildsPrivateKey(t *testing.T) {
	srv := fakeDB(t, map[string]string{
		"query:3233": `<a href="index.php?id=100">x</a>
			<a href="index.php?id=101">x</a>
			<a href="index.php?id=102">x</a>`,
		"id:101": `<input value="53">`,
		"id:102": `<input value="61">`,
	})
	defer srv.Close()

	attack := NewAttack(&Client{BaseURL: srv.URL, HTTPClient: srv.Client()})
	key, err := rsacrack.NewPublicKey(big.NewInt(3233), big.NewInt(17))
	if err != nil {
		t.Fatal(err)
	}

	res, err := attack.Attempt(context.Background(), &rsacrack.Target{Keys: []*rsacrack.PublicKey{key}})
	if err != nil {
		t.Fatalf("attempt failed: %v", err)
	}
	if res.Empty() {
		t.Fatal("expected a private key")
	}
	// 3233 = 53*61, lambda = lcm(52, 60) = 780, and 17*413 = 7021 = 9*780+1.
	if res.PrivateKey.D.Int64() != 413 {
		t.Errorf("wrong d: %s", res.PrivateKey.D)
	}
}
