package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMoexServer serves the existence endpoint with the given listing
// answer and the TQBR price endpoint with the given data row.
func newMoexServer(t *testing.T, listed bool, priceBody string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/iss/securities/"):
			if !listed {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, `{"boards":{"data":[["row"]]}}`)
		case strings.HasPrefix(r.URL.Path, "/iss/engines/stock/"):
			fmt.Fprint(w, priceBody)
		default:
			t.Errorf("unexpected moex request: %s", r.URL.Path)
		}
	}))
}

func TestResolvePrefersRegionalListing(t *testing.T) {
	moexSrv := newMoexServer(t, true, `{"securities":{"data":[[100.0,"SUR"]]}}`)
	defer moexSrv.Close()
	yahooSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("world provider must not be asked for a regionally listed ticker")
	}))
	defer yahooSrv.Close()

	resolver := NewResolver(
		NewMoexClient(moexSrv.URL, zerolog.Nop()),
		NewYahooClient(yahooSrv.URL, zerolog.Nop()),
		zerolog.Nop(),
	)

	quote, err := resolver.Resolve(context.Background(), "SBER")
	require.NoError(t, err)
	assert.Equal(t, "100.0 RUB", quote.String())
	assert.Equal(t, "moex", quote.Source)
}

func TestResolveFallsBackToWorld(t *testing.T) {
	moexSrv := newMoexServer(t, false, "")
	defer moexSrv.Close()
	yahooSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[{"currency":"USD","currentPrice":150.0}]}}`)
	}))
	defer yahooSrv.Close()

	resolver := NewResolver(
		NewMoexClient(moexSrv.URL, zerolog.Nop()),
		NewYahooClient(yahooSrv.URL, zerolog.Nop()),
		zerolog.Nop(),
	)

	quote, err := resolver.Resolve(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "150.0 USD", quote.String())
	assert.Equal(t, "yahoo", quote.Source)
}

func TestResolveExistenceFailurePropagates(t *testing.T) {
	moexSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `broken`)
	}))
	defer moexSrv.Close()
	yahooSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no source should be asked when the existence check fails")
	}))
	defer yahooSrv.Close()

	resolver := NewResolver(
		NewMoexClient(moexSrv.URL, zerolog.Nop()),
		NewYahooClient(yahooSrv.URL, zerolog.Nop()),
		zerolog.Nop(),
	)

	_, err := resolver.Resolve(context.Background(), "AAPL")
	assert.Error(t, err)
}
