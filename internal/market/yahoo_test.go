package market

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYahooQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbols"))
		fmt.Fprint(w, `{"quoteResponse":{"result":[{"currency":"USD","currentPrice":150.0}]}}`)
	}))
	defer srv.Close()

	client := NewYahooClient(srv.URL, zerolog.Nop())
	quote, err := client.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "150.0 USD", quote.String())
	assert.Equal(t, "yahoo", quote.Source)
}

func TestYahooQuoteFallsBackToRegularMarketPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[{"currency":"USD","regularMarketPrice":42.5}]}}`)
	}))
	defer srv.Close()

	client := NewYahooClient(srv.URL, zerolog.Nop())
	quote, err := client.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "42.5 USD", quote.String())
}

func TestYahooQuoteNoPriceField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[{"currency":"USD"}]}}`)
	}))
	defer srv.Close()

	client := NewYahooClient(srv.URL, zerolog.Nop())
	_, err := client.Quote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrNoQuote)
}

func TestYahooQuoteEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[]}}`)
	}))
	defer srv.Close()

	client := NewYahooClient(srv.URL, zerolog.Nop())
	_, err := client.Quote(context.Background(), "NOSUCH")
	assert.ErrorIs(t, err, ErrNoQuote)
}

func TestYahooQuoteRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewYahooClient(srv.URL, zerolog.Nop())
	_, err := client.Quote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrNoQuote)
}

func TestYahooQuoteMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>rate limited</html>`)
	}))
	defer srv.Close()

	client := NewYahooClient(srv.URL, zerolog.Nop())
	_, err := client.Quote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoQuote))
}
