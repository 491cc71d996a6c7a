package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// DefaultYahooBaseURL is the public Yahoo Finance query endpoint.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooClient resolves quotes for instruments that are not listed on
// the regional exchange.
type YahooClient struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

func NewYahooClient(baseURL string, log zerolog.Logger) *YahooClient {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	return &YahooClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log.With().Str("client", "yahoo").Logger(),
	}
}

type yahooQuoteDoc struct {
	QuoteResponse struct {
		Result []yahooQuoteInfo `json:"result"`
	} `json:"quoteResponse"`
}

// yahooQuoteInfo carries the fields the bot reads from the quote
// endpoint. Prices stay json.Number so the decimal token survives.
type yahooQuoteInfo struct {
	Currency           string      `json:"currency"`
	CurrentPrice       json.Number `json:"currentPrice"`
	RegularMarketPrice json.Number `json:"regularMarketPrice"`
}

// Quote fetches the current price for the ticker. An answer without a
// usable price field yields ErrNoQuote, mirroring the regional client;
// currentPrice is preferred, regularMarketPrice is the fallback.
func (c *YahooClient) Quote(ctx context.Context, ticker string) (Quote, error) {
	params := url.Values{}
	params.Add("symbols", ticker)
	params.Add("fields", "currency,currentPrice,regularMarketPrice")
	reqURL := c.baseURL + "/v7/finance/quote?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("request %s: %w", reqURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Debug().Str("ticker", ticker).Int("status", resp.StatusCode).Msg("quote lookup refused")
		return Quote{}, fmt.Errorf("%w: %s (status %d)", ErrNoQuote, ticker, resp.StatusCode)
	}

	var doc yahooQuoteDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return Quote{}, fmt.Errorf("decode quote response for %s: %w", ticker, err)
	}
	if len(doc.QuoteResponse.Result) == 0 {
		return Quote{}, fmt.Errorf("%w: %s", ErrNoQuote, ticker)
	}

	info := doc.QuoteResponse.Result[0]
	price := info.CurrentPrice
	if price == "" {
		price = info.RegularMarketPrice
	}
	if price == "" || info.Currency == "" {
		return Quote{}, fmt.Errorf("%w: %s", ErrNoQuote, ticker)
	}

	return Quote{
		Ticker:   ticker,
		Price:    price.String(),
		Currency: info.Currency,
		Source:   "yahoo",
	}, nil
}
