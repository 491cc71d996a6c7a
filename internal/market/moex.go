package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMoexBaseURL is the public MOEX ISS endpoint.
const DefaultMoexBaseURL = "https://iss.moex.com"

// moexBoard is the main T+ equities board.
const moexBoard = "TQBR"

// MoexClient reads security listings and prices from the MOEX ISS API.
type MoexClient struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

func NewMoexClient(baseURL string, log zerolog.Logger) *MoexClient {
	if baseURL == "" {
		baseURL = DefaultMoexBaseURL
	}
	return &MoexClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log.With().Str("client", "moex").Logger(),
	}
}

// moexSecurityDoc is the relevant part of /iss/securities/{ticker}.json.
// Row contents are irrelevant for the existence check, only the count.
type moexSecurityDoc struct {
	Boards struct {
		Data []json.RawMessage `json:"data"`
	} `json:"boards"`
}

// moexMarketDoc is the relevant part of the board securities endpoint
// when queried for the PREVPRICE and CURRENCYID columns only; each data
// row is then a two-element [price, currency] list.
type moexMarketDoc struct {
	Securities struct {
		Data [][]json.RawMessage `json:"data"`
	} `json:"securities"`
}

// SecurityExists reports whether the ticker is listed on the exchange.
// Any non-200 answer means "not listed"; only failing to reach or parse
// the endpoint is an error.
func (c *MoexClient) SecurityExists(ctx context.Context, ticker string) (bool, error) {
	reqURL := fmt.Sprintf("%s/iss/securities/%s.json", c.baseURL, ticker)

	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Debug().Str("ticker", ticker).Int("status", resp.StatusCode).Msg("security lookup refused")
		return false, nil
	}

	var doc moexSecurityDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return false, fmt.Errorf("decode security response for %s: %w", ticker, err)
	}

	return len(doc.Boards.Data) > 0, nil
}

// Price fetches the previous-session price of the ticker on the TQBR
// board. A non-200 answer or an empty data section yields ErrNoQuote; a
// row that does not match the requested columns is a parsing error.
func (c *MoexClient) Price(ctx context.Context, ticker string) (Quote, error) {
	reqURL := fmt.Sprintf(
		"%s/iss/engines/stock/markets/shares/boards/%s/securities/%s.json?iss.only=securities&securities.columns=PREVPRICE,CURRENCYID",
		c.baseURL, moexBoard, ticker,
	)

	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return Quote{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("%w: %s (status %d)", ErrNoQuote, ticker, resp.StatusCode)
	}

	var doc moexMarketDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return Quote{}, fmt.Errorf("decode price response for %s: %w", ticker, err)
	}
	if len(doc.Securities.Data) == 0 {
		return Quote{}, fmt.Errorf("%w: %s", ErrNoQuote, ticker)
	}

	row := doc.Securities.Data[0]
	if len(row) < 2 {
		return Quote{}, fmt.Errorf("malformed price row for %s: %d columns", ticker, len(row))
	}

	var price json.Number
	if err := json.Unmarshal(row[0], &price); err != nil {
		return Quote{}, fmt.Errorf("malformed price for %s: %w", ticker, err)
	}
	var currency string
	if err := json.Unmarshal(row[1], &currency); err != nil {
		return Quote{}, fmt.Errorf("malformed currency for %s: %w", ticker, err)
	}

	return Quote{
		Ticker:   ticker,
		Price:    price.String(),
		Currency: normalizeCurrency(currency),
		Source:   "moex",
	}, nil
}

// normalizeCurrency maps the exchange's internal ruble code to ISO 4217.
func normalizeCurrency(code string) string {
	if code == "SUR" {
		return "RUB"
	}
	return code
}

func (c *MoexClient) get(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", reqURL, err)
	}
	return resp, nil
}
