package market

import "errors"

// ErrNoQuote reports that an upstream answered properly but has no
// price for the ticker. Transport and decoding failures are returned as
// ordinary errors and must not be matched against this sentinel.
var ErrNoQuote = errors.New("market: no quote for ticker")

// Quote is the normalized shape every price source returns. Price keeps
// the upstream's decimal token as-is, so "100.0" does not collapse to
// "100" on the way through.
type Quote struct {
	Ticker   string
	Price    string
	Currency string
	Source   string
}

// String renders the quote in the "<price> <currency>" display format.
func (q Quote) String() string {
	return q.Price + " " + q.Currency
}
