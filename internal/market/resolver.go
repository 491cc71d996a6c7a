package market

import (
	"context"

	"github.com/rs/zerolog"
)

// Resolver routes a ticker to the right price source: instruments
// listed on the regional exchange are priced there, everything else
// goes to the world provider.
type Resolver struct {
	moex  *MoexClient
	world *YahooClient
	log   zerolog.Logger
}

func NewResolver(moex *MoexClient, world *YahooClient, log zerolog.Logger) *Resolver {
	return &Resolver{
		moex:  moex,
		world: world,
		log:   log.With().Str("component", "resolver").Logger(),
	}
}

// Resolve returns one normalized quote for the ticker. ErrNoQuote means
// the chosen source has no data for it; any other error means a source
// could not be asked at all and nothing further was tried.
func (r *Resolver) Resolve(ctx context.Context, ticker string) (Quote, error) {
	listed, err := r.moex.SecurityExists(ctx, ticker)
	if err != nil {
		return Quote{}, err
	}

	if listed {
		r.log.Debug().Str("ticker", ticker).Msg("listed regionally, using exchange price")
		return r.moex.Price(ctx, ticker)
	}

	r.log.Debug().Str("ticker", ticker).Msg("not listed regionally, using world provider")
	return r.world.Quote(ctx, ticker)
}
