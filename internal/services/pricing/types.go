package pricing

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/domain"
)

// QuoteRequest is the body posted to the pricing service.
type QuoteRequest struct {
	AmountIn                uint64   `json:"amount_in"`
	SourceTokenMintKey      string   `json:"source_token_mint_key"`
	DestinationTokenMintKey string   `json:"destination_token_mint_key"`
	Programs                []string `json:"programs"`
}

type TokenMintInfo struct {
	Pubkey   string `json:"pubkey"`
	Decimals uint8  `json:"decimals"`
}

// LegQuote is one venue fill inside a hop of the best route.
type LegQuote struct {
	Pubkey               string        `json:"pubkey"`
	Program              string        `json:"program"`
	AmountIn             uint64        `json:"amount_in"`
	AmountOut            uint64        `json:"amount_out"`
	ExchangerFlag        string        `json:"exchanger_flag"`
	SourceTokenMint      TokenMintInfo `json:"source_token_mint"`
	DestinationTokenMint TokenMintInfo `json:"destination_token_mint"`
}

type BestQuote struct {
	AmountOut     uint64       `json:"amount_out"`
	ExchangerFlag string       `json:"exchanger_flag"`
	Routes        [][]LegQuote `json:"routes"`
}

// Distribution is an alternative single-venue quote offered to the user as a
// manual override.
type Distribution struct {
	AmountOut     uint64 `json:"amount_out"`
	ExchangerFlag string `json:"exchanger_flag"`
	ProviderType  string `json:"provider_type"`
}

type QuoteResponse struct {
	Best          *BestQuote     `json:"best"`
	Distributions []Distribution `json:"distributions"`
}

// VenueSource fills in venue addresses for legs the pricing service quotes
// with only an exchanger flag. The registry's pair index satisfies it.
type VenueSource interface {
	ForPair(kind domain.VenueKind, mintA, mintB solana.PublicKey) []*domain.VenueRecord
}

// ToRoute converts the best quote into the executable route, validating it
// on the way out. venues may be nil when every leg names its venue.
func (r *QuoteResponse) ToRoute(venues VenueSource) (*domain.Route, error) {
	if r.Best == nil || len(r.Best.Routes) == 0 {
		return nil, fmt.Errorf("quote has no route")
	}
	route := &domain.Route{Hops: make([]domain.Hop, 0, len(r.Best.Routes))}
	for _, legQuotes := range r.Best.Routes {
		hop := domain.Hop{Legs: make([]domain.Leg, 0, len(legQuotes))}
		for _, lq := range legQuotes {
			leg, err := lq.toLeg(venues)
			if err != nil {
				return nil, err
			}
			hop.Legs = append(hop.Legs, leg)
			hop.AmountIn += leg.AmountIn
			hop.AmountOut += leg.AmountOut
		}
		route.Hops = append(route.Hops, hop)
	}
	if err := route.Validate(); err != nil {
		return nil, err
	}
	return route, nil
}

func (lq *LegQuote) toLeg(venues VenueSource) (domain.Leg, error) {
	kind, err := domain.ParseVenueKind(lq.ExchangerFlag)
	if err != nil {
		return domain.Leg{}, err
	}
	sourceMint, err := solana.PublicKeyFromBase58(lq.SourceTokenMint.Pubkey)
	if err != nil {
		return domain.Leg{}, fmt.Errorf("leg source mint: %w", err)
	}
	destMint, err := solana.PublicKeyFromBase58(lq.DestinationTokenMint.Pubkey)
	if err != nil {
		return domain.Leg{}, fmt.Errorf("leg destination mint: %w", err)
	}
	var program solana.PublicKey
	if lq.Program != "" {
		program, err = solana.PublicKeyFromBase58(lq.Program)
		if err != nil {
			return domain.Leg{}, fmt.Errorf("leg program: %w", err)
		}
	}
	var venue solana.PublicKey
	switch {
	case lq.Pubkey != "":
		venue, err = solana.PublicKeyFromBase58(lq.Pubkey)
		if err != nil {
			return domain.Leg{}, fmt.Errorf("leg venue pubkey: %w", err)
		}
	case venues != nil:
		// The pricing service may name only the exchanger flag; the
		// registry's pair index supplies the venue.
		records := venues.ForPair(kind, sourceMint, destMint)
		if len(records) == 0 {
			return domain.Leg{}, fmt.Errorf("no registered %s venue for pair %s/%s", lq.ExchangerFlag, lq.SourceTokenMint.Pubkey, lq.DestinationTokenMint.Pubkey)
		}
		venue = records[0].Address
		if program.IsZero() {
			program = records[0].Program
		}
	default:
		return domain.Leg{}, fmt.Errorf("leg quoted without a venue pubkey")
	}
	return domain.Leg{
		Kind:            kind,
		Venue:           venue,
		Program:         program,
		SourceMint:      sourceMint,
		DestinationMint: destMint,
		AmountIn:        lq.AmountIn,
		AmountOut:       lq.AmountOut,
	}, nil
}
