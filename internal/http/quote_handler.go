package http

import (
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/1sol-io/1sol-interface-sub000/internal/domain"
	"github.com/1sol-io/1sol-interface-sub000/internal/http/httputil"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/pricing"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/quote"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/registry"
	"github.com/1sol-io/1sol-interface-sub000/internal/tokens"
)

// QuoteHandler exposes the pricing service's best route and the alternative
// single-venue distributions without executing anything.
type QuoteHandler struct {
	pricingSvc  *pricing.ClientService
	registrySvc *registry.Service
}

func NewQuoteHandler(p *pricing.ClientService, r *registry.Service) *QuoteHandler {
	return &QuoteHandler{pricingSvc: p, registrySvc: r}
}

func (h *QuoteHandler) Root() string {
	return "/quote"
}

func (h *QuoteHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.quote)
	pub.GET("/latest", h.latest)
}

// DistributionView is one manual-override alternative with its display
// amount filled in.
type DistributionView struct {
	pricing.Distribution
	DisplayAmountOut string `json:"display_amount_out"`
}

// QuoteView is the quote response served to the UI: the raw quote plus the
// locally computed price impact and display amounts.
type QuoteView struct {
	Best             *pricing.BestQuote `json:"best"`
	DisplayAmountOut string             `json:"display_amount_out"`
	PriceImpactBps   uint64             `json:"price_impact_bps"`
	Distributions    []DistributionView `json:"distributions"`
}

// venueReserves is the slice of the registry the view needs.
type venueReserves interface {
	Get(address solana.PublicKey) (*domain.VenueRecord, bool)
}

// buildQuoteView cross-checks each pool leg of the best route against the
// registry's last seen reserves and reports the worst price impact. Legs
// whose venue or reserves are unknown are skipped.
func buildQuoteView(resp *pricing.QuoteResponse, venues venueReserves) QuoteView {
	view := QuoteView{Best: resp.Best}

	var destDecimals uint8
	if resp.Best != nil && len(resp.Best.Routes) > 0 {
		lastHop := resp.Best.Routes[len(resp.Best.Routes)-1]
		if len(lastHop) > 0 {
			destDecimals = lastHop[0].DestinationTokenMint.Decimals
		}
		view.DisplayAmountOut = tokens.FormatBaseUnits(resp.Best.AmountOut, destDecimals)

		for _, hop := range resp.Best.Routes {
			for _, leg := range hop {
				if impact, ok := legPriceImpact(&leg, venues); ok && impact > view.PriceImpactBps {
					view.PriceImpactBps = impact
				}
			}
		}
	}

	view.Distributions = make([]DistributionView, 0, len(resp.Distributions))
	for _, d := range resp.Distributions {
		view.Distributions = append(view.Distributions, DistributionView{
			Distribution:     d,
			DisplayAmountOut: tokens.FormatBaseUnits(d.AmountOut, destDecimals),
		})
	}
	return view
}

func legPriceImpact(leg *pricing.LegQuote, venues venueReserves) (uint64, bool) {
	addr, err := solana.PublicKeyFromBase58(leg.Pubkey)
	if err != nil {
		return 0, false
	}
	rec, ok := venues.Get(addr)
	if !ok || rec.ReserveA == 0 || rec.ReserveB == 0 {
		return 0, false
	}

	reserveIn, reserveOut := rec.ReserveA, rec.ReserveB
	if leg.SourceTokenMint.Pubkey == rec.MintB.String() {
		reserveIn, reserveOut = rec.ReserveB, rec.ReserveA
	}

	est, err := quote.EstimateConstantProduct(leg.AmountIn, reserveIn, reserveOut, quote.DefaultPoolFeeBps)
	if err == nil && leg.AmountOut > est {
		log.Warn().
			Str("venue", leg.Pubkey).
			Uint64("quoted", leg.AmountOut).
			Uint64("estimated", est).
			Msg("quoted output exceeds local reserve estimate")
	}
	return quote.PriceImpactBps(leg.AmountIn, leg.AmountOut, reserveIn, reserveOut), true
}

func (h *QuoteHandler) quote(c *gin.Context) {
	amount, err := strconv.ParseUint(c.Query("amount"), 10, 64)
	if err != nil || amount == 0 {
		httputil.BadRequest(c, "amount must be a positive integer")
		return
	}
	inputMint := c.Query("inputMint")
	outputMint := c.Query("outputMint")
	if inputMint == "" || outputMint == "" {
		httputil.BadRequest(c, "inputMint and outputMint are required")
		return
	}

	req := &pricing.QuoteRequest{
		AmountIn:                amount,
		SourceTokenMintKey:      inputMint,
		DestinationTokenMintKey: outputMint,
		Programs:                h.registrySvc.Programs(),
	}
	quoteResp, err := h.pricingSvc.Quote(c.Request.Context(), req)
	if err != nil {
		httputil.Error(c, 502, err.Error())
		return
	}

	// Keep this quote fresh in the background while the caller reviews it.
	h.pricingSvc.Watch(req)

	httputil.Success(c, buildQuoteView(quoteResp, h.registrySvc))
}

// latest returns the most recent background refresh of the watched quote.
func (h *QuoteHandler) latest(c *gin.Context) {
	resp := h.pricingSvc.Latest()
	if resp == nil {
		httputil.NotFound(c, "no refreshed quote yet")
		return
	}
	httputil.Success(c, buildQuoteView(resp, h.registrySvc))
}
