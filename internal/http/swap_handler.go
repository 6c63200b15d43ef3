package http

import (
	"errors"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"github.com/1sol-io/1sol-interface-sub000/internal/common"
	"github.com/1sol-io/1sol-interface-sub000/internal/domain"
	"github.com/1sol-io/1sol-interface-sub000/internal/http/httputil"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/executor"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/pricing"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/registry"
	"github.com/1sol-io/1sol-interface-sub000/internal/tokens"
	"github.com/1sol-io/1sol-interface-sub000/internal/wallet"
)

// SwapHandler quotes a pair, builds the best route, and executes it with the
// configured wallet.
type SwapHandler struct {
	executorSvc *executor.Service
	pricingSvc  *pricing.ClientService
	registrySvc *registry.Service
	walletSvc   *wallet.Service
}

func NewSwapHandler(e *executor.Service, p *pricing.ClientService, r *registry.Service, w *wallet.Service) *SwapHandler {
	return &SwapHandler{executorSvc: e, pricingSvc: p, registrySvc: r, walletSvc: w}
}

func (h *SwapHandler) Root() string {
	return "/swap"
}

func (h *SwapHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.POST("", h.executeSwap)
	pub.GET("/state", h.attemptState)
}

// SwapHandlerRequest are the parameters for executing a swap.
type SwapHandlerRequest struct {
	// Input token mint address (base58)
	InputMint string `json:"inputMint" binding:"required"`

	// Output token mint address (base58)
	OutputMint string `json:"outputMint" binding:"required"`

	// Amount in smallest token units
	Amount string `json:"amount" binding:"required"`

	// Slippage tolerance in basis points (1 bps = 0.01%)
	// Default: 50 bps (0.5%) if not specified
	SlippageBps uint16 `json:"slippageBps"`

	// Optional account credited with the aggregator protocol fee
	FeeAccount string `json:"feeAccount"`
}

type SwapHandlerResponse struct {
	State            string   `json:"state"`
	Signatures       []string `json:"signatures"`
	Submitted        int      `json:"submitted"`
	Total            int      `json:"total"`
	AmountOut        uint64   `json:"amountOut"`
	DisplayAmountOut string   `json:"displayAmountOut"`
}

func (h *SwapHandler) executeSwap(c *gin.Context) {
	var body SwapHandlerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		httputil.BadRequest(c, err.Error())
		return
	}

	amount, err := strconv.ParseUint(body.Amount, 10, 64)
	if err != nil || amount == 0 {
		httputil.BadRequest(c, "amount must be a positive integer")
		return
	}
	if _, err := solana.PublicKeyFromBase58(body.InputMint); err != nil {
		httputil.BadRequest(c, "invalid input mint")
		return
	}
	if _, err := solana.PublicKeyFromBase58(body.OutputMint); err != nil {
		httputil.BadRequest(c, "invalid output mint")
		return
	}

	var feeAccount solana.PublicKey
	if body.FeeAccount != "" {
		feeAccount, err = solana.PublicKeyFromBase58(body.FeeAccount)
		if err != nil {
			httputil.BadRequest(c, "invalid fee account")
			return
		}
	}

	slippageBps := body.SlippageBps
	if slippageBps == 0 {
		slippageBps = 50
	}

	quote, err := h.pricingSvc.Quote(c.Request.Context(), &pricing.QuoteRequest{
		AmountIn:                amount,
		SourceTokenMintKey:      body.InputMint,
		DestinationTokenMintKey: body.OutputMint,
		Programs:                h.registrySvc.Programs(),
	})
	if err != nil {
		httputil.Error(c, 502, err.Error())
		return
	}

	route, err := quote.ToRoute(h.registrySvc)
	if err != nil {
		httputil.InternalError(c, err.Error())
		return
	}

	result, err := h.executorSvc.Execute(c.Request.Context(), &domain.SwapRequest{
		User:        h.walletSvc.Wallet().PublicKey(),
		Route:       *route,
		SlippageBps: slippageBps,
		FeeAccount:  feeAccount,
	})
	if err != nil {
		if errors.Is(err, common.ErrSwapInProgress) {
			httputil.Conflict(c, err.Error())
			return
		}
		httputil.InternalError(c, err.Error())
		return
	}

	signatures := make([]string, 0, len(result.Signatures))
	for _, sig := range result.Signatures {
		signatures = append(signatures, sig.String())
	}
	var destDecimals uint8
	if lastHop := quote.Best.Routes[len(quote.Best.Routes)-1]; len(lastHop) > 0 {
		destDecimals = lastHop[0].DestinationTokenMint.Decimals
	}
	httputil.Success(c, SwapHandlerResponse{
		State:            result.State.String(),
		Signatures:       signatures,
		Submitted:        result.Submitted,
		Total:            result.Total,
		AmountOut:        route.AmountOut(),
		DisplayAmountOut: tokens.FormatBaseUnits(route.AmountOut(), destDecimals),
	})
}

func (h *SwapHandler) attemptState(c *gin.Context) {
	httputil.Success(c, gin.H{"state": h.executorSvc.State().String()})
}
