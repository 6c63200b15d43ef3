package http

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"github.com/1sol-io/1sol-interface-sub000/internal/domain"
	"github.com/1sol-io/1sol-interface-sub000/internal/http/httputil"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/registry"
)

// VenueHandler exposes the venue registry: pair lookups for users, discovery
// and persistence triggers for operators.
type VenueHandler struct {
	registrySvc *registry.Service
}

func NewVenueHandler(r *registry.Service) *VenueHandler {
	return &VenueHandler{registrySvc: r}
}

func (h *VenueHandler) Root() string {
	return "/venues"
}

func (h *VenueHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.forPair)
	admin.POST("/discover", h.discover)
}

type venueView struct {
	Address string `json:"address"`
	Kind    string `json:"kind"`
	Program string `json:"program"`
	MintA   string `json:"mintA"`
	MintB   string `json:"mintB"`
}

func (h *VenueHandler) forPair(c *gin.Context) {
	mintA, err := solana.PublicKeyFromBase58(c.Query("mintA"))
	if err != nil {
		httputil.BadRequest(c, "invalid mintA")
		return
	}
	mintB, err := solana.PublicKeyFromBase58(c.Query("mintB"))
	if err != nil {
		httputil.BadRequest(c, "invalid mintB")
		return
	}

	var views []venueView
	for kind := domain.VenuePoolSwap; kind <= domain.VenueConstantFunctionAMM; kind++ {
		for _, venue := range h.registrySvc.ForPair(kind, mintA, mintB) {
			views = append(views, venueView{
				Address: venue.Address.String(),
				Kind:    venue.Kind.String(),
				Program: venue.Program.String(),
				MintA:   venue.MintA.String(),
				MintB:   venue.MintB.String(),
			})
		}
	}
	httputil.Success(c, views)
}

func (h *VenueHandler) discover(c *gin.Context) {
	if err := h.registrySvc.Discover(c.Request.Context()); err != nil {
		httputil.InternalError(c, err.Error())
		return
	}
	if err := h.registrySvc.Persist(); err != nil {
		httputil.InternalError(c, err.Error())
		return
	}
	httputil.Success(c, gin.H{"count": h.registrySvc.Count()})
}
