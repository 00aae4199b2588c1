package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/court-reservation/internal/catalog"
	"github.com/nekogravitycat/court-reservation/internal/pkg/response"
)

type Handler struct {
	service catalog.Service
}

func NewHandler(service catalog.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListCourts(c *gin.Context) {
	courts, err := h.service.ListCourts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, mapItems(courts, NewCourtResponse))
}

func (h *Handler) ListCoaches(c *gin.Context) {
	coaches, err := h.service.ListCoaches(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, mapItems(coaches, NewCoachResponse))
}

func (h *Handler) ListEquipment(c *gin.Context) {
	equipment, err := h.service.ListEquipment(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, mapItems(equipment, NewEquipmentResponse))
}

func (h *Handler) ListPricingRules(c *gin.Context) {
	rules, err := h.service.ListPricingRules(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, mapItems(rules, NewPricingRuleResponse))
}

// mapItems converts records and wraps them so that an empty list encodes as
// [] rather than null.
func mapItems[T, R any](items []T, fn func(T) R) gin.H {
	out := make([]R, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return gin.H{"items": out}
}
