package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	g.GET("/courts", h.ListCourts)
	g.GET("/coaches", h.ListCoaches)
	g.GET("/equipment", h.ListEquipment)
	g.GET("/pricing-rules", h.ListPricingRules)
}
