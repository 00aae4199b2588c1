package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	// === Public Routes ===
	g.POST("/quotes", h.Quote)

	// === Authenticated Routes ===
	group := g.Group("/bookings")
	group.Use(authMiddleware)
	{
		group.POST("", h.Create)
		group.GET("/me", h.ListMine)
		group.GET("/:id", h.Get)
		group.POST("/:id/cancel", h.Cancel)

		// Admin only
		group.GET("", adminMiddleware, h.List)
	}
}
