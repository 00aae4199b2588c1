package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/court-reservation/internal/availability"
	"github.com/nekogravitycat/court-reservation/internal/pkg/response"
)

type Handler struct {
	service availability.Service
}

func NewHandler(service availability.Service) *Handler {
	return &Handler{service: service}
}

// Grid returns hourly court availability for one local date.
func (h *Handler) Grid(c *gin.Context) {
	var req GridRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "date parameter is required", err)
		return
	}

	grid, err := h.service.Grid(c.Request.Context(), req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewGridResponse(grid))
}
