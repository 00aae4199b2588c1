package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/court-reservation/internal/auth"
	"github.com/nekogravitycat/court-reservation/internal/booking"
	"github.com/nekogravitycat/court-reservation/internal/pkg/request"
	"github.com/nekogravitycat/court-reservation/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func actor(c *gin.Context) booking.Actor {
	return booking.Actor{UserID: auth.GetUserID(c), IsAdmin: auth.IsAdmin(c)}
}

func (h *Handler) bindReservation(c *gin.Context) (booking.Request, bool) {
	var body ReservationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return booking.Request{}, false
	}
	req, err := body.ToRequest()
	if err != nil {
		response.Error(c, err)
		return booking.Request{}, false
	}
	return req, true
}

func (h *Handler) bindPage(c *gin.Context) (request.ListParams, bool) {
	var params request.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return params, false
	}
	params.Normalize()
	return params, true
}

// Quote prices a reservation without booking it.
func (h *Handler) Quote(c *gin.Context) {
	req, ok := h.bindReservation(c)
	if !ok {
		return
	}

	price, err := h.service.Quote(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPriceResponse(price))
}

func (h *Handler) Create(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	req, ok := h.bindReservation(c)
	if !ok {
		return
	}

	b, err := h.service.Book(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) ListMine(c *gin.Context) {
	params, ok := h.bindPage(c)
	if !ok {
		return
	}

	bookings, total, err := h.service.ListMine(c.Request.Context(), auth.GetUserID(c), params.Page, params.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, newPage(bookings, params, total))
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	bookings, total, err := h.service.List(c.Request.Context(), booking.Status(req.Status), req.Date, req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, newPage(bookings, req.ListParams, total))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := h.service.Get(c.Request.Context(), req.ID, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Cancel(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), req.ID, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func newPage(bookings []*booking.Booking, params request.ListParams, total int) response.PageResponse[BookingResponse] {
	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	return response.NewPageResponse(items, params.Page, params.PageSize, total)
}
