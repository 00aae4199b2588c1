package app_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/court-reservation/internal/app"
	availHttp "github.com/nekogravitycat/court-reservation/internal/availability/http"
	bookingHttp "github.com/nekogravitycat/court-reservation/internal/booking/http"
	"github.com/nekogravitycat/court-reservation/internal/catalog/catalogtest"
	"github.com/nekogravitycat/court-reservation/internal/pkg/interval"
	"github.com/nekogravitycat/court-reservation/internal/pkg/response"
)

type testApp struct {
	t         *testing.T
	container *app.Container
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	container := app.NewContainer(app.Config{
		Zone:      interval.NewZone(time.UTC),
		Catalog:   catalogtest.Snapshot(),
		JWTSecret: "test-secret",
		JWTTTL:    30 * time.Minute,
	})
	return &testApp{t: t, container: container}
}

func (a *testApp) token(userID string, isAdmin bool) string {
	token, err := a.container.JWTManager.GenerateAccessToken(userID, isAdmin)
	require.NoError(a.t, err)
	return token
}

func (a *testApp) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.container.Router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func reservation(courtID string, start, end time.Time, equipment map[string]int) map[string]any {
	body := map[string]any{
		"court_id":   courtID,
		"start_time": start.Format(time.RFC3339),
		"end_time":   end.Format(time.RFC3339),
	}
	if equipment != nil {
		body["equipment"] = equipment
	}
	return body
}

// Saturday 2026-03-07, UTC.
func sat(hour int) time.Time {
	return time.Date(2026, 3, 7, hour, 0, 0, 0, time.UTC)
}

func TestBookingFlow(t *testing.T) {
	a := newTestApp(t)
	aliceToken := a.token("alice", false)
	bobToken := a.token("bob", false)
	adminToken := a.token("admin", true)

	var bookingID string

	t.Run("Quote", func(t *testing.T) {
		w := a.do("POST", "/v1/quotes", reservation(catalogtest.IndoorCourtID, sat(19), sat(20), nil), "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		price := decode[bookingHttp.PriceResponse](t, w)
		assert.Equal(t, 65.0, price.Total)
		assert.Equal(t, 30.0, price.BasePrice)
	})

	t.Run("Book Requires Auth", func(t *testing.T) {
		w := a.do("POST", "/v1/bookings", reservation(catalogtest.IndoorCourtID, sat(19), sat(20), nil), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Book", func(t *testing.T) {
		w := a.do("POST", "/v1/bookings", reservation(catalogtest.IndoorCourtID, sat(19), sat(20), map[string]int{"racket": 2}), aliceToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		b := decode[bookingHttp.BookingResponse](t, w)
		assert.Equal(t, "alice", b.UserID)
		assert.Equal(t, "confirmed", b.Status)
		assert.Equal(t, 71.0, b.PricingBreakdown.Total)
		assert.Equal(t, 2, b.Equipment["racket"])
		assert.Nil(t, b.CoachID)
		bookingID = b.ID
	})

	t.Run("Overlap Conflict", func(t *testing.T) {
		w := a.do("POST", "/v1/bookings", reservation(catalogtest.IndoorCourtID, sat(19), sat(21), nil), bobToken)
		require.Equal(t, http.StatusConflict, w.Code)
		resp := decode[response.ErrorResponse](t, w)
		assert.Equal(t, "availability_conflict", resp.Code)
		assert.Equal(t, "court:"+catalogtest.IndoorCourtID, resp.Resource)
	})

	t.Run("Availability Grid", func(t *testing.T) {
		w := a.do("GET", "/v1/availability?date=2026-03-07", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		grid := decode[availHttp.GridResponse](t, w)
		require.Len(t, grid.Courts, 2)
		for _, court := range grid.Courts {
			require.Len(t, court.Slots, 14)
			for _, slot := range court.Slots {
				busy := court.Court.ID == catalogtest.IndoorCourtID && slot.StartTime.Equal(sat(19))
				assert.Equal(t, !busy, slot.Available, "%s %s", court.Court.Name, slot.Hour)
			}
		}
	})

	t.Run("Get Permissions", func(t *testing.T) {
		path := fmt.Sprintf("/v1/bookings/%s", bookingID)
		assert.Equal(t, http.StatusOK, a.do("GET", path, nil, aliceToken).Code)
		assert.Equal(t, http.StatusForbidden, a.do("GET", path, nil, bobToken).Code)
		assert.Equal(t, http.StatusOK, a.do("GET", path, nil, adminToken).Code)
		assert.Equal(t, http.StatusBadRequest, a.do("GET", "/v1/bookings/not-a-uuid", nil, aliceToken).Code)
	})

	t.Run("List Mine", func(t *testing.T) {
		w := a.do("GET", "/v1/bookings/me", nil, aliceToken)
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[response.PageResponse[bookingHttp.BookingResponse]](t, w)
		assert.Equal(t, 1, page.Total)

		w = a.do("GET", "/v1/bookings/me", nil, bobToken)
		page = decode[response.PageResponse[bookingHttp.BookingResponse]](t, w)
		assert.Equal(t, 0, page.Total)
		assert.NotNil(t, page.Items)
	})

	t.Run("Admin List", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, a.do("GET", "/v1/bookings", nil, aliceToken).Code)

		w := a.do("GET", "/v1/bookings?date=2026-03-07&status=confirmed", nil, adminToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		page := decode[response.PageResponse[bookingHttp.BookingResponse]](t, w)
		assert.Equal(t, 1, page.Total)

		assert.Equal(t, http.StatusBadRequest, a.do("GET", "/v1/bookings?status=pending", nil, adminToken).Code)
	})

	t.Run("Cancel", func(t *testing.T) {
		path := fmt.Sprintf("/v1/bookings/%s/cancel", bookingID)
		assert.Equal(t, http.StatusForbidden, a.do("POST", path, nil, bobToken).Code)

		w := a.do("POST", path, nil, aliceToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		b := decode[bookingHttp.BookingResponse](t, w)
		assert.Equal(t, "cancelled", b.Status)
		assert.Equal(t, 71.0, b.PricingBreakdown.Total)

		w = a.do("POST", path, nil, aliceToken)
		require.Equal(t, http.StatusConflict, w.Code)
		resp := decode[response.ErrorResponse](t, w)
		assert.Equal(t, "invalid_state_transition", resp.Code)
	})

	t.Run("Rebook Freed Slot", func(t *testing.T) {
		w := a.do("POST", "/v1/bookings", reservation(catalogtest.IndoorCourtID, sat(19), sat(20), nil), bobToken)
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})
}

func TestBookingValidation(t *testing.T) {
	a := newTestApp(t)
	token := a.token("alice", false)

	tests := []struct {
		name string
		body map[string]any
		code int
		kind string
	}{
		{"unknown equipment", reservation(catalogtest.IndoorCourtID, sat(10), sat(11), map[string]int{"ball": 1}), http.StatusBadRequest, "validation_error"},
		{"negative equipment", reservation(catalogtest.IndoorCourtID, sat(10), sat(11), map[string]int{"racket": -1}), http.StatusBadRequest, "validation_error"},
		{"reversed interval", reservation(catalogtest.IndoorCourtID, sat(11), sat(10), nil), http.StatusBadRequest, "validation_error"},
		{"court id not uuid", reservation("court-1", sat(10), sat(11), nil), http.StatusBadRequest, "validation_error"},
		{"unknown court", reservation(catalogtest.UnknownCourtID, sat(10), sat(11), nil), http.StatusNotFound, "not_found"},
		{"inactive court", reservation(catalogtest.ClosedCourtID, sat(10), sat(11), nil), http.StatusUnprocessableEntity, "inactive_resource"},
		{"equipment over stock", reservation(catalogtest.IndoorCourtID, sat(10), sat(11), map[string]int{"shoes": catalogtest.ShoesStock + 1}), http.StatusConflict, "availability_conflict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do("POST", "/v1/bookings", tt.body, token)
			require.Equal(t, tt.code, w.Code, w.Body.String())
			resp := decode[response.ErrorResponse](t, w)
			assert.Equal(t, tt.kind, resp.Code)
		})
	}
}

func TestCatalogEndpoints(t *testing.T) {
	a := newTestApp(t)

	w := a.do("GET", "/v1/courts", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	courts := decode[struct {
		Items []map[string]any `json:"items"`
	}](t, w)
	assert.Len(t, courts.Items, 2)

	w = a.do("GET", "/v1/coaches", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"day":"Saturday","start":"08:00","end":"20:00"`)

	w = a.do("GET", "/v1/equipment", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"racket"`)

	w = a.do("GET", "/v1/pricing-rules", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	rules := decode[struct {
		Items []map[string]any `json:"items"`
	}](t, w)
	require.Len(t, rules.Items, 3)
	assert.Equal(t, "peak_hour", rules.Items[0]["type"])
}

func TestAvailabilityRequiresDate(t *testing.T) {
	a := newTestApp(t)
	assert.Equal(t, http.StatusBadRequest, a.do("GET", "/v1/availability", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, a.do("GET", "/v1/availability?date=tomorrow", nil, "").Code)
}
