package controllers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"marketplace-client/middleware"
	"marketplace-client/models"
)

// --- Mock remote ---

type mockCartRemote struct {
	snapshot  *models.CartSnapshot
	getErr    error
	updateErr error
	removeErr error
	clearErr  error
}

func (m *mockCartRemote) GetCart(_ context.Context, _ string) (*models.CartSnapshot, error) {
	return m.snapshot, m.getErr
}
func (m *mockCartRemote) UpdateCartItemQuantity(_ context.Context, _, _ string, _ int) error {
	return m.updateErr
}
func (m *mockCartRemote) RemoveFromCart(_ context.Context, _, _ string) error {
	return m.removeErr
}
func (m *mockCartRemote) ClearCart(_ context.Context, _ string) error {
	return m.clearErr
}

func testRouter(ctrl *CartController) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserContextKey, "user-1")
		c.Next()
	})
	router.GET("/cart", ctrl.GetCart)
	router.POST("/cart/items/:line_id/quantity", ctrl.ChangeQuantity)
	router.DELETE("/cart/items/:line_id", ctrl.RemoveItem)
	router.DELETE("/cart", ctrl.ClearCart)
	return router
}

func stock(n int) *int { return &n }

func TestGetCartController(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success - 200 OK with totals", func(t *testing.T) {
		remote := &mockCartRemote{snapshot: &models.CartSnapshot{
			UserID: "user-1",
			Lines: []models.CartLine{
				{ID: "A", Name: "Drone sprayer", UnitPriceCents: 10000, Quantity: 2},
			},
		}}
		ctrl := NewCartController(remote, 1500, zap.NewNop())
		router := testRouter(ctrl)

		req, _ := http.NewRequest(http.MethodGet, "/cart", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"subtotal_cents":20000`)
		assert.Contains(t, recorder.Body.String(), `"total_cents":21500`)
	})

	t.Run("Backend failure - 502", func(t *testing.T) {
		remote := &mockCartRemote{getErr: errors.New("backend unavailable")}
		ctrl := NewCartController(remote, 1500, zap.NewNop())
		router := testRouter(ctrl)

		req, _ := http.NewRequest(http.MethodGet, "/cart", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadGateway, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "failed to load cart")
	})
}

func TestChangeQuantityController(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Insufficient stock - 400", func(t *testing.T) {
		remote := &mockCartRemote{snapshot: &models.CartSnapshot{
			UserID: "user-1",
			Lines: []models.CartLine{
				{ID: "A", UnitPriceCents: 10000, Quantity: 3, AvailableStock: stock(3)},
			},
		}}
		ctrl := NewCartController(remote, 1500, zap.NewNop())
		router := testRouter(ctrl)

		// Focus the screen first so the session holds the snapshot.
		req, _ := http.NewRequest(http.MethodGet, "/cart", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)

		payload := `{"delta": 1}`
		req, _ = http.NewRequest(http.MethodPost, "/cart/items/A/quantity", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "insufficient stock")
	})

	t.Run("Invalid payload - 400", func(t *testing.T) {
		ctrl := NewCartController(&mockCartRemote{}, 1500, zap.NewNop())
		router := testRouter(ctrl)

		req, _ := http.NewRequest(http.MethodPost, "/cart/items/A/quantity", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestRemoveItemController(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Missing confirmation - 400", func(t *testing.T) {
		ctrl := NewCartController(&mockCartRemote{}, 1500, zap.NewNop())
		router := testRouter(ctrl)

		req, _ := http.NewRequest(http.MethodDelete, "/cart/items/A", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "confirmation required")
	})
}

func TestClearCartController(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Confirmed - 200", func(t *testing.T) {
		remote := &mockCartRemote{snapshot: &models.CartSnapshot{UserID: "user-1"}}
		ctrl := NewCartController(remote, 1500, zap.NewNop())
		router := testRouter(ctrl)

		req, _ := http.NewRequest(http.MethodDelete, "/cart?confirm=true", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "cart cleared")
	})

	t.Run("Backend failure - 502 and nothing cleared", func(t *testing.T) {
		remote := &mockCartRemote{clearErr: errors.New("backend unavailable")}
		ctrl := NewCartController(remote, 1500, zap.NewNop())
		router := testRouter(ctrl)

		req, _ := http.NewRequest(http.MethodDelete, "/cart?confirm=true", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadGateway, recorder.Code)
	})
}
