package controllers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketplace-client/cart"
	"marketplace-client/middleware"
	"marketplace-client/models"
)

type CartController struct {
	remote        cart.RemoteCart
	shippingCents int64
	logger        *zap.Logger

	mu       sync.Mutex
	sessions map[string]*cart.Session
}

func NewCartController(remote cart.RemoteCart, shippingCents int64, logger *zap.Logger) *CartController {
	return &CartController{
		remote:        remote,
		shippingCents: shippingCents,
		logger:        logger,
		sessions:      make(map[string]*cart.Session),
	}
}

func (cc *CartController) session(userID string) *cart.Session {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	sess, ok := cc.sessions[userID]
	if !ok {
		sess = cart.NewSession(cc.remote, userID, cc.shippingCents, cc.logger)
		cc.sessions[userID] = sess
	}
	return sess
}

type cartLineView struct {
	models.CartLine
	UnitPrice string `json:"unit_price"`
	Updating  bool   `json:"updating"`
}

type cartTotalsView struct {
	models.CartTotals
	Subtotal    string `json:"subtotal"`
	Shipping    string `json:"shipping"`
	Total       string `json:"total"`
	Installment string `json:"installment"`
}

func (cc *CartController) render(c *gin.Context, sess *cart.Session) {
	lines := sess.Lines()
	views := make([]cartLineView, 0, len(lines))
	for _, line := range lines {
		views = append(views, cartLineView{
			CartLine:  line,
			UnitPrice: models.FormatCents(line.UnitPriceCents),
			Updating:  sess.IsUpdating(line.ID),
		})
	}

	totals := sess.Totals()
	c.JSON(http.StatusOK, gin.H{
		"items": views,
		"totals": cartTotalsView{
			CartTotals:  totals,
			Subtotal:    models.FormatCents(totals.SubtotalCents),
			Shipping:    models.FormatCents(totals.ShippingCents),
			Total:       models.FormatCents(totals.TotalCents),
			Installment: models.FormatCents(totals.InstallmentCents),
		},
	})
}

// GetCart loads a fresh snapshot for the user and returns it with totals.
// Stands in for the cart screen gaining focus.
func (cc *CartController) GetCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sess := cc.session(userID)
	if err := sess.Load(c.Request.Context()); err != nil {
		cc.logger.Error("cart load failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load cart"})
		return
	}

	cc.render(c, sess)
}

// ChangeQuantity applies a quantity delta to one line. A decrement that
// reaches zero removes the line without the delete control's confirm flag;
// the decrement is the user's explicit action here.
func (cc *CartController) ChangeQuantity(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Delta == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	sess := cc.session(userID)
	lineID := c.Param("line_id")

	if err := sess.ChangeQuantity(c.Request.Context(), lineID, req.Delta); err != nil {
		if errors.Is(err, cart.ErrInsufficientStock) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient stock for this item"})
			return
		}
		cc.logger.Error("quantity update failed",
			zap.String("user_id", userID),
			zap.String("line_id", lineID),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to update quantity"})
		return
	}

	cc.render(c, sess)
}

// RemoveItem removes one line. The client must confirm explicitly.
func (cc *CartController) RemoveItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "confirmation required"})
		return
	}

	sess := cc.session(userID)
	lineID := c.Param("line_id")

	if err := sess.Remove(c.Request.Context(), lineID); err != nil {
		cc.logger.Error("item removal failed",
			zap.String("user_id", userID),
			zap.String("line_id", lineID),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to remove item"})
		return
	}

	cc.render(c, sess)
}

// ClearCart removes all items from the cart. The client must confirm
// explicitly; on failure nothing is changed locally.
func (cc *CartController) ClearCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "confirmation required"})
		return
	}

	sess := cc.session(userID)
	if err := sess.Clear(c.Request.Context()); err != nil {
		cc.logger.Error("cart clear failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to clear cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}
