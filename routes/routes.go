package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"marketplace-client/controllers"
	"marketplace-client/middleware"
)

const (
	rateWindow = time.Second / 20
	rateBurst  = 40
)

func RegisterRoutes(r *gin.Engine, jwtSecret string, cartCtrl *controllers.CartController, notifCtrl *controllers.NotificationController) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/")
	api.Use(middleware.RateLimitMiddleware(rate.Every(rateWindow), rateBurst))
	api.Use(middleware.AuthMiddleware(jwtSecret))
	{
		api.GET("/cart", cartCtrl.GetCart)
		api.POST("/cart/items/:line_id/quantity", cartCtrl.ChangeQuantity)
		api.DELETE("/cart/items/:line_id", cartCtrl.RemoveItem)
		api.DELETE("/cart", cartCtrl.ClearCart)

		api.GET("/notifications", notifCtrl.List)
		api.GET("/notifications/state", notifCtrl.State)
		api.POST("/notifications/:id/read", notifCtrl.MarkRead)
		api.POST("/notifications/read-all", notifCtrl.MarkAllRead)
		api.DELETE("/notifications/session", notifCtrl.CloseSession)
	}
}
