package controllers

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketplace-client/middleware"
	"marketplace-client/notification"
)

type NotificationController struct {
	remote notification.RemoteNotifications
	feed   notification.Feed
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*notification.Session
}

func NewNotificationController(remote notification.RemoteNotifications, feed notification.Feed, logger *zap.Logger) *NotificationController {
	return &NotificationController{
		remote:   remote,
		feed:     feed,
		logger:   logger,
		sessions: make(map[string]*notification.Session),
	}
}

func (nc *NotificationController) session(userID string) *notification.Session {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	sess, ok := nc.sessions[userID]
	if !ok {
		sess = notification.NewSession(nc.remote, nc.feed, userID, nc.logger)
		nc.sessions[userID] = sess
	}
	return sess
}

func (nc *NotificationController) state(c *gin.Context, sess *notification.Session) {
	c.JSON(http.StatusOK, gin.H{
		"notifications": sess.Items(),
		"unread_count":  sess.UnreadCount(),
	})
}

// List opens the user's session (subscribing to push if not yet subscribed)
// and loads the list with the requested filter. Stands in for the
// notifications screen gaining focus or the filter being toggled.
func (nc *NotificationController) List(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sess := nc.session(userID)
	sess.Open(c.Request.Context())

	unreadOnly := c.Query("unread") == "true"
	if err := sess.Load(c.Request.Context(), unreadOnly); err != nil {
		nc.logger.Error("notification load failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load notifications"})
		return
	}

	nc.state(c, sess)
}

// State returns the current in-memory list without reloading, so pushed
// notifications are visible between explicit loads.
func (nc *NotificationController) State(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	nc.state(c, nc.session(userID))
}

// MarkRead flags a single notification as read.
func (nc *NotificationController) MarkRead(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification ID"})
		return
	}

	sess := nc.session(userID)
	sess.MarkRead(c.Request.Context(), id)
	nc.state(c, sess)
}

// MarkAllRead flags every notification as read, all or nothing.
func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sess := nc.session(userID)
	if err := sess.MarkAllRead(c.Request.Context()); err != nil {
		nc.logger.Error("mark-all-read failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to mark all notifications read"})
		return
	}

	nc.state(c, sess)
}

// CloseSession tears the session down, releasing the push subscription.
// Stands in for the notifications screen unmounting. Idempotent.
func (nc *NotificationController) CloseSession(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	nc.mu.Lock()
	sess := nc.sessions[userID]
	delete(nc.sessions, userID)
	nc.mu.Unlock()

	if sess != nil {
		if err := sess.Close(); err != nil {
			nc.logger.Warn("subscription teardown failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "session closed"})
}
