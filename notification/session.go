// Package notification presents a user's notification list, tracks the unread
// counter, and receives pushed notifications while the screen is open.
//
// Two distinct reconciliation policies coexist here on purpose: MarkRead keeps
// its optimistic change even when the backend call fails, while MarkAllRead
// touches nothing locally unless the backend reports success. The asymmetry
// mirrors the shipped product behavior and must not be unified silently.
package notification

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"go.uber.org/zap"

	"marketplace-client/models"
)

// RemoteNotifications is the slice of the marketplace backend the
// notification screen talks to.
type RemoteNotifications interface {
	GetUserNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID string, id int64) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error
}

// Feed delivers pushed notifications for a user until the returned handle is
// closed.
type Feed interface {
	Subscribe(ctx context.Context, userID string, onNew func(models.Notification)) (io.Closer, error)
}

// Session owns the notification state for one screen: the in-memory list, the
// unread counter derived from it, and at most one push subscription, released
// unconditionally on Close.
type Session struct {
	remote RemoteNotifications
	feed   Feed
	userID string
	logger *zap.Logger

	mu     sync.Mutex
	items  []models.Notification
	sub    io.Closer
	pulse  func()
	closed bool
}

func NewSession(remote RemoteNotifications, feed Feed, userID string, logger *zap.Logger) *Session {
	return &Session{
		remote: remote,
		feed:   feed,
		userID: userID,
		logger: logger,
	}
}

// SetPulse registers a cosmetic hook fired when a pushed notification lands.
func (s *Session) SetPulse(fn func()) {
	s.mu.Lock()
	s.pulse = fn
	s.mu.Unlock()
}

// Open establishes the push subscription. Calling Open on an already
// subscribed session is a no-op, so a session never holds more than one
// subscription. A subscription failure is logged and the screen stays usable
// without push; there is no automatic reconnection.
func (s *Session) Open(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.sub != nil {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	sub, err := s.feed.Subscribe(ctx, s.userID, s.handlePush)
	if err != nil {
		s.logger.Warn("notification subscription failed",
			zap.String("user_id", s.userID),
			zap.Error(err),
		)
		return
	}

	// An overlapping Open may have subscribed while the lock was released;
	// the session keeps one handle, so the extra one is closed right here.
	s.mu.Lock()
	if s.closed || s.sub != nil {
		s.mu.Unlock()
		_ = sub.Close()
		return
	}
	s.sub = sub
	s.mu.Unlock()
}

// Load replaces the in-memory list with a fresh fetch, most recent first.
// Toggling the unread filter is just a Load with the other flag.
func (s *Session) Load(ctx context.Context, unreadOnly bool) error {
	items, err := s.remote.GetUserNotifications(ctx, s.userID, unreadOnly)
	if err != nil {
		return fmt.Errorf("load notifications: %w", err)
	}

	sorted := append([]models.Notification(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.items = sorted
	return nil
}

// handlePush prepends the pushed notification regardless of the current
// filter; the filter only applies on the next explicit Load. Events arriving
// after Close are dropped.
func (s *Session) handlePush(n models.Notification) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.items = append([]models.Notification{n}, s.items...)
	pulse := s.pulse
	s.mu.Unlock()

	if pulse != nil {
		pulse()
	}
}

// MarkRead flags the matching item as read immediately. The remote call is
// awaited but a failure is only logged; the optimistic flag stays set.
func (s *Session) MarkRead(ctx context.Context, id int64) {
	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return
	}

	if err := s.remote.MarkNotificationRead(ctx, s.userID, id); err != nil {
		s.logger.Warn("mark-read not confirmed by backend",
			zap.Int64("notification_id", id),
			zap.Error(err),
		)
	}
}

// MarkAllRead flags every item as read only if the backend reports success.
// On failure the list and counter are left exactly as they were.
func (s *Session) MarkAllRead(ctx context.Context) error {
	if err := s.remote.MarkAllNotificationsRead(ctx, s.userID); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}

	s.mu.Lock()
	for i := range s.items {
		s.items[i].Read = true
	}
	s.mu.Unlock()
	return nil
}

// Items returns a copy of the current list, most recent first.
func (s *Session) Items() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.items...)
}

// UnreadCount is derived from the list on every call, never tracked apart.
func (s *Session) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for i := range s.items {
		if !s.items[i].Read {
			count++
		}
	}
	return count
}

// Close releases the push subscription and drops the session state. It is
// idempotent and runs on every exit path, including early unauthenticated
// returns handled by the owner.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	sub := s.sub
	s.sub = nil
	s.items = nil
	s.mu.Unlock()

	if sub != nil {
		return sub.Close()
	}
	return nil
}
