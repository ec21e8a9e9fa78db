// Package cart keeps a locally displayed cart consistent with the remote
// authoritative cart. Mutations are applied optimistically for immediate
// feedback; a failed remote update rolls the line back to its prior quantity,
// while a failed removal resynchronizes by reloading the whole snapshot.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"marketplace-client/models"
)

// RemoteCart is the slice of the marketplace backend the cart screen talks to.
type RemoteCart interface {
	GetCart(ctx context.Context, userID string) (*models.CartSnapshot, error)
	UpdateCartItemQuantity(ctx context.Context, userID, lineID string, quantity int) error
	RemoveFromCart(ctx context.Context, userID, lineID string) error
	ClearCart(ctx context.Context, userID string) error
}

// ErrInsufficientStock is returned when a quantity change would exceed the
// line's available stock. The change is rejected before any remote call.
var ErrInsufficientStock = errors.New("insufficient stock")

// Session owns the cart state for one screen. It is created on screen focus
// and reloads its snapshot rather than sharing state with other screens.
type Session struct {
	remote        RemoteCart
	userID        string
	shippingCents int64
	logger        *zap.Logger

	mu       sync.Mutex
	lines    []models.CartLine
	updating map[string]bool
	loading  bool
}

func NewSession(remote RemoteCart, userID string, shippingCents int64, logger *zap.Logger) *Session {
	return &Session{
		remote:        remote,
		userID:        userID,
		shippingCents: shippingCents,
		logger:        logger,
		updating:      make(map[string]bool),
	}
}

// Load replaces local state with the remote snapshot. Overlapping loads are
// not deduplicated; the last response to arrive wins.
func (s *Session) Load(ctx context.Context) error {
	snap, err := s.remote.GetCart(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	var lines []models.CartLine
	if snap != nil {
		// The list carries no duplicate IDs; the first occurrence wins.
		seen := make(map[string]struct{}, len(snap.Lines))
		lines = make([]models.CartLine, 0, len(snap.Lines))
		for _, line := range snap.Lines {
			if _, ok := seen[line.ID]; ok {
				continue
			}
			seen[line.ID] = struct{}{}
			lines = append(lines, line)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = lines
	s.updating = make(map[string]bool)
	return nil
}

// ChangeQuantity applies delta to a line's quantity. An absent line is a
// no-op. A result of zero or less removes the line instead; the decrement
// gesture itself stands as the confirmation on this path, while the explicit
// delete control is confirmed separately by its caller. A change beyond
// available stock is rejected locally with ErrInsufficientStock and issues no
// remote call. Otherwise the new quantity is applied optimistically and rolled
// back to the pre-change value if the remote update fails.
func (s *Session) ChangeQuantity(ctx context.Context, lineID string, delta int) error {
	s.mu.Lock()
	idx := s.indexOf(lineID)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}

	line := s.lines[idx]
	newQty := line.Quantity + delta
	if newQty <= 0 {
		s.mu.Unlock()
		return s.Remove(ctx, lineID)
	}
	if line.AvailableStock != nil && newQty > *line.AvailableStock {
		s.mu.Unlock()
		return fmt.Errorf("%w: only %d of %q available", ErrInsufficientStock, *line.AvailableStock, line.Name)
	}
	if newQty < 1 {
		newQty = 1
	}

	prev := line.Quantity
	s.lines[idx].Quantity = newQty
	s.updating[lineID] = true
	s.mu.Unlock()

	err := s.remote.UpdateCartItemQuantity(ctx, s.userID, lineID, newQty)

	s.mu.Lock()
	delete(s.updating, lineID)
	if err != nil {
		if i := s.indexOf(lineID); i >= 0 {
			s.lines[i].Quantity = prev
		}
		s.mu.Unlock()
		return fmt.Errorf("update quantity: %w", err)
	}
	s.mu.Unlock()
	return nil
}

// Remove takes the line out of local state immediately. If the remote removal
// fails the line is not reinserted point-wise; the whole snapshot is reloaded
// to resynchronize.
func (s *Session) Remove(ctx context.Context, lineID string) error {
	s.mu.Lock()
	idx := s.indexOf(lineID)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	s.mu.Unlock()

	if err := s.remote.RemoveFromCart(ctx, s.userID, lineID); err != nil {
		if lerr := s.Load(ctx); lerr != nil {
			s.logger.Warn("cart resync after failed removal",
				zap.String("line_id", lineID),
				zap.Error(lerr),
			)
		}
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}

// Clear empties the cart, all or nothing: local state is only dropped once
// the remote clear succeeds.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	err := s.remote.ClearCart(ctx, s.userID)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("clear cart: %w", err)
	}
	s.lines = nil
	s.mu.Unlock()
	return nil
}

// Lines returns a copy of the current cart lines.
func (s *Session) Lines() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartLine(nil), s.lines...)
}

// IsUpdating reports whether a remote update for the line is outstanding.
// Advisory only: callers may disable controls, but re-entry is not blocked.
func (s *Session) IsUpdating(lineID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updating[lineID]
}

// Loading reports whether a full-list operation is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Totals recomputes the derived amounts from the current lines on every call.
func (s *Session) Totals() models.CartTotals {
	s.mu.Lock()
	defer s.mu.Unlock()

	var subtotal int64
	for _, line := range s.lines {
		subtotal += line.UnitPriceCents * int64(line.Quantity)
	}
	total := subtotal + s.shippingCents
	return models.CartTotals{
		SubtotalCents:    subtotal,
		ShippingCents:    s.shippingCents,
		TotalCents:       total,
		InstallmentCents: total / 12,
	}
}

// indexOf requires s.mu held.
func (s *Session) indexOf(lineID string) int {
	for i := range s.lines {
		if s.lines[i].ID == lineID {
			return i
		}
	}
	return -1
}
