// Package cart aggregates a shopper's line items and computes order totals.
//
// Each cart holds at most one line per (productId, size) pair; repeated
// additions increment quantity. Lines carry stable synthetic IDs generated
// at insertion, so removal is unambiguous even after other mutations.
package cart

import (
	"context"
	"errors"
	"time"
)

var (
	ErrLineNotFound  = errors.New("cart: line item not found")
	ErrUnknownProduct = errors.New("cart: unknown product")
)

// Shipping policy constants (minor currency units). Orders strictly above
// the threshold ship free; a subtotal of exactly 5000 still pays the fee.
const (
	FreeShippingThreshold int64 = 5000
	FlatShippingFee       int64 = 99
)

// LineItem is one cart line. Quantity is always >= 1.
type LineItem struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Size      string `json:"size,omitempty"`
	UnitValue int64  `json:"unitValue"`
	Quantity  int    `json:"quantity"`
}

// Cart is the full set of line items for one shopper.
type Cart struct {
	UserHash  string     `json:"userHash"`
	Lines     []LineItem `json:"lines"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// IsEmpty returns true when the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// ItemCount returns the number of distinct lines (not total quantity),
// matching what the cart badge displays.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	return len(c.Lines)
}

// Clone returns a deep copy. Snapshots handed to assessment and totals must
// never observe a cart mutated mid-computation.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cp := &Cart{
		UserHash:  c.UserHash,
		Lines:     make([]LineItem, len(c.Lines)),
		UpdatedAt: c.UpdatedAt,
	}
	copy(cp.Lines, c.Lines)
	return cp
}

// findLine locates a line by merge key (productId, size).
func (c *Cart) findLine(productID, size string) *LineItem {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID && c.Lines[i].Size == size {
			return &c.Lines[i]
		}
	}
	return nil
}

// Totals is the priced summary of a cart snapshot.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Total    int64 `json:"total"`
}

// ComputeTotals is pure: subtotal is the exact sum of unitValue*quantity,
// shipping follows the strictly-above-threshold rule, and an empty cart
// owes nothing.
func ComputeTotals(c *Cart) Totals {
	var subtotal int64
	if c != nil {
		for _, line := range c.Lines {
			subtotal += line.UnitValue * int64(line.Quantity)
		}
	}

	var shipping int64
	if subtotal > 0 && subtotal <= FreeShippingThreshold {
		shipping = FlatShippingFee
	}

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal + shipping,
	}
}

// Store persists carts keyed by user hash.
type Store interface {
	// Get returns the shopper's cart, or a fresh empty cart when none exists.
	Get(ctx context.Context, userHash string) (*Cart, error)
	Put(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, userHash string) error
}
