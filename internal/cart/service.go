package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/aashu2252/Fraud-Gaurd-AI/internal/catalog"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/idgen"
)

// Service owns cart mutations. One cart per shopper; all downstream
// consumers receive snapshots, never the live cart.
type Service struct {
	store Store
}

// NewService creates a cart service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Add merges a product+size into the shopper's cart: an existing line gets
// its quantity bumped, otherwise a new line is inserted with quantity 1.
// Always succeeds for known products.
func (s *Service) Add(ctx context.Context, userHash, productID, size string) (*Cart, error) {
	product, ok := catalog.ProductByID(productID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}

	c, err := s.store.Get(ctx, userHash)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	if line := c.findLine(productID, size); line != nil {
		line.Quantity++
	} else {
		c.Lines = append(c.Lines, LineItem{
			ID:        idgen.WithPrefix("line_"),
			ProductID: product.ID,
			Name:      product.Name,
			Category:  product.Category,
			Size:      size,
			UnitValue: product.Price,
			Quantity:  1,
		})
	}
	c.UpdatedAt = time.Now()

	if err := s.store.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return c, nil
}

// Remove deletes the line with the given stable ID. An unknown ID is a
// no-op: the line may already have been removed by a concurrent action.
func (s *Service) Remove(ctx context.Context, userHash, lineID string) (*Cart, error) {
	c, err := s.store.Get(ctx, userHash)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.UpdatedAt = time.Now()
			if err := s.store.Put(ctx, c); err != nil {
				return nil, fmt.Errorf("save cart: %w", err)
			}
			break
		}
	}
	return c, nil
}

// Clear empties the shopper's cart.
func (s *Service) Clear(ctx context.Context, userHash string) error {
	if err := s.store.Delete(ctx, userHash); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Snapshot returns an immutable copy of the current cart for assessment
// and totals computation.
func (s *Service) Snapshot(ctx context.Context, userHash string) (*Cart, error) {
	c, err := s.store.Get(ctx, userHash)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return c.Clone(), nil
}
