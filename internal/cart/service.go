// Package cart owns the per-user shopping cart. Each user's items live under
// their own store key, so carts of different users never contend.
package cart

import (
	"context"
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/store"
	"github.com/google/uuid"
)

// Item is what is persisted: a product reference and a quantity, never a price.
type Item struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Line is an Item joined with the current product. Product is nil when the
// product has been deleted since it was added.
type Line struct {
	ID        string           `json:"id"`
	ProductID string           `json:"productId"`
	Quantity  int              `json:"quantity"`
	Product   *catalog.Product `json:"product"`
}

type ProductFinder interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
	Index(ctx context.Context) (map[string]catalog.Product, error)
}

type Service struct {
	Store    store.RecordStore
	Locks    *store.Locker
	Products ProductFinder
}

func (s *Service) items(userID string) store.Collection[Item] {
	return store.Collection[Item]{Store: s.Store, Key: store.CartKey(userID)}
}

// Items returns the raw cart without joining products.
func (s *Service) Items(ctx context.Context, userID string) ([]Item, error) {
	items, err := s.items(userID).ReadAll(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "load cart")
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, userID string) ([]Line, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, items)
}

func (s *Service) join(ctx context.Context, items []Item) ([]Line, error) {
	lines := make([]Line, 0, len(items))
	if len(items) == 0 {
		return lines, nil
	}
	idx, err := s.Products.Index(ctx)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		l := Line{ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity}
		if p, ok := idx[it.ProductID]; ok {
			l.Product = &p
		}
		lines = append(lines, l)
	}
	return lines, nil
}

// MaxQuantity caps a single cart line.
const MaxQuantity = 10_000

func tooMany() error {
	return apperr.Ef(apperr.InvalidArgument, "quantity must not exceed %d", MaxQuantity)
}

// Add puts qty of productID in the cart, growing the existing line if the
// product is already there.
func (s *Service) Add(ctx context.Context, userID, productID string, qty int) ([]Line, error) {
	if qty < 1 {
		return nil, apperr.E(apperr.InvalidArgument, "quantity must be at least 1")
	}
	if qty > MaxQuantity {
		return nil, tooMany()
	}
	if _, err := s.Products.Get(ctx, productID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, func(items []Item) ([]Item, error) {
		for i := range items {
			if items[i].ProductID == productID {
				if items[i].Quantity > MaxQuantity-qty {
					return nil, tooMany()
				}
				items[i].Quantity += qty
				return items, nil
			}
		}
		return append(items, Item{ID: uuid.NewString(), ProductID: productID, Quantity: qty}), nil
	})
}

// Update sets the quantity of an existing line. A quantity below 1 removes
// the line, the same thing the storefront's minus button does at 1.
func (s *Service) Update(ctx context.Context, userID, itemID string, qty int) ([]Line, error) {
	if qty > MaxQuantity {
		return nil, tooMany()
	}
	return s.mutate(ctx, userID, func(items []Item) ([]Item, error) {
		for i := range items {
			if items[i].ID != itemID {
				continue
			}
			if qty < 1 {
				return append(items[:i], items[i+1:]...), nil
			}
			items[i].Quantity = qty
			return items, nil
		}
		return nil, apperr.E(apperr.NotFound, "cart item not found")
	})
}

// Remove is a no-op when the item is not in the cart.
func (s *Service) Remove(ctx context.Context, userID, itemID string) ([]Line, error) {
	return s.mutate(ctx, userID, func(items []Item) ([]Item, error) {
		out := items[:0]
		for _, it := range items {
			if it.ID != itemID {
				out = append(out, it)
			}
		}
		return out, nil
	})
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	unlock := s.Locks.Lock(store.CartKey(userID))
	defer unlock()
	if err := s.items(userID).WriteAll(ctx, nil); err != nil {
		return apperr.Wrap(apperr.Internal, err, "save cart")
	}
	return nil
}

// Drain hands the current cart to fn while holding the cart lock and empties
// the cart only if fn succeeds. Nothing can be added between the snapshot and
// the clear, so the items fn saw are exactly the ones removed.
func (s *Service) Drain(ctx context.Context, userID string, fn func([]Item) error) error {
	unlock := s.Locks.Lock(store.CartKey(userID))
	defer unlock()

	items, err := s.items(userID).ReadAll(ctx)
	if err != nil {
		return apperr.Wrap(apperr.Internal, err, "load cart")
	}
	if err := fn(items); err != nil {
		return err
	}
	if err := s.items(userID).WriteAll(ctx, nil); err != nil {
		return apperr.Wrap(apperr.Internal, err, "clear cart")
	}
	return nil
}

func (s *Service) mutate(ctx context.Context, userID string, fn func([]Item) ([]Item, error)) ([]Line, error) {
	unlock := s.Locks.Lock(store.CartKey(userID))
	items, err := s.items(userID).ReadAll(ctx)
	if err != nil {
		unlock()
		return nil, apperr.Wrap(apperr.Internal, err, "load cart")
	}
	next, err := fn(items)
	if err != nil {
		unlock()
		return nil, err
	}
	if err := s.items(userID).WriteAll(ctx, next); err != nil {
		unlock()
		return nil, apperr.Wrap(apperr.Internal, err, "save cart")
	}
	unlock()
	return s.join(ctx, next)
}
