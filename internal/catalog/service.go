package catalog

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/identity"
	"github.com/ariefcatur/go-storefront/internal/store"
	"github.com/google/uuid"
	"strings"
)

const placeholderImage = "https://via.placeholder.com/500"

type Service struct {
	Store store.RecordStore
	Locks *store.Locker
}

func (s *Service) products() store.Collection[Product] {
	return store.Collection[Product]{Store: s.Store, Key: store.KeyProducts}
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	ps, err := s.products().ReadAll(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "load products")
	}
	return ps, nil
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	ps, err := s.List(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, p := range ps {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, apperr.E(apperr.NotFound, "product not found")
}

// Index returns the catalogue keyed by id, for callers that resolve many lines.
func (s *Service) Index(ctx context.Context) (map[string]Product, error) {
	ps, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Product, len(ps))
	for _, p := range ps {
		out[p.ID] = p
	}
	return out, nil
}

func validate(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperr.E(apperr.InvalidArgument, "name is required")
	}
	if p.Price <= 0 {
		return apperr.E(apperr.InvalidArgument, "price must be a positive integer")
	}
	if p.Stock < 0 {
		return apperr.E(apperr.InvalidArgument, "stock must not be negative")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, who identity.Principal, in ProductInput) (Product, error) {
	if err := identity.RequireAdmin(who); err != nil {
		return Product{}, err
	}
	p := Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price,
		Description: in.Description,
		Image:       in.Image,
		Category:    in.Category,
		Stock:       in.Stock,
	}
	if p.Image == "" {
		p.Image = placeholderImage
	}
	if err := validate(p); err != nil {
		return Product{}, err
	}

	err := s.mutate(ctx, func(ps []Product) ([]Product, error) {
		return append(ps, p), nil
	})
	return p, err
}

func (s *Service) Update(ctx context.Context, who identity.Principal, id string, patch ProductPatch) (Product, error) {
	if err := identity.RequireAdmin(who); err != nil {
		return Product{}, err
	}
	var updated Product
	err := s.mutate(ctx, func(ps []Product) ([]Product, error) {
		for i := range ps {
			if ps[i].ID != id {
				continue
			}
			next := ps[i]
			patch.apply(&next)
			if err := validate(next); err != nil {
				return nil, err
			}
			ps[i] = next
			updated = next
			return ps, nil
		}
		return nil, apperr.E(apperr.NotFound, "product not found")
	})
	return updated, err
}

func (s *Service) Delete(ctx context.Context, who identity.Principal, id string) error {
	if err := identity.RequireAdmin(who); err != nil {
		return err
	}
	return s.mutate(ctx, func(ps []Product) ([]Product, error) {
		out := ps[:0]
		found := false
		for _, p := range ps {
			if p.ID == id {
				found = true
				continue
			}
			out = append(out, p)
		}
		if !found {
			return nil, apperr.E(apperr.NotFound, "product not found")
		}
		return out, nil
	})
}

// AddSold bumps the informational sold counter of one product.
func (s *Service) AddSold(ctx context.Context, productID string, qty int) error {
	return s.RecordSale(ctx, map[string]int{productID: qty})
}

// RecordSale adds every quantity in sold to its product in a single write.
// Unknown products are skipped; they may have been deleted after the order
// was placed. Stock is not touched.
func (s *Service) RecordSale(ctx context.Context, sold map[string]int) error {
	return s.mutate(ctx, func(ps []Product) ([]Product, error) {
		changed := false
		for i := range ps {
			if qty := sold[ps[i].ID]; qty > 0 {
				ps[i].Sold += qty
				changed = true
			}
		}
		if !changed {
			return nil, errSkip
		}
		return ps, nil
	})
}

// Seed writes the starter catalogue once per store. The marker under
// store.KeyCatalogSeeded keeps an admin-emptied catalogue empty across
// restarts; a store that already has products counts as seeded.
func (s *Service) Seed(ctx context.Context, seed []Product) (bool, error) {
	marker := store.Value[bool]{Store: s.Store, Key: store.KeyCatalogSeeded}
	seeded := false
	err := s.mutate(ctx, func(ps []Product) ([]Product, error) {
		done, _, err := marker.Read(ctx)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, err, "load seed marker")
		}
		if done {
			return nil, errSkip
		}
		if err := marker.Write(ctx, true); err != nil {
			return nil, apperr.Wrap(apperr.Internal, err, "save seed marker")
		}
		if len(ps) > 0 {
			return nil, errSkip
		}
		seeded = true
		return append([]Product(nil), seed...), nil
	})
	return seeded, err
}

var errSkip = errors.New("skip write")

// mutate runs one locked read-modify-write over the products collection.
// fn returning errSkip leaves the collection untouched without failing.
func (s *Service) mutate(ctx context.Context, fn func([]Product) ([]Product, error)) error {
	unlock := s.Locks.Lock(store.KeyProducts)
	defer unlock()

	ps, err := s.products().ReadAll(ctx)
	if err != nil {
		return apperr.Wrap(apperr.Internal, err, "load products")
	}
	next, err := fn(ps)
	if err == errSkip {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.products().WriteAll(ctx, next); err != nil {
		return apperr.Wrap(apperr.Internal, err, "save products")
	}
	return nil
}
