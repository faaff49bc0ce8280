// Package orders turns a user's cart into an immutable order and tracks its
// status afterwards.
package orders

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/identity"
	"github.com/ariefcatur/go-storefront/internal/store"
	"github.com/google/uuid"
	"log"
	"math"
	"sort"
	"strings"
	"time"
)

type CartDrainer interface {
	Drain(ctx context.Context, userID string, fn func([]cart.Item) error) error
}

type ProductIndex interface {
	Index(ctx context.Context) (map[string]catalog.Product, error)
}

type UserLookup interface {
	Lookup(ctx context.Context, userID string) (identity.User, error)
}

type Service struct {
	Store    store.RecordStore
	Locks    *store.Locker
	Carts    CartDrainer
	Products ProductIndex
	Users    UserLookup
	Events   *Events
	Now      func() time.Time
}

// returned from inside Drain so a replayed checkout leaves the cart alone
var errReplay = errors.New("idempotent replay")

func (s *Service) orders() store.Collection[Order] {
	return store.Collection[Order]{Store: s.Store, Key: store.KeyOrders}
}

func (s *Service) counter() store.Value[int] {
	return store.Value[int]{Store: s.Store, Key: store.KeyOrderCounter}
}

func (s *Service) idem(userID, key string) store.Value[string] {
	return store.Value[string]{Store: s.Store, Key: store.IdemOrderKey(userID, key)}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func formatOrderNumber(n int) string { return fmt.Sprintf("%04d", n) }

// Create checks out the caller's cart. Prices are taken from the catalogue at
// this moment; the cart only ever stores product ids and quantities.
//
// idemKey is optional. A repeated key for the same user returns the order it
// first produced.
func (s *Service) Create(ctx context.Context, who identity.Principal, address, idemKey string) (Order, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Order{}, apperr.E(apperr.InvalidArgument, "shipping address is required")
	}
	idemKey = strings.TrimSpace(idemKey)

	user, err := s.Users.Lookup(ctx, who.UserID)
	if err != nil {
		return Order{}, err
	}

	var created Order
	err = s.Carts.Drain(ctx, who.UserID, func(items []cart.Item) error {
		if idemKey != "" {
			prev, ok, err := s.replay(ctx, who.UserID, idemKey)
			if err != nil {
				return err
			}
			if ok {
				created = prev
				return errReplay
			}
		}
		if len(items) == 0 {
			return apperr.E(apperr.FailedPrecondition, "cart is empty")
		}

		lines, total, err := s.price(ctx, items)
		if err != nil {
			return err
		}

		o, err := s.persist(ctx, Order{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			UserName:  user.Name,
			UserEmail: user.Email,
			Address:   address,
			Items:     lines,
			Total:     total,
			Status:    StatusPending,
		})
		if err != nil {
			return err
		}
		if idemKey != "" {
			if err := s.idem(who.UserID, idemKey).Write(ctx, o.ID); err != nil {
				log.Printf("orders: idempotency marker for %s: %v", o.ID, err)
			}
		}
		created = o
		return nil
	})
	// key sama -> kembalikan order pertama
	if errors.Is(err, errReplay) {
		return created, nil
	}
	if err != nil {
		return Order{}, err
	}

	if err := s.Events.orderCreated(ctx, created); err != nil {
		log.Printf("orders: publish created %s: %v", created.ID, err)
	}
	return created, nil
}

func (s *Service) replay(ctx context.Context, userID, key string) (Order, bool, error) {
	id, ok, err := s.idem(userID, key).Read(ctx)
	if err != nil {
		return Order{}, false, apperr.Wrap(apperr.Internal, err, "load idempotency key")
	}
	if !ok {
		return Order{}, false, nil
	}
	all, err := s.orders().ReadAll(ctx)
	if err != nil {
		return Order{}, false, apperr.Wrap(apperr.Internal, err, "load orders")
	}
	for _, o := range all {
		if o.ID == id {
			return o, true, nil
		}
	}
	// marker without its order: the earlier write failed half way
	return Order{}, false, nil
}

// price snapshots every cart line against the current catalogue. A line whose
// product no longer exists fails the whole checkout.
func (s *Service) price(ctx context.Context, items []cart.Item) ([]Item, int64, error) {
	idx, err := s.Products.Index(ctx)
	if err != nil {
		return nil, 0, err
	}
	lines := make([]Item, 0, len(items))
	var total int64
	for _, it := range items {
		p, ok := idx[it.ProductID]
		if !ok {
			return nil, 0, apperr.Ef(apperr.Inconsistent, "product %s in cart no longer exists", it.ProductID)
		}
		if it.Quantity < 1 || p.Price > math.MaxInt64/int64(it.Quantity) {
			return nil, 0, apperr.Ef(apperr.InvalidArgument, "line for %s is out of range", p.Name)
		}
		sub := p.Price * int64(it.Quantity)
		if total > math.MaxInt64-sub {
			return nil, 0, apperr.E(apperr.InvalidArgument, "order total is out of range")
		}
		lines = append(lines, Item{
			ProductID:   p.ID,
			ProductName: p.Name,
			Price:       p.Price,
			Quantity:    it.Quantity,
			Subtotal:    sub,
		})
		total += sub
	}
	return lines, total, nil
}

// persist assigns the next order number and appends o, all under the orders
// lock. The counter is written first so a failed append leaves a gap rather
// than a reused number.
func (s *Service) persist(ctx context.Context, o Order) (Order, error) {
	unlock := s.Locks.Lock(store.KeyOrders)
	defer unlock()

	all, err := s.orders().ReadAll(ctx)
	if err != nil {
		return Order{}, apperr.Wrap(apperr.Internal, err, "load orders")
	}
	last, _, err := s.counter().Read(ctx)
	if err != nil {
		return Order{}, apperr.Wrap(apperr.Internal, err, "load order counter")
	}
	n := max(last, len(all)) + 1
	if err := s.counter().Write(ctx, n); err != nil {
		return Order{}, apperr.Wrap(apperr.Internal, err, "save order counter")
	}

	now := s.now()
	o.OrderNumber = formatOrderNumber(n)
	o.CreatedAt = now
	o.UpdatedAt = now
	if err := s.orders().WriteAll(ctx, append(all, o)); err != nil {
		return Order{}, apperr.Wrap(apperr.Internal, err, "save order")
	}
	return o, nil
}

// List returns every order for admins and only the caller's own otherwise,
// newest first.
func (s *Service) List(ctx context.Context, who identity.Principal) ([]Order, error) {
	all, err := s.orders().ReadAll(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "load orders")
	}
	out := all
	if !who.IsAdmin() {
		out = make([]Order, 0, len(all))
		for _, o := range all {
			if o.UserID == who.UserID {
				out = append(out, o)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].OrderNumber > out[j].OrderNumber
	})
	return out, nil
}

func (s *Service) Get(ctx context.Context, who identity.Principal, id string) (Order, error) {
	all, err := s.orders().ReadAll(ctx)
	if err != nil {
		return Order{}, apperr.Wrap(apperr.Internal, err, "load orders")
	}
	for _, o := range all {
		if o.ID != id {
			continue
		}
		if err := identity.RequireOwnerOrAdmin(who, o.UserID); err != nil {
			return Order{}, err
		}
		return o, nil
	}
	return Order{}, apperr.E(apperr.NotFound, "order not found")
}

// UpdateStatus is admin-only. Only Status and UpdatedAt change.
func (s *Service) UpdateStatus(ctx context.Context, who identity.Principal, id, status string) (Order, error) {
	if err := identity.RequireAdmin(who); err != nil {
		return Order{}, err
	}
	to, err := ParseStatus(status)
	if err != nil {
		return Order{}, err
	}

	unlock := s.Locks.Lock(store.KeyOrders)
	all, err := s.orders().ReadAll(ctx)
	if err != nil {
		unlock()
		return Order{}, apperr.Wrap(apperr.Internal, err, "load orders")
	}
	i := -1
	for k := range all {
		if all[k].ID == id {
			i = k
			break
		}
	}
	if i < 0 {
		unlock()
		return Order{}, apperr.E(apperr.NotFound, "order not found")
	}
	from := all[i].Status
	if !CanTransition(from, to) {
		unlock()
		return Order{}, apperr.Ef(apperr.FailedPrecondition, "cannot move order from %s to %s", from, to)
	}
	all[i].Status = to
	all[i].UpdatedAt = s.now()
	if err := s.orders().WriteAll(ctx, all); err != nil {
		unlock()
		return Order{}, apperr.Wrap(apperr.Internal, err, "save order")
	}
	updated := all[i]
	unlock()

	if err := s.Events.statusChanged(ctx, updated.ID, from, to); err != nil {
		log.Printf("orders: publish status %s: %v", updated.ID, err)
	}
	return updated, nil
}
