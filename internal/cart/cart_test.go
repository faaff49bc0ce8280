package cart

import (
	"context"
	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/identity"
	"github.com/ariefcatur/go-storefront/internal/store"
	"math"
	"testing"
)

var admin = identity.Principal{UserID: "admin", Role: identity.RoleAdmin}

type fixture struct {
	cart    *Service
	catalog *catalog.Service
	p1, p2  catalog.Product
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	st, locks := store.NewMemory(), store.NewLocker()
	cat := &catalog.Service{Store: st, Locks: locks}
	p1, err := cat.Create(ctx, admin, catalog.ProductInput{Name: "Kopi", Price: 10000, Stock: 5})
	if err != nil {
		t.Fatal(err)
	}
	p2, _ := cat.Create(ctx, admin, catalog.ProductInput{Name: "Teh", Price: 4000, Stock: 5})
	return fixture{
		cart:    &Service{Store: st, Locks: locks, Products: cat},
		catalog: cat,
		p1:      p1,
		p2:      p2,
	}
}

func TestGetEmptyCart(t *testing.T) {
	f := setup(t)
	lines, err := f.cart.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if lines == nil || len(lines) != 0 {
		t.Fatalf("lines = %#v, want empty slice", lines)
	}
}

func TestAddAggregatesSameProduct(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	if _, err := f.cart.Add(ctx, "u1", f.p1.ID, 2); err != nil {
		t.Fatal(err)
	}
	lines, err := f.cart.Add(ctx, "u1", f.p1.ID, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	if lines[0].Quantity != 5 || lines[0].Product == nil || lines[0].Product.Price != 10000 {
		t.Fatalf("line = %+v", lines[0])
	}

	lines, _ = f.cart.Add(ctx, "u1", f.p2.ID, 1)
	if len(lines) != 2 || lines[0].ProductID != f.p1.ID || lines[1].ProductID != f.p2.ID {
		t.Fatalf("order not preserved: %+v", lines)
	}
}

func TestAddRejects(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	if _, err := f.cart.Add(ctx, "u1", "missing", 1); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("missing product: %v", err)
	}
	if _, err := f.cart.Add(ctx, "u1", f.p1.ID, 0); !apperr.Is(err, apperr.InvalidArgument) {
		t.Fatalf("zero qty: %v", err)
	}
}

func TestQuantityCap(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	if _, err := f.cart.Add(ctx, "u1", f.p1.ID, math.MaxInt); !apperr.Is(err, apperr.InvalidArgument) {
		t.Fatalf("Add(MaxInt): %v", err)
	}
	if _, err := f.cart.Add(ctx, "u1", f.p1.ID, MaxQuantity); err != nil {
		t.Fatalf("Add(MaxQuantity): %v", err)
	}
	// growing the line past the cap must not wrap or store anything
	if _, err := f.cart.Add(ctx, "u1", f.p1.ID, 1); !apperr.Is(err, apperr.InvalidArgument) {
		t.Fatalf("Add over cap: %v", err)
	}
	items, _ := f.cart.Items(ctx, "u1")
	if len(items) != 1 || items[0].Quantity != MaxQuantity {
		t.Fatalf("items = %+v", items)
	}
	if _, err := f.cart.Update(ctx, "u1", items[0].ID, MaxQuantity+1); !apperr.Is(err, apperr.InvalidArgument) {
		t.Fatalf("Update over cap: %v", err)
	}
}

func TestCartsArePerUser(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, _ = f.cart.Add(ctx, "u1", f.p1.ID, 1)
	lines, _ := f.cart.Get(ctx, "u2")
	if len(lines) != 0 {
		t.Fatalf("u2 sees u1 items: %+v", lines)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	lines, _ := f.cart.Add(ctx, "u1", f.p1.ID, 1)
	id := lines[0].ID

	lines, err := f.cart.Update(ctx, "u1", id, 4)
	if err != nil || lines[0].Quantity != 4 {
		t.Fatalf("Update = %+v %v", lines, err)
	}
	if _, err := f.cart.Update(ctx, "u1", "nope", 1); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("Update missing: %v", err)
	}

	lines, err = f.cart.Update(ctx, "u1", id, 0)
	if err != nil {
		t.Fatalf("Update to 0: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("quantity 0 should remove the line, got %+v", lines)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	lines, _ := f.cart.Add(ctx, "u1", f.p1.ID, 2)

	after, err := f.cart.Remove(ctx, "u1", "not-there")
	if err != nil {
		t.Fatalf("Remove absent: %v", err)
	}
	if len(after) != 1 || after[0].ID != lines[0].ID || after[0].Quantity != 2 {
		t.Fatalf("cart changed: %+v", after)
	}

	after, err = f.cart.Remove(ctx, "u1", lines[0].ID)
	if err != nil || len(after) != 0 {
		t.Fatalf("Remove = %+v %v", after, err)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, _ = f.cart.Add(ctx, "u1", f.p1.ID, 2)
	for i := 0; i < 2; i++ {
		if err := f.cart.Clear(ctx, "u1"); err != nil {
			t.Fatalf("Clear #%d: %v", i, err)
		}
	}
	lines, _ := f.cart.Get(ctx, "u1")
	if len(lines) != 0 {
		t.Fatalf("lines = %+v", lines)
	}
}

func TestDeletedProductShowsAsNil(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, _ = f.cart.Add(ctx, "u1", f.p1.ID, 1)
	_, _ = f.cart.Add(ctx, "u1", f.p2.ID, 1)
	if err := f.catalog.Delete(ctx, admin, f.p1.ID); err != nil {
		t.Fatal(err)
	}
	lines, err := f.cart.Get(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 || lines[0].Product != nil || lines[1].Product == nil {
		t.Fatalf("lines = %+v", lines)
	}
}

func TestDrainClearsOnlyOnSuccess(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, _ = f.cart.Add(ctx, "u1", f.p1.ID, 2)

	boom := apperr.E(apperr.Inconsistent, "boom")
	err := f.cart.Drain(ctx, "u1", func(items []Item) error {
		if len(items) != 1 {
			t.Fatalf("drained %d items", len(items))
		}
		return boom
	})
	if err != boom {
		t.Fatalf("Drain err = %v", err)
	}
	if lines, _ := f.cart.Get(ctx, "u1"); len(lines) != 1 {
		t.Fatalf("cart cleared after failed drain: %+v", lines)
	}

	if err := f.cart.Drain(ctx, "u1", func([]Item) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if lines, _ := f.cart.Get(ctx, "u1"); len(lines) != 0 {
		t.Fatalf("cart not cleared: %+v", lines)
	}
}
