package store

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-storefront/internal/config"
	"sync"
	"testing"
	"time"
)

type rec struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

func backends(t *testing.T) map[string]RecordStore {
	t.Helper()
	f, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	return map[string]RecordStore{"memory": NewMemory(), "file": f}
}

func TestGetMissingKey(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), "nope")
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestCollectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c := Collection[rec]{Store: s, Key: CartKey("u1")}

			got, err := c.ReadAll(ctx)
			if err != nil {
				t.Fatalf("ReadAll empty: %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Fatalf("empty collection = %#v, want empty non-nil slice", got)
			}

			want := []rec{{ID: "a", Qty: 1}, {ID: "b", Qty: 2}}
			if err := c.WriteAll(ctx, want); err != nil {
				t.Fatalf("WriteAll: %v", err)
			}
			got, err = c.ReadAll(ctx)
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
				t.Fatalf("ReadAll = %#v", got)
			}

			// a write replaces the whole collection
			if err := c.WriteAll(ctx, nil); err != nil {
				t.Fatalf("WriteAll nil: %v", err)
			}
			got, _ = c.ReadAll(ctx)
			if len(got) != 0 {
				t.Fatalf("after clear = %#v", got)
			}
		})
	}
}

func TestValueReadWrite(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			v := Value[int]{Store: s, Key: KeyOrderCounter}
			if _, ok, err := v.Read(ctx); err != nil || ok {
				t.Fatalf("Read absent = ok %v err %v", ok, err)
			}
			if err := v.Write(ctx, 7); err != nil {
				t.Fatalf("Write: %v", err)
			}
			n, ok, err := v.Read(ctx)
			if err != nil || !ok || n != 7 {
				t.Fatalf("Read = %d %v %v", n, ok, err)
			}
		})
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	in := []byte("abc")
	_ = m.Put(ctx, "k", in)
	in[0] = 'x'
	out, _ := m.Get(ctx, "k")
	if string(out) != "abc" {
		t.Fatalf("stored value mutated through caller slice: %q", out)
	}
}

func TestFileKeyWithSeparators(t *testing.T) {
	ctx := context.Background()
	f, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := IdemOrderKey("user/1", "k:2")
	if err := f.Put(ctx, key, []byte(`"o1"`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	b, err := f.Get(ctx, key)
	if err != nil || string(b) != `"o1"` {
		t.Fatalf("Get = %q %v", b, err)
	}
}

func TestLockerSerialisesSameKey(t *testing.T) {
	l := NewLocker()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(KeyOrders)
			defer unlock()
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("max concurrent holders = %d, want 1", maxSeen)
	}
}

func TestLockerIndependentKeys(t *testing.T) {
	l := NewLocker()
	unlockA := l.Lock(CartKey("a"))
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := l.Lock(CartKey("b"))
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.Config{StoreDriver: "floppy"})
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestOpenMemory(t *testing.T) {
	s, err := Open(context.Background(), config.Config{StoreDriver: "memory"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Fatalf("Open(memory) = %T", s)
	}
}

func TestDynamoDBRejectsOversizedRecord(t *testing.T) {
	d := &DynamoDB{Table: "t"} // no client: the size check runs first
	err := d.Put(context.Background(), KeyOrders, make([]byte, dynamoMaxBody+1))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
}
