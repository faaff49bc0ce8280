package store

import "fmt"

const (
	KeyUsers    = "users"
	KeyProducts = "products"
	KeyOrders   = "orders"

	// set once the starter catalogue has been written
	KeyCatalogSeeded = "seeded:products"

	// Monotonic order-number counter, survives restarts.
	KeyOrderCounter = "counter:orders"

	// cart:{user_id} -> []CartItem
	keyCart = "cart:%s"

	// idem:order:{user_id}:{idempotency_key} -> order_id
	keyIdemOrder = "idem:order:%s:%s"
)

func CartKey(userID string) string { return fmt.Sprintf(keyCart, userID) }

func IdemOrderKey(userID, key string) string { return fmt.Sprintf(keyIdemOrder, userID, key) }
