package orders

const (
	TopicOrderCreated = "storefront.order.created"
	TopicOrderStatus  = "storefront.order.status"
)

// Partition key = order_id so every event of one order stays in order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
