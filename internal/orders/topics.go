package orders

const (
	TopicOrderRecorded  = "boutique.order.recorded"
	TopicSessionExpired = "boutique.checkout.expired"
	TopicStockReleased  = "boutique.stock.released"
)

// Partition key = session or order id so related events stay ordered.
func PartitionKey(id string) []byte { return []byte(id) }
