package event

// Event schema constants for store change notifications.
const (
	SchemaVersion = 1

	AggregateTypeStore = "Store"

	TypeStoreCreated = "StoreCreated"
	TypeStoreUpdated = "StoreUpdated"
	TypeStoreDeleted = "StoreDeleted"
)

// StoreSnapshot is the state of a store at the moment a change is enqueued.
type StoreSnapshot struct {
	ID                      int64
	Name                    string
	QuantityProductsInStock int
}

// StoreChangedPayload is the wire payload delivered to the legacy store manager.
type StoreChangedPayload struct {
	StoreID                 int64  `json:"storeId"`
	Name                    string `json:"name"`
	QuantityProductsInStock int    `json:"quantityProductsInStock"`
}

// NewStoreChangedPayload builds the payload from a store snapshot.
func NewStoreChangedPayload(s StoreSnapshot) StoreChangedPayload {
	return StoreChangedPayload{
		StoreID:                 s.ID,
		Name:                    s.Name,
		QuantityProductsInStock: s.QuantityProductsInStock,
	}
}
