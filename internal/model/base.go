package model

import "time"

// Entity is a stored document with an opaque store-assigned id and a display name.
type Entity interface {
	EntityID() string
	DisplayName() string
}

// Collection names in the document store.
const (
	CollectionProducts     = "products"
	CollectionMembers      = "users"
	CollectionProfiles     = "profiles"
	CollectionAccounts     = "accounts"
	CollectionTransactions = "transactions"
)

// Timestamp is the document encoding for instants.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
