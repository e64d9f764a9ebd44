package model

import (
	"time"

	"wings-inventory/internal/store"
)

type TransactionType string

const (
	TxIn  TransactionType = "IN"
	TxOut TransactionType = "OUT"
)

// Transaction records one stock movement of a product. Quantity is always
// positive; Type gives the direction.
type Transaction struct {
	ID          string          `mapstructure:"-" json:"id"`
	ProductID   string          `mapstructure:"product_id" json:"product_id"`
	ProductName string          `mapstructure:"product_name" json:"product_name"`
	Type        TransactionType `mapstructure:"type" json:"type"`
	Quantity    int             `mapstructure:"quantity" json:"quantity"`
	Note        string          `mapstructure:"note" json:"note"`
	CreatedBy   string          `mapstructure:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time       `mapstructure:"created_at" json:"created_at"`
}

// MovementFor returns the transaction that takes a product from quantity from
// to quantity to, or false when nothing moved.
func MovementFor(p Product, from, to int, note string) (Transaction, bool) {
	tx := Transaction{ProductID: p.ID, ProductName: p.Name, Note: note}
	switch {
	case to > from:
		tx.Type, tx.Quantity = TxIn, to-from
	case to < from:
		tx.Type, tx.Quantity = TxOut, from-to
	default:
		return tx, false
	}
	return tx, true
}

func (t Transaction) ToDocument() store.Document {
	return store.Document{
		"product_id":   t.ProductID,
		"product_name": t.ProductName,
		"type":         string(t.Type),
		"quantity":     t.Quantity,
		"note":         t.Note,
		"created_by":   t.CreatedBy,
		"created_at":   Timestamp(t.CreatedAt),
	}
}

// StockMovementData is one day of the movement chart.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}
