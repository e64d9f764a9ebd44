package model

import (
	"strings"

	"github.com/shopspring/decimal"

	"wings-inventory/internal/store"
)

// Product field names, in form order.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldPrice       = "price"
	FieldQuantity    = "quantity"
)

var ProductFields = []string{FieldName, FieldDescription, FieldCategory, FieldPrice, FieldQuantity}

// Product is one inventory item. Price and quantity are decoded leniently because
// older documents hold them as text.
type Product struct {
	ID          string          `mapstructure:"-" json:"id"`
	Name        string          `mapstructure:"name" json:"name"`
	Description string          `mapstructure:"description" json:"description"`
	Category    string          `mapstructure:"category" json:"category"`
	Price       decimal.Decimal `mapstructure:"price" json:"price"`
	Quantity    int             `mapstructure:"quantity" json:"quantity"`
}

func (p Product) EntityID() string    { return p.ID }
func (p Product) DisplayName() string { return p.Name }

// Value is price times quantity.
func (p Product) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// ToDocument encodes price as a decimal string so it round-trips exactly.
func (p Product) ToDocument() store.Document {
	return store.Document{
		FieldName:        p.Name,
		FieldDescription: p.Description,
		FieldCategory:    p.Category,
		FieldPrice:       p.Price.String(),
		FieldQuantity:    p.Quantity,
	}
}

// FormValues renders the product as the string field values of its form.
func (p Product) FormValues() map[string]string {
	return map[string]string{
		FieldName:        p.Name,
		FieldDescription: p.Description,
		FieldCategory:    p.Category,
		FieldPrice:       p.Price.String(),
		FieldQuantity:    decimal.NewFromInt(int64(p.Quantity)).String(),
	}
}

// WithValues returns a copy with form values applied. Values that do not parse
// leave the field unchanged.
func (p Product) WithValues(values map[string]string) Product {
	for name, v := range values {
		v = strings.TrimSpace(v)
		switch name {
		case FieldName:
			p.Name = v
		case FieldDescription:
			p.Description = v
		case FieldCategory:
			p.Category = v
		case FieldPrice:
			if d, err := decimal.NewFromString(v); err == nil {
				p.Price = d
			}
		case FieldQuantity:
			if d, err := decimal.NewFromString(v); err == nil && !d.IsNegative() {
				p.Quantity = int(d.IntPart())
			}
		}
	}
	return p
}
