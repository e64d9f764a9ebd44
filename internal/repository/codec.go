package repository

import (
	"math"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"wings-inventory/internal/store"
	"wings-inventory/pkg/validator"
)

// Codec converts between a typed entity and its stored document.
type Codec[T any] interface {
	Encode(v T) store.Document
	Decode(rec store.Record) (T, error)
}

// Documenter is implemented by the model types.
type Documenter interface {
	ToDocument() store.Document
}

type structCodec[T Documenter] struct {
	setID func(v *T, id string)
}

// NewStructCodec encodes with the entity's ToDocument and decodes through
// mapstructure with lenient scalar conversion.
func NewStructCodec[T Documenter](setID func(v *T, id string)) Codec[T] {
	return structCodec[T]{setID: setID}
}

func (c structCodec[T]) Encode(v T) store.Document {
	return v.ToDocument()
}

func (c structCodec[T]) Decode(rec store.Record) (T, error) {
	var v T
	if err := decodeFields(rec.Fields, &v); err != nil {
		return v, err
	}
	if c.setID != nil {
		c.setID(&v, rec.ID)
	}
	return v, nil
}

func decodeFields(fields store.Document, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       lenientHook,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(fields))
}

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
)

// lenientHook accepts the mixed encodings found in stored documents: prices
// and quantities written as text or numbers, timestamps as text. A value that
// cannot be read decodes to the zero value instead of failing the document.
func lenientHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if data == nil {
		return reflect.Zero(to).Interface(), nil
	}
	switch {
	case to == decimalType:
		return toDecimal(data), nil
	case to == timeType:
		t, err := cast.ToTimeE(data)
		if err != nil {
			return time.Time{}, nil
		}
		return t, nil
	case to.Kind() == reflect.Int:
		return toCount(data), nil
	case to.Kind() == reflect.String:
		return cast.ToString(data), nil
	}
	return data, nil
}

func toDecimal(data any) decimal.Decimal {
	switch v := data.(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case float32:
		return decimal.NewFromFloat32(v)
	}
	s, err := cast.ToStringE(data)
	if err != nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// toCount reads a non-negative integer. Fractions are truncated.
func toCount(data any) int {
	// ToFloat64E rather than ToIntE: the latter reads "08" as octal.
	f, err := cast.ToFloat64E(data)
	if err != nil || math.IsNaN(f) || f < 0 || f > validator.MaxCount {
		return 0
	}
	return int(math.Trunc(f))
}
