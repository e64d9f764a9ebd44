package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecimalTag(t *testing.T) {
	for _, ok := range []string{"10", "0", "12.50", "0.99"} {
		assert.NoError(t, ValidateVar(ok, "decimal"), ok)
	}
	for _, bad := range []string{"ten", "-1", "1,50", ""} {
		assert.Error(t, ValidateVar(bad, "decimal"), bad)
	}
}

func TestCountTag(t *testing.T) {
	for _, ok := range []string{"0", "5", "08", "120", "2147483647"} {
		assert.NoError(t, ValidateVar(ok, "count"), ok)
	}
	for _, bad := range []string{"5.5", "-2", "many", "2147483648", "3000000000", "99999999999999999999"} {
		assert.Error(t, ValidateVar(bad, "count"), bad)
	}
}

func TestValidateStruct(t *testing.T) {
	type credentials struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=6"`
	}

	assert.Empty(t, ValidateStruct(credentials{Email: "a@b.com", Password: "secret"}))

	errs := ValidateStruct(credentials{Email: "nope", Password: "123"})
	if assert.Len(t, errs, 2) {
		assert.Equal(t, "email", errs[0].Tag)
		assert.Equal(t, "min", errs[1].Tag)
		assert.Equal(t, "6", errs[1].Value)
	}
}
