package address_test

import (
	"context"
	"testing"

	"github.com/avsoarsa/global-gourmet/internal/address"
	"github.com/avsoarsa/global-gourmet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validUS() domain.Address {
	return domain.Address{
		FullName:   "Pat Doe",
		Line1:      "1 Market St",
		City:       "San Francisco",
		State:      "ca",
		PostalCode: "94105",
		Country:    "us",
	}
}

func TestBasicValidator_NormalizesRegionCodes(t *testing.T) {
	v := address.NewBasicValidator()

	result, err := v.Validate(context.Background(), validUS())

	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, "CA", result.Normalized.State)
	assert.Equal(t, "US", result.Normalized.Country)
}

func TestBasicValidator_TruncatesZipPlus4(t *testing.T) {
	v := address.NewBasicValidator()
	addr := validUS()
	addr.PostalCode = "94105-1804"

	result, err := v.Validate(context.Background(), addr)

	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, "94105", result.Normalized.PostalCode)
}

func TestBasicValidator_RejectsBadZip(t *testing.T) {
	v := address.NewBasicValidator()
	addr := validUS()
	addr.PostalCode = "9410"

	result, err := v.Validate(context.Background(), addr)

	require.NoError(t, err)
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "postal_code", result.Errors[0].Field)

	vErr := result.AsValidationError("checkout.shipping")
	assert.True(t, domain.IsValidationError(vErr))
}

func TestBasicValidator_IndiaPin(t *testing.T) {
	v := address.NewBasicValidator()
	addr := domain.Address{
		FullName:   "Asha Rao",
		Line1:      "12 MG Road",
		City:       "Bengaluru",
		State:      "Karnataka",
		PostalCode: "560001",
		Country:    "IN",
	}

	result, err := v.Validate(context.Background(), addr)

	require.NoError(t, err)
	assert.True(t, result.IsValid)

	addr.PostalCode = "5600"
	result, err = v.Validate(context.Background(), addr)
	require.NoError(t, err)
	assert.False(t, result.IsValid)
}

func TestBasicValidator_RequiredFields(t *testing.T) {
	v := address.NewBasicValidator()

	result, err := v.Validate(context.Background(), domain.Address{})

	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.GreaterOrEqual(t, len(result.Errors), 4)
}
