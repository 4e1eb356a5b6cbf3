package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type selectRequest struct {
	Dimension string `json:"dimension" validate:"required,oneof=color capacity memory"`
	Value     string `json:"value" validate:"required,max=64"`
	Price     int64  `json:"price" validate:"gte=0"`
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(selectRequest{Dimension: "color", Value: "Black"}))
}

func TestValidate_FieldMessages(t *testing.T) {
	err := Validate(selectRequest{Dimension: "size", Price: -1})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "must be one of: color capacity memory", fields["Dimension"])
	assert.Equal(t, "is required", fields["Value"])
	assert.Equal(t, "must be greater than or equal to 0", fields["Price"])
	assert.Contains(t, valErr.Error(), "field 'Value' is required")
}

func TestRegisterValidation(t *testing.T) {
	require.NoError(t, RegisterValidation("upper_test", func(v string) bool {
		return v == strings.ToUpper(v)
	}))

	type req struct {
		Code string `validate:"upper_test"`
	}
	assert.NoError(t, Validate(req{Code: "ABC"}))

	var valErr *ValidationError
	require.ErrorAs(t, Validate(req{Code: "abc"}), &valErr)
	assert.Equal(t, "failed on 'upper_test' validation", valErr.Fields()["Code"])
}

func TestDecodeAndValidate(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"dimension":"capacity","value":"256GB"}`))
		var dst selectRequest
		require.NoError(t, DecodeAndValidate(r, &dst))
		assert.Equal(t, "256GB", dst.Value)
	})

	t.Run("malformed json", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"dimension":`))
		var dst selectRequest
		err := DecodeAndValidate(r, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode request body")
	})

	t.Run("invalid fields", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"dimension":"weight","value":"x"}`))
		var dst selectRequest
		var valErr *ValidationError
		require.ErrorAs(t, DecodeAndValidate(r, &dst), &valErr)
	})
}
