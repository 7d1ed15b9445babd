package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress_RoundTrip(t *testing.T) {
	addr := Address{
		Name:       "Asha Rao",
		Street:     "12 MG Road",
		City:       "Bengaluru",
		PostalCode: "560001",
		Country:    "India",
		Attributes: Attributes{"landmark": json.RawMessage(`"near metro"`)},
	}

	data, err := json.Marshal(addr)
	require.NoError(t, err)

	var got Address
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, addr, got)
}

func TestAddress_UnknownFieldsBecomeAttributes(t *testing.T) {
	var got Address
	require.NoError(t, json.Unmarshal([]byte(`{"country":"USA","pincode":"10001","gift":true}`), &got))

	assert.Equal(t, "USA", got.Country)
	assert.Len(t, got.Attributes, 2)
	assert.JSONEq(t, `true`, string(got.Attributes["gift"]))
}

func TestAddress_KnownFieldWinsOverAttribute(t *testing.T) {
	addr := Address{Country: "India", Attributes: Attributes{"country": json.RawMessage(`"Nepal"`)}}
	data, err := json.Marshal(addr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"country":"India"}`, string(data))
}
