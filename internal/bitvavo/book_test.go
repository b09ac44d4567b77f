package bitvavo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitvavo-stream/internal/num"
)

func TestPriceLevelUnmarshal(t *testing.T) {
	var level PriceLevel
	require.NoError(t, json.Unmarshal([]byte(`["100.50", "2.0"]`), &level))
	assert.True(t, level.Price.Equal(num.MustParse("100.50")))
	assert.True(t, level.Quantity.Equal(num.MustParse("2.0")))
}

func TestPriceLevelUnmarshalWrongShape(t *testing.T) {
	var level PriceLevel
	assert.Error(t, json.Unmarshal([]byte(`["100.50"]`), &level), "one element")
	assert.Error(t, json.Unmarshal([]byte(`["100.50","2.0","x"]`), &level), "three elements")
	assert.Error(t, json.Unmarshal([]byte(`{"price":"100.50","quantity":"2.0"}`), &level), "object instead of array")
	assert.Error(t, json.Unmarshal([]byte(`[100.50, 2.0]`), &level), "numbers instead of strings")
}

func TestPriceLevelMarshalRoundTrip(t *testing.T) {
	var level PriceLevel
	require.NoError(t, json.Unmarshal([]byte(`["100.50","2.0"]`), &level))

	out, err := json.Marshal(level)
	require.NoError(t, err)
	assert.Equal(t, `["100.50","2.0"]`, string(out), "re-serialization is byte-identical")
}

func TestBookUnmarshal(t *testing.T) {
	payload := []byte(`{
		"market": "BTC-EUR",
		"nonce": 42,
		"bids": [["10000","1"], ["9900","2"]],
		"asks": [["10100","1.5"]]
	}`)

	var book Book
	require.NoError(t, json.Unmarshal(payload, &book))
	assert.Equal(t, "BTC-EUR", book.Market)
	assert.Equal(t, int64(42), book.Nonce)
	require.Len(t, book.Bids, 2)
	require.Len(t, book.Asks, 1)
	assert.True(t, book.Bids[0].Price.Equal(num.MustParse("10000")))
	assert.True(t, book.Asks[0].Quantity.Equal(num.MustParse("1.5")))
}
