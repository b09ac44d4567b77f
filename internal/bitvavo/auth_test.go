package bitvavo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSign(t *testing.T) {
	// timestamp + method + "/v2" + path, empty body
	sig := Sign("test-secret", "1548183481375", "GET", "/websocket", nil)
	assert.Equal(t, "915738101398f3c13e991646045336d6aa1720f19cfd8760253c66acadf8fa9e", sig)
}

func TestSignWithBody(t *testing.T) {
	sig := Sign("test-secret", "1548183481375", "POST", "/order", []byte(`{"market":"BTC-EUR"}`))
	assert.Equal(t, "e5d4292833a705e9821227820ae17d281f3df5f0d6b134f69380eaf827d45d9b", sig)
}

func TestNewAuthRequest(t *testing.T) {
	now := time.UnixMilli(1548183481375)
	req := NewAuthRequest("test-key", "test-secret", now)

	assert.Equal(t, "authenticate", req.Action)
	assert.Equal(t, "test-key", req.Key)
	assert.Equal(t, int64(1548183481375), req.Timestamp)
	assert.Equal(t, "1500", req.Window)
	assert.Equal(t, Sign("test-secret", "1548183481375", "GET", "/websocket", nil), req.Signature)
}

func TestSubscriptionBuilderPayload(t *testing.T) {
	payload := NewSubscription("BTC-EUR").
		WithTicker().
		WithBook().
		WithCandles("1h").
		payload()

	assert.Equal(t, "subscribe", payload["action"])
	channels := payload["channels"].([]map[string]any)
	names := make([]string, 0, len(channels))
	for _, ch := range channels {
		names = append(names, ch["name"].(string))
		assert.Equal(t, []string{"BTC-EUR"}, ch["markets"])
	}
	assert.Equal(t, []string{"book", "ticker", "candles"}, names)

	for _, ch := range channels {
		if ch["name"] == "candles" {
			assert.Equal(t, []string{"1h"}, ch["interval"])
		} else {
			assert.NotContains(t, ch, "interval")
		}
	}
}
