package bitvavo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Sign produces the hex-encoded HMAC-SHA256 request signature over
// timestamp + method + "/v2" + path + body, keyed with the API secret.
func Sign(secret, timestamp, method, path string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte(method))
	mac.Write([]byte("/v2"))
	mac.Write([]byte(path))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// AuthRequest is the websocket authentication command.
type AuthRequest struct {
	Action    string `json:"action"`
	Key       string `json:"key"`
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	Window    string `json:"window"`
}

// NewAuthRequest signs the websocket handshake. The window is the number of
// milliseconds the exchange will accept the request after Timestamp.
func NewAuthRequest(key, secret string, now time.Time) AuthRequest {
	ts := now.UnixMilli()
	return AuthRequest{
		Action:    "authenticate",
		Key:       key,
		Signature: Sign(secret, strconv.FormatInt(ts, 10), "GET", "/websocket", nil),
		Timestamp: ts,
		Window:    "1500",
	}
}
