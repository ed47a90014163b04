// Package crypto provides HMAC request signing and encrypted-at-rest secret
// storage for exchange API credentials.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// HMACAuth holds the credentials for exchanges that sign requests with
// HMAC-SHA256 over the query string (BingX, MEXC, Bybit).
type HMACAuth struct {
	Key    string // API key
	Secret string // API secret
}

// Configured reports whether both key and secret are present.
func (h *HMACAuth) Configured() bool {
	return h != nil && h.Key != "" && h.Secret != ""
}

// Sign computes the hex-encoded HMAC-SHA256 of payload using the secret.
func (h *HMACAuth) Sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(h.Secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignedQuery appends a signature parameter to an already-encoded query
// string, as required by BingX and MEXC signed endpoints.
func (h *HMACAuth) SignedQuery(query string) string {
	return query + "&signature=" + h.Sign(query)
}

// Timestamp returns the current Unix time in milliseconds as a decimal
// string, the format all supported exchanges expect in signed requests.
func Timestamp() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// String returns a redacted representation suitable for logging.
func (h *HMACAuth) String() string {
	redact := func(s string) string {
		if len(s) <= 4 {
			return "****"
		}
		return s[:4] + "****"
	}
	return fmt.Sprintf("HMACAuth{key=%s, secret=%s}", redact(h.Key), redact(h.Secret))
}
