// Package signature implements the gateway callback signing scheme.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Compute returns the hex HMAC-SHA256 the gateway is expected to send:
// the keyed hash of "orderID|paymentID".
func Compute(secret, gatewayOrderID, gatewayPaymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares a presented signature in constant time.
func Verify(secret, gatewayOrderID, gatewayPaymentID, presented string) bool {
	expected := Compute(secret, gatewayOrderID, gatewayPaymentID)
	return hmac.Equal([]byte(expected), []byte(presented))
}
