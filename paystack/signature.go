package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// VerifySignature checks the x-paystack-signature header against an
// HMAC-SHA512 of the raw request body. It must be given the body
// exactly as transmitted; re-serializing a parsed payload breaks the
// signature. This is the sole authentication boundary for the webhook.
func VerifySignature(rawBody []byte, providedSignature, secret string) bool {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(providedSignature))
}
