package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// HMACSignatureService implements ports.SignatureService using HMAC-SHA256.
//
// The canonical byte string is the request body immediately followed by
// the decimal millisecond timestamp, with no separator. Dispatcher and
// authenticator must reproduce this bit-for-bit; any divergence breaks
// the protocol.
type HMACSignatureService struct{}

// NewHMACSignatureService creates a new HMAC-SHA256 signature service.
func NewHMACSignatureService() *HMACSignatureService {
	return &HMACSignatureService{}
}

// Sign computes HMAC-SHA256 over body||timestampMillis using secret.
// Returns lowercase hex-encoded signature.
func (s *HMACSignatureService) Sign(secret string, body []byte, timestampMillis int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	mac.Write([]byte(strconv.FormatInt(timestampMillis, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature and compares in constant time.
func (s *HMACSignatureService) Verify(secret string, body []byte, timestampMillis int64, signature string) bool {
	expected := s.Sign(secret, body, timestampMillis)
	return hmac.Equal([]byte(expected), []byte(signature))
}
