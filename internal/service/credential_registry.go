package service

import (
	"crypto/subtle"

	"field-capture-gateway/internal/core/domain"
)

// StaticCredentialRegistry implements ports.CredentialRegistry for the
// deployment's single active credential set.
type StaticCredentialRegistry struct {
	credential domain.SigningCredential
}

// NewStaticCredentialRegistry creates a registry holding one credential.
func NewStaticCredentialRegistry(credential domain.SigningCredential) *StaticCredentialRegistry {
	return &StaticCredentialRegistry{credential: credential}
}

// SecretFor returns the shared secret bound to apiKey, or false for an
// unknown key. Comparison is constant time.
func (r *StaticCredentialRegistry) SecretFor(apiKey string) (string, bool) {
	if subtle.ConstantTimeCompare([]byte(apiKey), []byte(r.credential.APIKey)) != 1 {
		return "", false
	}
	return r.credential.Secret, true
}
