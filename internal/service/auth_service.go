package service

import (
	"context"
	"crypto/subtle"
	"time"

	"field-capture-gateway/internal/core/ports"
	"field-capture-gateway/pkg/apperror"

	"github.com/rs/zerolog"
)

// OperatorAuthService authenticates the single configured operator and
// issues admin session tokens. There is no registration flow; the
// credential is provisioned in configuration.
type OperatorAuthService struct {
	username     string
	passwordHash string // Argon2id encoded hash
	hashSvc      ports.HashService
	tokenSvc     ports.TokenService
	log          zerolog.Logger
}

// NewOperatorAuthService creates a config-backed AuthService.
func NewOperatorAuthService(username, passwordHash string, hashSvc ports.HashService, tokenSvc ports.TokenService, log zerolog.Logger) *OperatorAuthService {
	return &OperatorAuthService{
		username:     username,
		passwordHash: passwordHash,
		hashSvc:      hashSvc,
		tokenSvc:     tokenSvc,
		log:          log,
	}
}

// Login verifies the operator credential and returns a session token with
// its expiry. Username and password failures are indistinguishable to the
// caller.
func (s *OperatorAuthService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1

	// Verify the hash even on a username mismatch so both failure modes
	// take comparable time.
	passwordOK, err := s.hashSvc.Verify(password, s.passwordHash)
	if err != nil {
		s.log.Warn().Err(err).Msg("auth: operator hash verification errored")
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}
	if !usernameOK || !passwordOK {
		s.log.Warn().Str("username", username).Msg("auth: operator login rejected")
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiresAt, err := s.tokenSvc.Generate(s.username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(err)
	}
	s.log.Info().Str("username", username).Msg("auth: operator logged in")
	return token, expiresAt, nil
}
