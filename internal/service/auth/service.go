// Package auth is the front-desk login gate. It answers yes or no; there is
// no session or token.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-calendar/internal/model"
	"github.com/jwalitptl/clinic-calendar/pkg/logger"
	"github.com/jwalitptl/clinic-calendar/pkg/security"
)

var ErrLocked = errors.New("too many failed attempts, try again later")

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
)

type Service struct {
	username     string
	passwordHash string
	hasher       security.PasswordHasher
	attempts     *cache.Cache
	log          *logger.Logger
}

func NewService(username, passwordHash string, hasher security.PasswordHasher, log *logger.Logger) *Service {
	return &Service{
		username:     username,
		passwordHash: passwordHash,
		hasher:       hasher,
		attempts:     cache.New(lockoutDuration, 2*lockoutDuration),
		log:          log,
	}
}

// Login reports whether the credentials match the configured user. Failures
// are counted per client address and user name; a pair that keeps failing is
// locked out without affecting other clients.
func (s *Service) Login(_ context.Context, client, username, password string) error {
	username = strings.TrimSpace(username)
	key := attemptKey(client, username)

	if n, ok := s.attempts.Get(key); ok && n.(int) >= maxLoginAttempts {
		return ErrLocked
	}

	if s.passwordHash == "" {
		s.log.Warn(nil, "login attempted but no password hash is configured")
		return model.ErrInvalidCredentials
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passErr := s.hasher.Compare(s.passwordHash, password)
	if errors.Is(passErr, security.ErrMalformedHash) {
		s.log.Warn(passErr, "auth.password_hash is unusable, regenerate it with clinicctl hash-password")
	}
	if !userOK || passErr != nil {
		s.recordFailure(key)
		return model.ErrInvalidCredentials
	}

	s.attempts.Delete(key)
	s.log.Info("front desk login", "username", username, "client", client)
	return nil
}

func attemptKey(client, username string) string {
	return client + "|" + username
}

func (s *Service) recordFailure(key string) {
	if err := s.attempts.Add(key, 1, lockoutDuration); err == nil {
		return
	}
	if _, err := s.attempts.IncrementInt(key, 1); err != nil {
		s.log.Warn(err, "failed to count login attempt", "key", key)
	}
}
