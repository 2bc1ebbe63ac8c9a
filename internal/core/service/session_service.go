package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/slugboard/slugboard/internal/core/domain"
	"github.com/slugboard/slugboard/internal/core/ports"
)

// DefaultSessionTTL is the lifetime of a login token.
const DefaultSessionTTL = 7 * 24 * time.Hour

type sessionService struct {
	repo        ports.UserRepository
	hasher      ports.PasswordHasher
	decoyHasher ports.PasswordHasher
	codec       ports.TokenCodec
	ttl         time.Duration
	log         zerolog.Logger

	decoyOnce sync.Once
	decoy     string
}

// NewSessionService returns a SessionService implementation. decoyHasher
// builds the hash compared for unknown emails; pass the hasher with the
// highest cost in use (the rotation hasher). nil falls back to hasher.
func NewSessionService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	decoyHasher ports.PasswordHasher,
	codec ports.TokenCodec,
	ttl time.Duration,
	log zerolog.Logger,
) ports.SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if decoyHasher == nil {
		decoyHasher = hasher
	}
	return &sessionService{repo: repo, hasher: hasher, decoyHasher: decoyHasher, codec: codec, ttl: ttl, log: log}
}

// Login checks email and password and issues a session token.
func (s *sessionService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Invalid("email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.burnDecoy(password)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.codec.Issue(user.ID, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return &ports.LoginResult{
		User:  user,
		Token: ports.SessionToken{Value: token, ExpiresAt: expiresAt},
	}, nil
}

func (s *sessionService) GetSession(token string) (*domain.Session, bool) {
	if token == "" {
		return nil, false
	}
	userID, expiresAt, err := s.codec.Verify(token)
	if err != nil {
		return nil, false
	}
	return &domain.Session{UserID: userID, ExpiresAt: expiresAt}, true
}

// burnDecoy spends one hash comparison so an unknown email costs about as
// much as a wrong password.
func (s *sessionService) burnDecoy(password string) {
	s.decoyOnce.Do(func() {
		hash, err := s.decoyHasher.Hash("slugboard-decoy-password")
		if err != nil {
			s.log.Warn().Err(err).Msg("decoy hash unavailable")
			return
		}
		s.decoy = hash
	})
	if s.decoy != "" {
		_, _ = s.decoyHasher.Verify(s.decoy, password)
	}
}
