package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slugboard/slugboard/internal/core/domain"
	"github.com/slugboard/slugboard/internal/core/ports"
)

// maxSlugAttempts bounds how many fresh slugs Register tries after a collision.
const maxSlugAttempts = 5

// newValidator adds maxbytes, a length limit in bytes rather than runes.
// bcrypt rejects passwords longer than 72 bytes.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return v
}

type credentialService struct {
	repo        ports.UserRepository
	hasher      ports.PasswordHasher
	rotation    ports.PasswordHasher
	codec       ports.TokenCodec
	rotationTTL time.Duration
	replay      ports.RegistrationReplay
	validate    *validator.Validate
	log         zerolog.Logger
}

// CredentialOptions groups the collaborators of NewCredentialService.
// Replay may be nil, in which case Idempotency-Key headers are ignored.
type CredentialOptions struct {
	Repo           ports.UserRepository
	Hasher         ports.PasswordHasher
	RotationHasher ports.PasswordHasher
	Codec          ports.TokenCodec
	RotationTTL    time.Duration
	Replay         ports.RegistrationReplay
	Log            zerolog.Logger
}

// NewCredentialService returns a CredentialService implementation.
func NewCredentialService(opts CredentialOptions) ports.CredentialService {
	if opts.RotationHasher == nil {
		opts.RotationHasher = opts.Hasher
	}
	if opts.RotationTTL <= 0 {
		opts.RotationTTL = DefaultSessionTTL
	}
	return &credentialService{
		repo:        opts.Repo,
		hasher:      opts.Hasher,
		rotation:    opts.RotationHasher,
		codec:       opts.Codec,
		rotationTTL: opts.RotationTTL,
		replay:      opts.Replay,
		validate:    newValidator(),
		log:         opts.Log,
	}
}

// Register creates a new account. A replayed Idempotency-Key returns the
// account created by the first request.
func (s *credentialService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = domain.NormalizeEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, domain.Invalid(describeValidation(err))
	}

	existing, err := s.replayed(ctx, in)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for attempt := 1; ; attempt++ {
		user.Slug = domain.NewSlug(in.Name)
		err = s.repo.Create(ctx, user)
		if !errors.Is(err, domain.ErrSlugTaken) || attempt == maxSlugAttempts {
			break
		}
		s.log.Debug().Str("slug", user.Slug).Int("attempt", attempt).Msg("slug collision, regenerating")
	}
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	if in.IdempotencyKey != "" && s.replay != nil {
		if err := s.replay.Remember(ctx, in.IdempotencyKey, user.ID); err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("could not remember registration")
		}
	}

	s.log.Info().Str("user_id", user.ID).Str("slug", user.Slug).Msg("user registered")
	return user, nil
}

// replayed returns the user an earlier request with the same Idempotency-Key
// created. A key bound to a different email is rejected, never replayed.
func (s *credentialService) replayed(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	key := in.IdempotencyKey
	if key == "" || s.replay == nil {
		return nil, nil
	}
	userID, found, err := s.replay.Lookup(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("replay lookup failed, registering anyway")
		return nil, nil
	}
	if !found {
		return nil, nil
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("replayed user not loadable")
		return nil, nil
	}
	if user.Email != in.Email {
		s.log.Warn().Str("idempotency_key", key).Msg("idempotency key reused for a different registration")
		return nil, domain.ErrIdempotencyKeyReused
	}
	s.log.Info().Str("idempotency_key", key).Str("user_id", user.ID).Msg("idempotent replay")
	return user, nil
}

// ChangePassword re-verifies the old password, stores the new one and issues
// a fresh session token. A failed token issue leaves the new password in
// place and is reported through Rotated.
func (s *credentialService) ChangePassword(ctx context.Context, in ports.ChangePasswordInput) (*ports.ChangePasswordResult, error) {
	if in.OldPassword != "" && in.OldPassword == in.NewPassword {
		return nil, domain.ErrSamePassword
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, domain.Invalid(describeValidation(err))
	}

	user, err := s.repo.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("change password: %w", err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, in.OldPassword)
	if err != nil {
		return nil, fmt.Errorf("change password: %w", err)
	}
	if !ok {
		return nil, domain.ErrWrongPassword
	}

	hash, err := s.rotation.Hash(in.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("change password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("change password: %w", err)
	}

	token, expiresAt, err := s.codec.Issue(user.ID, s.rotationTTL)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("password changed but session rotation failed")
		return &ports.ChangePasswordResult{Rotated: false}, nil
	}

	s.log.Info().Str("user_id", user.ID).Msg("password changed")
	return &ports.ChangePasswordResult{
		Token:   ports.SessionToken{Value: token, ExpiresAt: expiresAt},
		Rotated: true,
	}, nil
}

// describeValidation turns validator errors into a short client-safe detail.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", field, fe.Param())
	case "eqfield":
		return "passwords do not match"
	default:
		return field + " is invalid"
	}
}
