package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/shopping-mall/internal/apperr"
)

var ErrInvalidCredentials = &apperr.Error{Kind: apperr.Unauthenticated, Message: "Invalid email or password"}

type Service interface {
	Register(ctx context.Context, in RegisterInput) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, apperr.NewValidation("email is required")
	}
	if in.Password == "" {
		return nil, apperr.NewValidation("password is required")
	}
	if len(in.Password) > MaxPasswordBytes {
		return nil, apperr.NewValidation("password must be at most %d bytes", MaxPasswordBytes)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    trimOrNil(in.FirstName),
		LastName:     trimOrNil(in.LastName),
		Role:         RoleCustomer,
	})
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			log.Info().Str("email", email).Msg("service: registration with existing email")
			return nil, ErrEmailExists
		}

		log.Error().Err(err).Msg("service: failed to create user in repository")
		return nil, fmt.Errorf("service: failed to create user: %w", err)
	}

	log.Info().Int64("user_id", created.ID).Msg("service: user registered")
	return created, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Int64("user_id", id).Msg("service: user not found by id")
			return nil, ErrNotFound
		}

		log.Error().Err(err).Int64("user_id", id).Msg("service: failed to get user by id in repository")
		return nil, fmt.Errorf("service: failed to get user by id: %w", err)
	}

	return u, nil
}

func (s *service) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Msg("service: user not found by email")
			return nil, ErrNotFound
		}

		log.Error().Err(err).Msg("service: failed to get user by email in repository")
		return nil, fmt.Errorf("service: failed to get user by email: %w", err)
	}

	return u, nil
}

// Authenticate checks credentials without issuing a session. The returned user carries no hash.
func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(password, u.PasswordHash) {
		log.Info().Int64("user_id", u.ID).Msg("service: password mismatch")
		return nil, ErrInvalidCredentials
	}

	u.PasswordHash = ""
	return u, nil
}

func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
