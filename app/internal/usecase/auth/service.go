package auth

import (
	"context"
	"errors"
	"strings"

	domuser "example.com/mystic-prints/app/internal/domain/user"
)

const minPasswordLength = 8

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

type Claims struct {
	UserID   int64
	RoleCode domuser.RoleCode
	Email    string
	Name     string
}

func (c *Claims) Identity() *domuser.Identity {
	return &domuser.Identity{UserID: c.UserID, Email: c.Email, RoleCode: c.RoleCode}
}

type TokenService interface {
	GenerateToken(p *domuser.Profile) (string, error)
	ParseToken(token string) (*Claims, error)
}

type Service struct {
	profiles domuser.Repository
	hasher   PasswordHasher
	tokens   TokenService
}

func NewService(
	profiles domuser.Repository,
	hasher PasswordHasher,
	tokens TokenService,
) *Service {
	return &Service{
		profiles: profiles,
		hasher:   hasher,
		tokens:   tokens,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type LoginResult struct {
	Token   string
	Profile *domuser.Profile
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domuser.ErrInvalidCredential
	}

	p, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		return nil, domuser.ErrUnauthorized
	}

	if err := s.hasher.Compare(p.PasswordHash, in.Password); err != nil {
		return nil, domuser.ErrUnauthorized
	}

	return s.issue(p)
}

// Register creates a customer profile and signs it in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*LoginResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || len(in.Password) < minPasswordLength {
		return nil, domuser.ErrInvalidCredential
	}

	_, err := s.profiles.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domuser.ErrEmailAlreadyUsed
	case !errors.Is(err, domuser.ErrUserNotFound):
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	p, err := s.profiles.Create(ctx, &domuser.Profile{
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		RoleCode:     domuser.RoleCodeCustomer,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	return s.issue(p)
}

// Authenticate resolves a bearer token to the identity it was issued for.
func (s *Service) Authenticate(token string) (*domuser.Identity, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, domuser.ErrUnauthorized
	}
	return claims.Identity(), nil
}

func (s *Service) issue(p *domuser.Profile) (*LoginResult, error) {
	token, err := s.tokens.GenerateToken(p)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Profile: p}, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
