package account

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/wichananm65/misdis-backend/internal/apperror"
	"github.com/wichananm65/misdis-backend/internal/auth"
)

// TokenIssuer signs access tokens for a subject.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

type Service struct {
	repo       Repository
	tokens     TokenIssuer
	bcryptCost int

	checkPassword func(hash, plain string) bool
	dummyOnce     sync.Once
	dummy         string
}

func NewService(repo Repository, tokens TokenIssuer, bcryptCost int) *Service {
	return &Service{
		repo:          repo,
		tokens:        tokens,
		bcryptCost:    bcryptCost,
		checkPassword: auth.CheckPassword,
	}
}

func (s *Service) Create(ctx context.Context, in UserCreate) (User, error) {
	email := normalizeEmail(in.Email)

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, apperror.Conflict("Email already exists")
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hashed, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		FirstName:                  in.FirstName,
		MiddleName:                 in.MiddleName,
		LastName:                   in.LastName,
		DOB:                        in.DOB,
		Email:                      email,
		Password:                   hashed,
		Position:                   in.Position,
		Role:                       in.Role,
		Gender:                     in.Gender,
		Contact:                    in.Contact,
		City:                       in.City,
		CityNe:                     in.CityNe,
		VerificationLinkExpiration: in.VerificationLinkExpiration,
	}
	if in.IsVerified != nil {
		user.IsVerified = *in.IsVerified
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	created, err := s.repo.Create(ctx, user)
	if errors.Is(err, ErrEmailExists) {
		return User{}, apperror.Conflict("Email already exists")
	}
	return created, err
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int) (User, error) {
	if id < 1 || id > math.MaxInt32 {
		return User{}, apperror.NotFound("User with the id %d is not found", id)
	}
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return User{}, apperror.NotFound("User with the id %d is not found", id)
	}
	return u, err
}

// Login exchanges credentials for a bearer token. Unknown emails and wrong
// passwords fail identically, and both pay for a bcrypt comparison.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		s.checkPassword(s.dummyHash(), password)
		return Token{}, apperror.InvalidCredentials()
	}
	if err != nil {
		return Token{}, err
	}
	if !s.checkPassword(u.Password, password) {
		return Token{}, apperror.InvalidCredentials()
	}

	signed, err := s.tokens.Issue(u.Email)
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: signed, TokenType: "bearer"}, nil
}

// Me loads the account named by a verified token subject.
func (s *Service) Me(ctx context.Context, subject string) (User, error) {
	u, err := s.repo.GetByEmail(ctx, subject)
	if errors.Is(err, ErrNotFound) {
		return User{}, apperror.NotFound("User with the email %s is not found", subject)
	}
	return u, err
}

// dummyHash is compared against when the email is unknown. It uses the
// configured cost so the miss path takes as long as a real mismatch.
func (s *Service) dummyHash() string {
	s.dummyOnce.Do(func() {
		h, err := auth.HashPassword("misdis-unknown-account", s.bcryptCost)
		if err == nil {
			s.dummy = h
		}
	})
	return s.dummy
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
