package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yogesh1636/Bibliotheca/internal/auth/domain"
	r "github.com/yogesh1636/Bibliotheca/internal/auth/repository"
	"github.com/yogesh1636/Bibliotheca/internal/auth/session"
)

var (
	ErrEmailTaken         = errors.New("this email is already registered")
	ErrWeakPassword       = errors.New("password must be at least 6 characters long")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

const minPasswordLength = 6

// CartWiper empties the shared cart. Called on sign-out, so the next visitor
// does not inherit the previous one's cart.
type CartWiper interface {
	Clear(ctx context.Context) error
}

type AuthService struct {
	profiles r.ProfileRepository
	sessions session.Store
	cart     CartWiper
}

func NewAuthService(profiles r.ProfileRepository, sessions session.Store, cart CartWiper) *AuthService {
	return &AuthService{
		profiles: profiles,
		sessions: sessions,
		cart:     cart,
	}
}

// SignUp registers a profile and signs it in, returning the session token.
func (s *AuthService) SignUp(ctx context.Context, email, password, fullName string) (*domain.Profile, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !strings.Contains(email, "@") {
		return nil, "", ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, "", ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	profile := &domain.Profile{
		ID:       uuid.New(),
		Email:    email,
		FullName: fullName,
	}

	if err := s.profiles.CreateProfile(ctx, profile, string(hash)); err != nil {
		if errors.Is(err, r.ErrEmailExists) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.sessions.Create(ctx, profile.ID)
	if err != nil {
		return nil, "", err
	}

	return profile, token, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.Profile, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	profile, hash, err := s.profiles.GetByEmail(ctx, email)
	if errors.Is(err, r.ErrProfileNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, profile.ID)
	if err != nil {
		return nil, "", err
	}

	return profile, token, nil
}

// SignOut drops the session and wipes the cart, matching the storefront
// behavior of clearing the stored cart on logout. The wipe is best effort.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return err
	}

	if errClear := s.cart.Clear(ctx); errClear != nil {
		log.Printf("cart clear on sign-out failed: %v", errClear)
	}
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.Profile, error) {
	userID, err := s.sessions.Get(ctx, token)
	if errors.Is(err, session.ErrSessionNotFound) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}

	return s.profiles.GetProfile(ctx, userID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, token string, fullName string) error {
	userID, err := s.sessions.Get(ctx, token)
	if errors.Is(err, session.ErrSessionNotFound) {
		return ErrNotAuthenticated
	}
	if err != nil {
		return err
	}

	return s.profiles.UpdateProfile(ctx, userID, fullName)
}
