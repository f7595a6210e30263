package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yogesh1636/Bibliotheca/internal/auth/domain"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrEmailExists     = errors.New("email already registered")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile *domain.Profile, passwordHash string) error
	GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, string, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName string) error
	RunMigrations(*Credentials) error
	Close() error
}
