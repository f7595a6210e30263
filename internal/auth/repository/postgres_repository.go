package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/yogesh1636/Bibliotheca/internal/auth/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "auth_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) CreateProfile(ctx context.Context, profile *domain.Profile, passwordHash string) error {
	query := `INSERT INTO profiles (id, email, full_name, password_hash, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, NOW(), NOW())`

	_, err := r.db.ExecContext(ctx, query, profile.ID, profile.Email, profile.FullName, passwordHash)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEmailExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *Repository) GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query := `SELECT id, email, full_name, created_at, updated_at
	          FROM profiles WHERE id = $1`

	var p domain.Profile
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Email,
		&p.FullName,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}

	return &p, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.Profile, string, error) {
	query := `SELECT id, email, full_name, password_hash, created_at, updated_at
	          FROM profiles WHERE email = $1`

	var p domain.Profile
	var hash string
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&p.ID,
		&p.Email,
		&p.FullName,
		&hash,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrProfileNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("query profile by email: %w", err)
	}

	return &p, hash, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, fullName string) error {
	query := `UPDATE profiles SET full_name = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, fullName)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile rows affected: %w", err)
	}
	if affected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
