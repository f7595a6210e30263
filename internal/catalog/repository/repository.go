package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"

	"github.com/yogesh1636/Bibliotheca/internal/catalog/domain"
)

var ErrBookNotFound = errors.New("book not found")

type Repository struct {
	db *sql.DB
}

type RepoInterface interface {
	GetAllBooks(ctx context.Context) ([]*domain.Book, error)
	GetBook(ctx context.Context, id int64) (*domain.Book, error)
	GetFeaturedBooks(ctx context.Context, limit int) ([]*domain.Book, error)
	SeedBooks(ctx context.Context, books []domain.Book) error
	RunMigrations(string) error
	Close() error
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// SeedBooks replaces the books table with the catalog document fetched at
// startup. Runs in one transaction so readers never see a half-seeded table.
func (r *Repository) SeedBooks(ctx context.Context, books []domain.Book) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM books`); err != nil {
		return fmt.Errorf("clear books: %w", err)
	}

	insert := `INSERT INTO books (title, author, price, image, category, featured, created_at)
	           VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)`
	for _, b := range books {
		if _, err := tx.ExecContext(ctx, insert, b.Title, b.Author, b.Price, b.Image, b.Category, b.Featured); err != nil {
			return fmt.Errorf("insert book %q: %w", b.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}

func (r *Repository) GetAllBooks(ctx context.Context) ([]*domain.Book, error) {
	query := `
		SELECT id, title, author, price, image, category, featured, created_at
		FROM books
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows)
}

func (r *Repository) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	query := `
		SELECT id, title, author, price, image, category, featured, created_at
		FROM books
		WHERE id = $1
	`

	b := &domain.Book{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Price,
		&b.Image,
		&b.Category,
		&b.Featured,
		&b.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query book: %w", err)
	}

	return b, nil
}

func (r *Repository) GetFeaturedBooks(ctx context.Context, limit int) ([]*domain.Book, error) {
	query := `
		SELECT id, title, author, price, image, category, featured, created_at
		FROM books
		WHERE featured = TRUE
		ORDER BY id
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query featured books: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows)
}

func scanBooks(rows *sql.Rows) ([]*domain.Book, error) {
	var books []*domain.Book
	for rows.Next() {
		b := &domain.Book{}
		err := rows.Scan(
			&b.ID,
			&b.Title,
			&b.Author,
			&b.Price,
			&b.Image,
			&b.Category,
			&b.Featured,
			&b.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return books, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
