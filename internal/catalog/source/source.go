package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/yogesh1636/Bibliotheca/internal/catalog/domain"
)

var (
	ErrSourceUnavailable = errors.New("catalog source unavailable")
	ErrMalformedCatalog  = errors.New("catalog document is malformed")
)

// Source reads the static catalog document. No retries: a failed fetch is
// reported to the caller, never swallowed into an empty list.
type Source interface {
	Fetch(ctx context.Context) ([]domain.Book, error)
}

type HTTPSource struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]domain.Book]
}

func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	st := gobreaker.Settings{
		Name:    "catalog-source",
		Timeout: 30 * time.Second,
	}
	return &HTTPSource{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[[]domain.Book](st),
	}
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]domain.Book, error) {
	return s.breaker.Execute(func() ([]domain.Book, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return nil, fmt.Errorf("build catalog request: %w", err)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}

		return decodeBooks(body)
	})
}

// FileSource reads the catalog from a local JSON file, the same document shape
// the HTTP source serves.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Fetch(_ context.Context) ([]domain.Book, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return decodeBooks(data)
}

func decodeBooks(data []byte) ([]domain.Book, error) {
	var books []domain.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
	}

	for i, b := range books {
		if strings.TrimSpace(b.Title) == "" {
			return nil, fmt.Errorf("%w: book at index %d has no title", ErrMalformedCatalog, i)
		}
		if b.Price < 0 {
			return nil, fmt.Errorf("%w: book %q has negative price", ErrMalformedCatalog, b.Title)
		}
	}

	return books, nil
}
