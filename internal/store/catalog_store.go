// internal/store/catalog_store.go
package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"recommendation-service/internal/domain"
)

var (
	ErrFilmNotFound  = errors.New("film not found")
	ErrGenreNotFound = errors.New("genre not found")
)

// CatalogStore is read-only access to the film catalog.
type CatalogStore interface {
	GetFilmByID(ctx context.Context, id int) (*domain.Film, error)
	GetGenreByID(ctx context.Context, id int) (*domain.Genre, error)
	// FindFilmsInGenreAndDateRange returns the films of a genre released between
	// start and end, both inclusive, ordered by id.
	FindFilmsInGenreAndDateRange(ctx context.Context, genreID int, start, end domain.Date) ([]domain.CandidateFilm, error)
	Ping(ctx context.Context) error
}

// MockCatalogStore keeps the catalog in memory. Tests use it directly and the
// service falls back to it when started with demo data.
type MockCatalogStore struct {
	mu     sync.RWMutex
	films  map[int]domain.Film
	genres map[int]domain.Genre
}

func NewMockCatalogStore(films []domain.Film, genres []domain.Genre) *MockCatalogStore {
	m := &MockCatalogStore{
		films:  make(map[int]domain.Film, len(films)),
		genres: make(map[int]domain.Genre, len(genres)),
	}
	for _, f := range films {
		m.films[f.ID] = f
	}
	for _, g := range genres {
		m.genres[g.ID] = g
	}
	return m
}

func (m *MockCatalogStore) GetFilmByID(ctx context.Context, id int) (*domain.Film, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	film, ok := m.films[id]
	if !ok {
		return nil, ErrFilmNotFound
	}
	return &film, nil
}

func (m *MockCatalogStore) GetGenreByID(ctx context.Context, id int) (*domain.Genre, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	genre, ok := m.genres[id]
	if !ok {
		return nil, ErrGenreNotFound
	}
	return &genre, nil
}

func (m *MockCatalogStore) FindFilmsInGenreAndDateRange(ctx context.Context, genreID int, start, end domain.Date) ([]domain.CandidateFilm, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := []domain.CandidateFilm{}
	for _, f := range m.films {
		if f.GenreID != genreID {
			continue
		}
		if f.ReleaseDate.Before(start.Time) || f.ReleaseDate.After(end.Time) {
			continue
		}
		candidates = append(candidates, domain.CandidateFilm{ID: f.ID, Title: f.Title, ReleaseDate: f.ReleaseDate})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	return candidates, nil
}

func (m *MockCatalogStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
