// internal/store/sql_catalog_store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"recommendation-service/internal/domain"
	"recommendation-service/internal/metrics"

	"github.com/jmoiron/sqlx"
)

const (
	getFilmQuery = `SELECT id, COALESCE(title, '') AS title, release_date, genre_id,
                     COALESCE(average_rating, 0) AS average_rating, COALESCE(reviews, 0) AS reviews
                     FROM films WHERE id = ?`
	getGenreQuery = `SELECT id, COALESCE(name, '') AS name FROM genres WHERE id = ?`
	// The release-date predicate is appended per dialect.
	candidatesQuery = `SELECT id, COALESCE(title, '') AS title, release_date FROM films WHERE genre_id = ? AND `
)

// windowPredicates compares calendar dates, whatever the column holds.
var windowPredicates = map[string]string{
	DriverSQLite:   "date(release_date) BETWEEN date(?) AND date(?)",
	DriverPostgres: "CAST(release_date AS date) BETWEEN CAST(? AS date) AND CAST(? AS date)",
}

// SQLCatalogStore implements CatalogStore over sqlx for SQLite and PostgreSQL.
type SQLCatalogStore struct {
	db              *sqlx.DB
	logger          *slog.Logger
	candidatesQuery string
}

// NewSQLCatalogStore binds the catalog queries to db's dialect.
func NewSQLCatalogStore(db *sqlx.DB, logger *slog.Logger) (*SQLCatalogStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	predicate, ok := windowPredicates[db.DriverName()]
	if !ok {
		return nil, fmt.Errorf("unsupported catalog driver %q", db.DriverName())
	}
	return &SQLCatalogStore{
		db:              db,
		logger:          logger,
		candidatesQuery: db.Rebind(candidatesQuery + predicate + " ORDER BY id"),
	}, nil
}

// GetFilmByID finds a film by its id.
func (s *SQLCatalogStore) GetFilmByID(ctx context.Context, id int) (*domain.Film, error) {
	var film domain.Film
	start := time.Now()

	s.logger.DebugContext(ctx, "Executing GetFilmByID query", slog.Int("filmID", id))
	err := s.db.GetContext(ctx, &film, s.db.Rebind(getFilmQuery), id)
	metrics.ObserveCatalogQuery("get_film", start, ignoreNoRows(err))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Film not found by ID in catalog", slog.Int("filmID", id))
			return nil, ErrFilmNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get film by ID from catalog", slog.Int("filmID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get film by ID: %w", err)
	}
	return &film, nil
}

// GetGenreByID finds a genre by its id.
func (s *SQLCatalogStore) GetGenreByID(ctx context.Context, id int) (*domain.Genre, error) {
	var genre domain.Genre
	start := time.Now()

	s.logger.DebugContext(ctx, "Executing GetGenreByID query", slog.Int("genreID", id))
	err := s.db.GetContext(ctx, &genre, s.db.Rebind(getGenreQuery), id)
	metrics.ObserveCatalogQuery("get_genre", start, ignoreNoRows(err))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Genre not found by ID in catalog", slog.Int("genreID", id))
			return nil, ErrGenreNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get genre by ID from catalog", slog.Int("genreID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get genre by ID: %w", err)
	}
	return &genre, nil
}

// FindFilmsInGenreAndDateRange lists the candidate films of a genre inside [start, end].
func (s *SQLCatalogStore) FindFilmsInGenreAndDateRange(ctx context.Context, genreID int, start, end domain.Date) ([]domain.CandidateFilm, error) {
	candidates := []domain.CandidateFilm{}
	began := time.Now()

	s.logger.DebugContext(ctx, "Executing FindFilmsInGenreAndDateRange query",
		slog.Int("genreID", genreID), slog.String("from", start.String()), slog.String("to", end.String()))
	err := s.db.SelectContext(ctx, &candidates, s.candidatesQuery, genreID, start.String(), end.String())
	metrics.ObserveCatalogQuery("find_candidates", began, err)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list candidate films from catalog", slog.Int("genreID", genreID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list films in genre %d: %w", genreID, err)
	}
	return candidates, nil
}

// Ping checks that the catalog connection is alive.
func (s *SQLCatalogStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("catalog ping failed: %w", err)
	}
	return nil
}

func ignoreNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
