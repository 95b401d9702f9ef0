// internal/recommend/engine.go

// Package recommend turns a film id into a list of well-reviewed films of the
// same genre released within a window around it.
//
// The pipeline is sequential: subject film, its genre, the candidate films,
// one batched review fetch, then filtering and ordering. Any failure stops
// the pipeline and is returned as an *Error (client-visible) or a wrapped
// store error (internal).
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"recommendation-service/internal/clients"
	"recommendation-service/internal/domain"
	"recommendation-service/internal/metrics"
	"recommendation-service/internal/store"

	"github.com/go-playground/validator/v10"
)

// Config holds the quality thresholds and the release window.
type Config struct {
	MinReviews       int     `koanf:"min_reviews" validate:"min=0"`
	MinAverageRating float64 `koanf:"min_average_rating" validate:"min=0"`
	WindowYears      int     `koanf:"window_years" validate:"min=0"`
}

// DefaultConfig keeps films with at least 5 reviews averaging above 4.0,
// released within 15 years of the subject.
func DefaultConfig() Config {
	return Config{MinReviews: 5, MinAverageRating: 4.0, WindowYears: 15}
}

// Engine computes recommendations.
type Engine struct {
	catalog  store.CatalogStore
	reviews  clients.ReviewSource
	cfg      Config
	validate *validator.Validate
	logger   *slog.Logger
}

func NewEngine(catalog store.CatalogStore, reviews clients.ReviewSource, cfg Config, logger *slog.Logger) *Engine {
	return &Engine{
		catalog:  catalog,
		reviews:  reviews,
		cfg:      cfg,
		validate: validator.New(),
		logger:   logger,
	}
}

// Recommend runs the whole pipeline for one request.
func (e *Engine) Recommend(ctx context.Context, q domain.RecommendationQuery) (*domain.RecommendationResponse, error) {
	params, err := ParseQuery(e.validate, q)
	if err != nil {
		e.logger.InfoContext(ctx, "Rejected recommendation query", slog.String("filmID", q.FilmID), slog.String("error", err.Error()))
		metrics.RecordRecommendation("invalid_input", 0)
		return nil, err
	}

	resp, candidates, err := e.recommend(ctx, params)
	metrics.RecordRecommendation(outcome(err), candidates)
	return resp, err
}

func (e *Engine) recommend(ctx context.Context, p Params) (*domain.RecommendationResponse, int, error) {
	film, err := e.catalog.GetFilmByID(ctx, p.FilmID)
	if err != nil {
		if errors.Is(err, store.ErrFilmNotFound) {
			return nil, 0, unprocessable("film id doesn't exist", err)
		}
		return nil, 0, fmt.Errorf("load film %d: %w", p.FilmID, err)
	}

	genre, err := e.catalog.GetGenreByID(ctx, film.GenreID)
	if err != nil {
		if errors.Is(err, store.ErrGenreNotFound) {
			return nil, 0, unprocessable("genre not found", err)
		}
		return nil, 0, fmt.Errorf("load genre %d: %w", film.GenreID, err)
	}

	start := film.ReleaseDate.AddYears(-e.cfg.WindowYears)
	end := film.ReleaseDate.AddYears(e.cfg.WindowYears)
	candidates, err := e.catalog.FindFilmsInGenreAndDateRange(ctx, genre.ID, start, end)
	if err != nil {
		return nil, 0, fmt.Errorf("load candidates for film %d: %w", p.FilmID, err)
	}

	resp := &domain.RecommendationResponse{
		Recommendations: []domain.RecommendationItem{},
		Meta:            domain.Meta{Limit: p.Limit, Offset: p.Offset},
	}
	if len(candidates) == 0 {
		return resp, 0, nil
	}

	ids := make([]int, len(candidates))
	byID := make(map[int]domain.CandidateFilm, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
		byID[c.ID] = c
	}

	bundles, err := e.reviews.FetchReviews(ctx, ids)
	if err != nil {
		return nil, len(candidates), upstreamUnavailable(err)
	}

	resp.Recommendations = e.rank(bundles, byID, genre.Name)
	e.logger.InfoContext(ctx, "Recommendations computed",
		slog.Int("filmID", p.FilmID),
		slog.Int("candidates", len(candidates)),
		slog.Int("bundles", len(bundles)),
		slog.Int("recommended", len(resp.Recommendations)))
	return resp, len(candidates), nil
}

// rank keeps qualifying bundles that match a candidate, once per id, sorted by id.
func (e *Engine) rank(bundles []domain.ReviewBundle, candidates map[int]domain.CandidateFilm, genre string) []domain.RecommendationItem {
	items := make([]domain.RecommendationItem, 0, len(bundles))
	seen := make(map[int]struct{}, len(bundles))
	for _, b := range bundles {
		if _, dup := seen[b.FilmID]; dup {
			continue
		}
		seen[b.FilmID] = struct{}{}

		avg := b.AverageRating()
		if len(b.Reviews) < e.cfg.MinReviews || avg <= e.cfg.MinAverageRating {
			continue
		}
		c, ok := candidates[b.FilmID]
		if !ok {
			continue
		}
		items = append(items, domain.RecommendationItem{
			ID:            c.ID,
			Title:         c.Title,
			ReleaseDate:   c.ReleaseDate,
			Genre:         genre,
			AverageRating: avg,
			ReviewCount:   len(b.Reviews),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnprocessableEntity):
		return "unprocessable"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_error"
	default:
		return "internal"
	}
}
