package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"recommendation-service/internal/domain"
	"recommendation-service/internal/logging"
	"recommendation-service/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReviews struct {
	bundles []domain.ReviewBundle
	err     error
	calls   int
	gotIDs  []int
}

func (f *fakeReviews) FetchReviews(_ context.Context, ids []int) ([]domain.ReviewBundle, error) {
	f.calls++
	f.gotIDs = ids
	return f.bundles, f.err
}

func ratings(rs ...float64) []domain.Review {
	out := make([]domain.Review, len(rs))
	for i, r := range rs {
		out[i] = domain.Review{Rating: r}
	}
	return out
}

func dramaCatalog() *store.MockCatalogStore {
	subject := domain.NewDate(2010, time.May, 1)
	return store.NewMockCatalogStore(
		[]domain.Film{
			{ID: 7, Title: "Subject", ReleaseDate: subject, GenreID: 2},
			{ID: 8, Title: "Eight", ReleaseDate: domain.NewDate(2000, time.January, 1), GenreID: 2},
			{ID: 9, Title: "Nine", ReleaseDate: domain.NewDate(2020, time.June, 30), GenreID: 2},
			{ID: 10, Title: "Ancient", ReleaseDate: domain.NewDate(1960, time.January, 1), GenreID: 2},
			{ID: 11, Title: "Comedy", ReleaseDate: subject, GenreID: 1},
			{ID: 20, Title: "Orphan", ReleaseDate: subject, GenreID: 99},
		},
		[]domain.Genre{{ID: 1, Name: "Comedy"}, {ID: 2, Name: "Drama"}},
	)
}

func newEngine(reviews *fakeReviews) *Engine {
	return NewEngine(dramaCatalog(), reviews, DefaultConfig(), logging.Discard())
}

func TestRecommend_OnlyWellReviewedCandidatesQualify(t *testing.T) {
	reviews := &fakeReviews{bundles: []domain.ReviewBundle{
		{FilmID: 8, Reviews: ratings(4, 5, 4, 5, 4, 5)},
		{FilmID: 9, Reviews: ratings(5, 5, 5)},
	}}

	resp, err := newEngine(reviews).Recommend(context.Background(), domain.RecommendationQuery{FilmID: "7"})
	require.NoError(t, err)

	assert.Equal(t, []int{7, 8, 9}, reviews.gotIDs)
	require.Len(t, resp.Recommendations, 1)
	item := resp.Recommendations[0]
	assert.Equal(t, 8, item.ID)
	assert.Equal(t, "Eight", item.Title)
	assert.Equal(t, "Drama", item.Genre)
	assert.Equal(t, 4.5, item.AverageRating)
	assert.Equal(t, 6, item.ReviewCount)
	assert.Equal(t, "2000-01-01", item.ReleaseDate.String())
	assert.Equal(t, domain.Meta{Limit: 10, Offset: 0}, resp.Meta)
}

func TestRecommend_FilterJoinAndOrder(t *testing.T) {
	reviews := &fakeReviews{bundles: []domain.ReviewBundle{
		{FilmID: 9, Reviews: ratings(5, 5, 5, 5, 5)},
		{FilmID: 8, Reviews: ratings(4, 4, 4, 4, 4)},                // exactly 4.0 is not enough
		{FilmID: 7, Reviews: ratings(4, 4, 4, 4, 4.05)},             // 4.01
		{FilmID: 9, Reviews: ratings(1, 1, 1, 1, 1)},                // duplicate, ignored
		{FilmID: 10, Reviews: ratings(5, 5, 5, 5, 5)},               // not a candidate
		{FilmID: 11, Reviews: ratings(5, 5, 5, 5, 5, 5, 5, 5, 5, 5)}, // other genre
	}}

	resp, err := newEngine(reviews).Recommend(context.Background(),
		domain.RecommendationQuery{FilmID: "7", Limit: "2", Offset: "40"})
	require.NoError(t, err)

	ids := make([]int, 0, len(resp.Recommendations))
	for _, item := range resp.Recommendations {
		ids = append(ids, item.ID)
		assert.GreaterOrEqual(t, item.ReviewCount, 5)
		assert.Greater(t, item.AverageRating, 4.0)
	}
	assert.Equal(t, []int{7, 9}, ids)
	assert.Equal(t, domain.Meta{Limit: 2, Offset: 40}, resp.Meta, "pagination is echoed, not applied")
}

func TestRecommend_Errors(t *testing.T) {
	tests := []struct {
		name    string
		query   domain.RecommendationQuery
		kind    error
		message string
	}{
		{"non-numeric id", domain.RecommendationQuery{FilmID: "abc"}, ErrInvalidInput, "invalid id"},
		{"negative id", domain.RecommendationQuery{FilmID: "-7"}, ErrInvalidInput, "invalid id"},
		{"empty id", domain.RecommendationQuery{FilmID: ""}, ErrInvalidInput, "invalid id"},
		{"bad limit", domain.RecommendationQuery{FilmID: "7", Limit: "ten"}, ErrInvalidInput, "invalid query params"},
		{"bad offset", domain.RecommendationQuery{FilmID: "7", Offset: "1.5"}, ErrInvalidInput, "invalid query params"},
		{"missing film", domain.RecommendationQuery{FilmID: "404"}, ErrUnprocessableEntity, "film id doesn't exist"},
		{"missing genre", domain.RecommendationQuery{FilmID: "20"}, ErrUnprocessableEntity, "genre not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := &fakeReviews{}
			_, err := newEngine(reviews).Recommend(context.Background(), tt.query)

			require.ErrorIs(t, err, tt.kind)
			var recErr *Error
			require.ErrorAs(t, err, &recErr)
			assert.Equal(t, tt.message, recErr.Message)
			assert.Zero(t, reviews.calls, "no upstream call after a terminal failure")
		})
	}
}

func TestRecommend_UpstreamFailure(t *testing.T) {
	cause := errors.New("connection refused")
	reviews := &fakeReviews{err: cause}

	resp, err := newEngine(reviews).Recommend(context.Background(), domain.RecommendationQuery{FilmID: "7"})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestRecommend_EmptyCandidatesSkipUpstream(t *testing.T) {
	catalog := store.NewMockCatalogStore(
		[]domain.Film{{ID: 1, Title: "Alone", ReleaseDate: domain.NewDate(2000, time.January, 1), GenreID: 3}},
		[]domain.Genre{{ID: 3, Name: "Western"}},
	)
	reviews := &fakeReviews{}
	engine := NewEngine(emptyCandidates{catalog}, reviews, DefaultConfig(), logging.Discard())

	resp, err := engine.Recommend(context.Background(), domain.RecommendationQuery{FilmID: "1"})
	require.NoError(t, err)
	assert.NotNil(t, resp.Recommendations)
	assert.Empty(t, resp.Recommendations)
	assert.Zero(t, reviews.calls)
}

type emptyCandidates struct{ *store.MockCatalogStore }

func (emptyCandidates) FindFilmsInGenreAndDateRange(context.Context, int, domain.Date, domain.Date) ([]domain.CandidateFilm, error) {
	return []domain.CandidateFilm{}, nil
}

func TestRecommend_CatalogFailureIsInternal(t *testing.T) {
	boom := errors.New("catalog offline")
	engine := NewEngine(failingCatalog{boom}, &fakeReviews{}, DefaultConfig(), logging.Discard())

	_, err := engine.Recommend(context.Background(), domain.RecommendationQuery{FilmID: "7"})
	assert.ErrorIs(t, err, boom)
	var recErr *Error
	assert.False(t, errors.As(err, &recErr))
}

type failingCatalog struct{ err error }

func (f failingCatalog) GetFilmByID(context.Context, int) (*domain.Film, error) { return nil, f.err }
func (f failingCatalog) GetGenreByID(context.Context, int) (*domain.Genre, error) {
	return nil, f.err
}
func (f failingCatalog) FindFilmsInGenreAndDateRange(context.Context, int, domain.Date, domain.Date) ([]domain.CandidateFilm, error) {
	return nil, f.err
}
func (f failingCatalog) Ping(context.Context) error { return f.err }

func TestParseQuery_Defaults(t *testing.T) {
	p, err := ParseQuery(validator.New(), domain.RecommendationQuery{FilmID: "12", Offset: "3"})
	require.NoError(t, err)
	assert.Equal(t, Params{FilmID: 12, Limit: DefaultLimit, Offset: 3}, p)
}

func TestRecommend_WindowFollowsConfig(t *testing.T) {
	reviews := &fakeReviews{}
	engine := NewEngine(dramaCatalog(), reviews, Config{MinReviews: 5, MinAverageRating: 4, WindowYears: 60}, logging.Discard())

	_, err := engine.Recommend(context.Background(), domain.RecommendationQuery{FilmID: "7"})
	require.NoError(t, err)
	assert.Equal(t, []int{7, 8, 9, 10}, reviews.gotIDs)
}
