package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"recommendation-service/internal/logging"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(t *testing.T, handler http.HandlerFunc) (*HTTPReviewSource, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	src, err := NewHTTPReviewSource(ReviewSourceConfig{
		BaseURL:     srv.URL + "/reviews",
		Timeout:     200 * time.Millisecond,
		OpenTimeout: time.Minute,
	}, logging.Discard())
	require.NoError(t, err)
	return src, &hits
}

func TestFetchReviews_Success(t *testing.T) {
	var gotQuery, gotPath string
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"film_id":8,"reviews":[{"rating":4,"author":"x"},{"rating":5}]},{"film_id":9,"reviews":[]}]`))
	})

	bundles, err := src.FetchReviews(context.Background(), []int{7, 8, 9})
	require.NoError(t, err)

	assert.Equal(t, "/reviews", gotPath)
	assert.Equal(t, "films=7,8,9", gotQuery)
	require.Len(t, bundles, 2)
	assert.Equal(t, 8, bundles[0].FilmID)
	assert.Len(t, bundles[0].Reviews, 2)
	assert.Equal(t, 5.0, bundles[0].Reviews[1].Rating)
	assert.Empty(t, bundles[1].Reviews)
}

func TestFetchReviews_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-2xx", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusServiceUnavailable)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"film_id":`))
		}},
		{"null body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`null`))
		}},
		{"trailing data", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"film_id":1,"reviews":[]}]garbage`))
		}},
		{"object instead of array", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"film_id":1}`))
		}},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, _ := newTestSource(t, tt.handler)
			_, err := src.FetchReviews(context.Background(), []int{1})
			assert.ErrorIs(t, err, ErrReviewSourceUnavailable)
		})
	}
}

func TestFetchReviews_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	src, hits := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := src.FetchReviews(ctx, []int{1})
		require.ErrorIs(t, err, ErrReviewSourceUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, src.breaker.State())

	_, err := src.FetchReviews(ctx, []int{1})
	assert.ErrorIs(t, err, ErrReviewSourceUnavailable)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.EqualValues(t, 5, atomic.LoadInt32(hits), "open circuit must not reach the upstream")
}

func TestFetchReviews_CancelledCallerDoesNotTrip(t *testing.T) {
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 6; i++ {
		_, err := src.FetchReviews(ctx, []int{1})
		assert.ErrorIs(t, err, ErrReviewSourceUnavailable)
	}
	assert.Equal(t, gobreaker.StateClosed, src.breaker.State())
}

func TestRequestURL_KeepsExistingQuery(t *testing.T) {
	src, err := NewHTTPReviewSource(ReviewSourceConfig{BaseURL: "http://reviews.local/api?key=abc"}, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, "http://reviews.local/api?key=abc&films=1,2", src.requestURL([]int{1, 2}))
}

func TestNewHTTPReviewSource_RejectsRelativeURL(t *testing.T) {
	_, err := NewHTTPReviewSource(ReviewSourceConfig{BaseURL: "/reviews"}, logging.Discard())
	assert.Error(t, err)
}
