// internal/domain/review.go
package domain

import "math"

// Review is a single rating inside a bundle returned by the review source.
// Extra fields sent by the upstream are ignored.
type Review struct {
	Rating float64 `json:"rating"`
}

// ReviewBundle groups the reviews the upstream aggregate holds for one film.
type ReviewBundle struct {
	FilmID  int      `json:"film_id"`
	Reviews []Review `json:"reviews"`
}

// AverageRating returns the mean rating rounded to two decimal places.
// A bundle without reviews averages to 0.
func (b ReviewBundle) AverageRating() float64 {
	if len(b.Reviews) == 0 {
		return 0
	}
	var sum float64
	for _, r := range b.Reviews {
		sum += r.Rating
	}
	return math.Round(sum/float64(len(b.Reviews))*100) / 100
}
