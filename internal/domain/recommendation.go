// internal/domain/recommendation.go
package domain

// RecommendationItem is one recommended film in the response body.
type RecommendationItem struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	ReleaseDate   Date    `json:"releaseDate"`
	Genre         string  `json:"genre"`
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}

// Meta echoes the pagination hints of the request.
type Meta struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// RecommendationResponse is the body of a successful recommendations request.
type RecommendationResponse struct {
	Recommendations []RecommendationItem `json:"recommendations"`
	Meta            Meta                 `json:"meta"`
}

// RecommendationQuery carries the raw request inputs before they are parsed.
type RecommendationQuery struct {
	FilmID string `validate:"required,number"`
	Limit  string `validate:"omitempty,number"`
	Offset string `validate:"omitempty,number"`
}
