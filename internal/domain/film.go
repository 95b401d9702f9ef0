// internal/domain/film.go
package domain

// Film is a catalog row from the films table.
type Film struct {
	ID            int     `json:"id" db:"id"`
	Title         string  `json:"title" db:"title"`
	ReleaseDate   Date    `json:"releaseDate" db:"release_date"`
	GenreID       int     `json:"genreId" db:"genre_id"`
	AverageRating float64 `json:"averageRating" db:"average_rating"`
	ReviewCount   int     `json:"reviewCount" db:"reviews"` // column keeps the legacy name
}

// Genre is a catalog row from the genres table.
type Genre struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// CandidateFilm is the projection of a film used when building recommendations.
type CandidateFilm struct {
	ID          int    `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	ReleaseDate Date   `json:"releaseDate" db:"release_date"`
}
