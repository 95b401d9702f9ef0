// cmd/recommendationservice/demo.go
package main

import (
	"time"

	"recommendation-service/internal/domain"
	"recommendation-service/internal/store"
)

// demoCatalog is a handful of films for trying the service without a database file.
func demoCatalog() *store.MockCatalogStore {
	return store.NewMockCatalogStore(
		[]domain.Film{
			{ID: 1, Title: "Big Fish", ReleaseDate: domain.NewDate(2003, time.December, 10), GenreID: 1},
			{ID: 2, Title: "Ed Wood", ReleaseDate: domain.NewDate(1994, time.September, 30), GenreID: 1},
			{ID: 3, Title: "Amélie", ReleaseDate: domain.NewDate(2001, time.April, 25), GenreID: 1},
			{ID: 7, Title: "The Social Network", ReleaseDate: domain.NewDate(2010, time.October, 1), GenreID: 2},
			{ID: 8, Title: "Good Will Hunting", ReleaseDate: domain.NewDate(1997, time.December, 5), GenreID: 2},
			{ID: 9, Title: "Moneyball", ReleaseDate: domain.NewDate(2011, time.September, 23), GenreID: 2},
			{ID: 10, Title: "Casablanca", ReleaseDate: domain.NewDate(1942, time.November, 26), GenreID: 2},
		},
		[]domain.Genre{
			{ID: 1, Name: "Comedy"},
			{ID: 2, Name: "Drama"},
		},
	)
}
