// internal/recommend/query.go
package recommend

import (
	"errors"
	"strconv"

	"recommendation-service/internal/domain"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultLimit  = 10
	DefaultOffset = 0
)

// Params is a validated recommendation request.
type Params struct {
	FilmID int
	Limit  int
	Offset int
}

// ParseQuery validates the raw inputs and applies pagination defaults.
// A bad film id reports "invalid id"; bad pagination reports "invalid query params".
func ParseQuery(v *validator.Validate, q domain.RecommendationQuery) (Params, error) {
	if err := v.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Field() == "FilmID" {
					return Params{}, invalidInput("invalid id", err)
				}
			}
		}
		return Params{}, invalidInput("invalid query params", err)
	}

	filmID, err := strconv.Atoi(q.FilmID)
	if err != nil {
		return Params{}, invalidInput("invalid id", err)
	}
	p := Params{FilmID: filmID, Limit: DefaultLimit, Offset: DefaultOffset}
	if q.Limit != "" {
		if p.Limit, err = strconv.Atoi(q.Limit); err != nil {
			return Params{}, invalidInput("invalid query params", err)
		}
	}
	if q.Offset != "" {
		if p.Offset, err = strconv.Atoi(q.Offset); err != nil {
			return Params{}, invalidInput("invalid query params", err)
		}
	}
	return p, nil
}
