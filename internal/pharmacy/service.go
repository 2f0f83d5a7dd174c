package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/nobetci/eczane/internal/models"
	"github.com/nobetci/eczane/internal/validation"
)

const (
	// DefaultLimit caps result lists when the caller does not ask for a size
	DefaultLimit = 50
	// MaxLimit is the largest page a caller may request
	MaxLimit = 200
)

// ErrInvalidQuery wraps validation failures of a search query.
var ErrInvalidQuery = errors.New("invalid query")

// Query selects on-duty pharmacies in one city.
type Query struct {
	City           string `validate:"required,max=64,slug"`
	District       string `validate:"max=64"`
	SortByDistance bool
	Limit          int `validate:"gte=0,lte=200"`
}

// Service answers pharmacy lookups on top of a Source.
type Service struct {
	source Source
}

// NewService creates a pharmacy service.
func NewService(source Source) *Service {
	return &Service{source: source}
}

// Search returns the pharmacies matching q. District matching is case-insensitive
// under Turkish casing rules. With SortByDistance, pharmacies are ordered by the
// distance supplied by the source, unknown distances last.
func (s *Service) Search(ctx context.Context, q Query) ([]models.Pharmacy, error) {
	q.District = validation.SanitizeText(q.District)
	if err := validation.Validate.Struct(q); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQuery, describeValidation(err))
	}

	list, err := s.source.ListByCity(ctx, q.City)
	if err != nil {
		return nil, fmt.Errorf("list pharmacies for %s: %w", q.City, err)
	}

	if q.District != "" {
		want := validation.FoldTurkish(q.District)
		filtered := list[:0]
		for _, p := range list {
			if validation.FoldTurkish(p.District) == want || validation.Slugify(p.District) == q.District {
				filtered = append(filtered, p)
			}
		}
		list = filtered
	}

	if q.SortByDistance {
		sort.SliceStable(list, func(i, j int) bool {
			return distanceLess(list[i].Distance, list[j].Distance)
		})
	}

	limit := q.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// Cities returns every city with pharmacy data.
func (s *Service) Cities(ctx context.Context) ([]models.City, error) {
	cities, err := s.source.Cities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	return cities, nil
}

// City looks up a single city by slug.
func (s *Service) City(ctx context.Context, slug string) (models.City, error) {
	cities, err := s.Cities(ctx)
	if err != nil {
		return models.City{}, err
	}
	for _, c := range cities {
		if c.Slug == slug {
			return c, nil
		}
	}
	return models.City{}, ErrCityNotFound
}

// distanceLess orders known distances ascending and unknown (zero) distances last.
func distanceLess(a, b float64) bool {
	switch {
	case a == 0:
		return false
	case b == 0:
		return true
	default:
		return a < b
	}
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	return fmt.Sprintf("field %s failed %s", fe.Field(), fe.Tag())
}
