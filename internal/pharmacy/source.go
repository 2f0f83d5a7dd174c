package pharmacy

import (
	"context"
	"errors"

	"github.com/nobetci/eczane/internal/database"
	"github.com/nobetci/eczane/internal/models"
)

// ErrCityNotFound is returned when a city slug has no pharmacy pages.
var ErrCityNotFound = errors.New("city not found")

// Source provides on-duty pharmacy records.
type Source interface {
	ListByCity(ctx context.Context, citySlug string) ([]models.Pharmacy, error)
	Cities(ctx context.Context) ([]models.City, error)
}

// Ensure concrete types implement the interface
var (
	_ Source = (*database.PharmacyRepository)(nil)
	_ Source = (*FileSource)(nil)
	_ Source = (*CachedSource)(nil)
)
