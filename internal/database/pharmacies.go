package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/nobetci/eczane/internal/models"
)

// PharmacyRepository handles on-duty pharmacy rows in the database.
type PharmacyRepository struct {
	db *DB
}

// NewPharmacyRepository creates a new pharmacy repository.
func NewPharmacyRepository(db *DB) *PharmacyRepository {
	return &PharmacyRepository{db: db}
}

// ListByCity returns the pharmacies on duty in the given city, ordered by district then name.
func (r *PharmacyRepository) ListByCity(ctx context.Context, citySlug string) ([]models.Pharmacy, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, address, district, city, city_slug, phone, lat, lng, distance_km, duty_date, updated_at
		FROM pharmacies
		WHERE city_slug = $1
		ORDER BY district, name
	`, citySlug)
	if err != nil {
		return nil, fmt.Errorf("list pharmacies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Pharmacy
	for rows.Next() {
		var p models.Pharmacy
		var distance sql.NullFloat64
		var dutyDate sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.District, &p.City, &p.CitySlug,
			&p.Phone, &p.Lat, &p.Lng, &distance, &dutyDate, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan pharmacy: %w", err)
		}
		p.Distance = distance.Float64
		p.DutyDate = dutyDate.String
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pharmacies: %w", err)
	}
	return out, nil
}

// Cities returns every city that has at least one pharmacy, with its districts.
func (r *PharmacyRepository) Cities(ctx context.Context) ([]models.City, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT city_slug, MIN(city), ARRAY_AGG(DISTINCT district ORDER BY district) FILTER (WHERE district <> '')
		FROM pharmacies
		GROUP BY city_slug
		ORDER BY city_slug
	`)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.City
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cities: %w", err)
	}
	return out, nil
}

// Upsert inserts or updates a pharmacy by ID.
func (r *PharmacyRepository) Upsert(ctx context.Context, p *models.Pharmacy) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("pharmacy id cannot be empty")
	}
	if strings.TrimSpace(p.CitySlug) == "" {
		return fmt.Errorf("pharmacy %s: city_slug cannot be empty", p.ID)
	}
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pharmacies (id, name, address, district, city, city_slug, phone, lat, lng, distance_km, duty_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			district = EXCLUDED.district,
			city = EXCLUDED.city,
			city_slug = EXCLUDED.city_slug,
			phone = EXCLUDED.phone,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			distance_km = EXCLUDED.distance_km,
			duty_date = EXCLUDED.duty_date,
			updated_at = EXCLUDED.updated_at
	`, p.ID, p.Name, p.Address, p.District, p.City, p.CitySlug, p.Phone, p.Lat, p.Lng,
		nullFloat(p.Distance), nullString(p.DutyDate), now)
	if err != nil {
		return fmt.Errorf("upsert pharmacy %s: %w", p.ID, err)
	}
	p.UpdatedAt = now
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanCity reads one Cities row. Districts arrive as a native text[] so
// names containing commas survive intact.
func scanCity(row rowScanner) (models.City, error) {
	var c models.City
	if err := row.Scan(&c.Slug, &c.Name, pq.Array(&c.Districts)); err != nil {
		return models.City{}, fmt.Errorf("scan city: %w", err)
	}
	return c, nil
}

func nullFloat(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: f != 0}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
