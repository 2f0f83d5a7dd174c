package pharmacy

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/nobetci/eczane/internal/models"
	"github.com/nobetci/eczane/internal/validation"
	"gopkg.in/yaml.v3"
)

// Dataset is the on-disk YAML layout of a pharmacy file.
type Dataset struct {
	DutyDate string        `yaml:"duty_date"`
	Cities   []DatasetCity `yaml:"cities"`
}

// DatasetCity groups the pharmacies of one city.
type DatasetCity struct {
	Slug       string            `yaml:"slug"`
	Name       string            `yaml:"name"`
	Pharmacies []models.Pharmacy `yaml:"pharmacies"`
}

// FileSource serves pharmacies from a YAML dataset loaded once at construction.
type FileSource struct {
	cities     []models.City
	pharmacies map[string][]models.Pharmacy
}

// NewFileSource reads and indexes the dataset at path.
func NewFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pharmacy dataset: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseDataset(f)
}

// ParseDataset decodes a YAML dataset and fills in derived fields (slugs, city names, IDs).
func ParseDataset(r io.Reader) (*FileSource, error) {
	var ds Dataset
	if err := yaml.NewDecoder(r).Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode pharmacy dataset: %w", err)
	}

	src := &FileSource{pharmacies: make(map[string][]models.Pharmacy)}
	for _, c := range ds.Cities {
		slug := c.Slug
		if slug == "" {
			slug = validation.Slugify(c.Name)
		}
		if !validation.IsSlug(slug) {
			return nil, fmt.Errorf("city %q has invalid slug %q", c.Name, slug)
		}
		if _, dup := src.pharmacies[slug]; dup {
			return nil, fmt.Errorf("duplicate city slug %q", slug)
		}

		districts := make(map[string]string)
		list := make([]models.Pharmacy, 0, len(c.Pharmacies))
		for i, p := range c.Pharmacies {
			p.CitySlug = slug
			if p.City == "" {
				p.City = c.Name
			}
			if p.ID == "" {
				p.ID = fmt.Sprintf("%s-%d", slug, i+1)
			}
			if p.DutyDate == "" {
				p.DutyDate = ds.DutyDate
			}
			if p.District != "" {
				if key := validation.FoldTurkish(p.District); districts[key] == "" {
					districts[key] = p.District
				}
			}
			list = append(list, p)
		}
		src.pharmacies[slug] = list

		city := models.City{Slug: slug, Name: c.Name}
		for _, d := range districts {
			city.Districts = append(city.Districts, d)
		}
		sort.Strings(city.Districts)
		src.cities = append(src.cities, city)
	}
	sort.Slice(src.cities, func(i, j int) bool { return src.cities[i].Slug < src.cities[j].Slug })
	return src, nil
}

// ListByCity returns a copy of the city's pharmacies; unknown cities yield an empty list.
func (s *FileSource) ListByCity(_ context.Context, citySlug string) ([]models.Pharmacy, error) {
	list := s.pharmacies[citySlug]
	out := make([]models.Pharmacy, len(list))
	copy(out, list)
	return out, nil
}

// Cities returns all cities in slug order.
func (s *FileSource) Cities(_ context.Context) ([]models.City, error) {
	out := make([]models.City, len(s.cities))
	copy(out, s.cities)
	return out, nil
}
