// Package catalog loads the sampling tables (season calendars, regions,
// geo codes and activities) compiled into the binary.
package catalog

import (
	_ "embed"
	"fmt"

	"github.com/couchcryptid/travel-trends-collector/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type file struct {
	Activities []string  `yaml:"activities"`
	Countries  []country `yaml:"countries"`
}

type country struct {
	Name    string   `yaml:"name"`
	Geo     string   `yaml:"geo"`
	Seasons []season `yaml:"seasons"`
	Regions []string `yaml:"regions"`
}

type season struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
	Days  int    `yaml:"days"`
}

// Default returns the built-in catalog.
func Default() (*domain.Catalog, error) {
	return Parse(defaultCatalog)
}

// MustDefault is Default for program start-up; the embedded tables are
// covered by tests, so a failure here is a build defect.
func MustDefault() *domain.Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a catalog from YAML in the embedded file's format.
func Parse(data []byte) (*domain.Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	countries := make([]domain.Country, 0, len(f.Countries))
	for _, c := range f.Countries {
		cal := make(domain.Calendar, 0, len(c.Seasons))
		for _, s := range c.Seasons {
			start, err := domain.ParseDate(s.Start)
			if err != nil {
				return nil, fmt.Errorf("country %q season %q: %w", c.Name, s.Name, err)
			}
			cal = append(cal, domain.Season{Name: s.Name, Start: start, Days: s.Days})
		}
		countries = append(countries, domain.Country{
			Name:    c.Name,
			GeoCode: c.Geo,
			Seasons: cal,
			Regions: c.Regions,
		})
	}
	return domain.NewCatalog(countries, f.Activities)
}
