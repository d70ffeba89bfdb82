package domain

import (
	"errors"
	"fmt"
	"slices"
)

// Country is the static sampling configuration for one country.
type Country struct {
	Name    string
	GeoCode string // ISO alpha-2, used by the trends provider
	Seasons Calendar
	Regions []string
}

// Catalog is the immutable set of countries and activities a run samples.
// Accessors return copies.
type Catalog struct {
	countries  []Country
	activities []string
	ranges     map[string]map[string]SeasonRange
}

// NewCatalog validates the tables and derives every season range up front,
// so a bad calendar fails at start-up instead of mid-run.
func NewCatalog(countries []Country, activities []string) (*Catalog, error) {
	if len(countries) == 0 {
		return nil, errors.New("catalog has no countries")
	}
	if len(activities) == 0 {
		return nil, errors.New("catalog has no activities")
	}

	c := &Catalog{
		countries:  make([]Country, 0, len(countries)),
		activities: slices.Clone(activities),
		ranges:     make(map[string]map[string]SeasonRange, len(countries)),
	}
	for _, country := range countries {
		if country.Name == "" {
			return nil, errors.New("catalog country has no name")
		}
		if _, dup := c.ranges[country.Name]; dup {
			return nil, fmt.Errorf("country %q listed twice", country.Name)
		}
		if len(country.GeoCode) != 2 {
			return nil, fmt.Errorf("country %q: geo code %q is not two letters", country.Name, country.GeoCode)
		}
		ranges, err := DeriveRanges(country.Seasons)
		if err != nil {
			return nil, fmt.Errorf("country %q: %w", country.Name, err)
		}
		c.ranges[country.Name] = ranges
		c.countries = append(c.countries, cloneCountry(country))
	}
	return c, nil
}

// Countries returns the countries in configuration order.
func (c *Catalog) Countries() []Country {
	out := make([]Country, len(c.countries))
	for i, country := range c.countries {
		out[i] = cloneCountry(country)
	}
	return out
}

// Country returns the named country.
func (c *Catalog) Country(name string) (Country, bool) {
	for _, country := range c.countries {
		if country.Name == name {
			return cloneCountry(country), true
		}
	}
	return Country{}, false
}

// Activities returns the activity vocabulary in configuration order.
func (c *Catalog) Activities() []string {
	return slices.Clone(c.activities)
}

// Range returns the derived range of a country's season.
func (c *Catalog) Range(country, season string) (SeasonRange, bool) {
	r, ok := c.ranges[country][season]
	return r, ok
}

// Restrict returns a catalog with only the named countries, in the order
// they appear in c. An empty list returns c unchanged.
func (c *Catalog) Restrict(names []string) (*Catalog, error) {
	if len(names) == 0 {
		return c, nil
	}
	kept := make([]Country, 0, len(names))
	for _, country := range c.countries {
		if slices.Contains(names, country.Name) {
			kept = append(kept, country)
		}
	}
	for _, name := range names {
		if _, ok := c.ranges[name]; !ok {
			return nil, fmt.Errorf("unknown country %q", name)
		}
	}
	return NewCatalog(kept, c.activities)
}

func cloneCountry(c Country) Country {
	c.Seasons = slices.Clone(c.Seasons)
	c.Regions = slices.Clone(c.Regions)
	return c
}
