// Package geocsv resolves region names against a CSV table of places with
// latitude and longitude columns, matching accent- and case-insensitively.
//
// An exact name match is preferred over a containment match, so "South
// Wales" does not resolve to "New South Wales". Containment is the
// fallback. Rows of the requested country are searched before the rest of
// the table.
package geocsv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/couchcryptid/travel-trends-collector/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Place is one row of the table.
type Place struct {
	Name        string
	CountryCode string
	Coordinates domain.Coordinates

	folded string
}

// Geocoder implements domain.Geocoder over an in-memory table. It is safe
// for concurrent use once built.
type Geocoder struct {
	places    []Place
	byCountry map[string][]int
}

// New builds a Geocoder from places, keeping their order.
func New(places []Place) *Geocoder {
	g := &Geocoder{
		places:    make([]Place, len(places)),
		byCountry: make(map[string][]int),
	}
	for i, p := range places {
		p.folded = Fold(p.Name)
		p.CountryCode = strings.ToUpper(strings.TrimSpace(p.CountryCode))
		g.places[i] = p
		if p.CountryCode != "" {
			g.byCountry[p.CountryCode] = append(g.byCountry[p.CountryCode], i)
		}
	}
	return g
}

// Len returns the number of places in the table.
func (g *Geocoder) Len() int { return len(g.places) }

// Lookup returns the coordinates of the first place matching name. An exact
// folded match wins over a containment match. Rows of countryCode are
// searched before the whole table.
func (g *Geocoder) Lookup(_ context.Context, name, countryCode string) (domain.Coordinates, error) {
	query := Fold(name)
	if query == "" {
		return domain.Coordinates{}, fmt.Errorf("lookup %q: %w", name, domain.ErrLocationNotFound)
	}

	if idx, ok := g.byCountry[strings.ToUpper(countryCode)]; ok {
		if p, ok := g.match(query, idx); ok {
			return p.Coordinates, nil
		}
	}
	if p, ok := g.match(query, nil); ok {
		return p.Coordinates, nil
	}
	return domain.Coordinates{}, fmt.Errorf("lookup %q: %w", name, domain.ErrLocationNotFound)
}

// match scans the rows at idx (all rows when idx is nil).
func (g *Geocoder) match(query string, idx []int) (Place, bool) {
	n := len(g.places)
	if idx != nil {
		n = len(idx)
	}
	at := func(i int) *Place {
		if idx != nil {
			return &g.places[idx[i]]
		}
		return &g.places[i]
	}

	contains := -1
	for i := range n {
		p := at(i)
		if p.folded == query {
			return *p, true
		}
		if contains < 0 && strings.Contains(p.folded, query) {
			contains = i
		}
	}
	if contains >= 0 {
		return *at(contains), true
	}
	return Place{}, false
}

// Fold lowercases s and strips diacritics so "Île-de-France" and
// "ile-de-france" compare equal.
func Fold(s string) string {
	s = strings.ReplaceAll(s, "’", "'")
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return strings.TrimSpace(out)
}

// Load reads the table from a file path or an http(s) URL.
func Load(ctx context.Context, source string, client *http.Client) (*Geocoder, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return fetch(ctx, source, client)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open places table: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func fetch(ctx context.Context, url string, client *http.Client) (*Geocoder, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch places table: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch places table: status %d", resp.StatusCode)
	}
	return Parse(resp.Body)
}

// Parse reads a CSV with a header row containing at least name, latitude
// and longitude. A country_code column is used when present. Rows with
// unparseable coordinates are skipped.
func Parse(r io.Reader) (*Geocoder, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("places table is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	nameCol, okName := cols["name"]
	latCol, okLat := cols["latitude"]
	lonCol, okLon := cols["longitude"]
	if !okName || !okLat || !okLon {
		return nil, fmt.Errorf("places table header %v: need name, latitude and longitude", header)
	}
	ccCol, hasCC := cols["country_code"]

	var places []Place
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read places table: %w", err)
		}
		if len(rec) <= max(nameCol, latCol, lonCol) {
			continue
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(rec[latCol]), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(rec[lonCol]), 64)
		if errLat != nil || errLon != nil {
			continue
		}
		p := Place{Name: rec[nameCol], Coordinates: domain.Coordinates{Lat: lat, Lon: lon}}
		if hasCC && ccCol < len(rec) {
			p.CountryCode = rec[ccCol]
		}
		places = append(places, p)
	}
	if len(places) == 0 {
		return nil, errors.New("places table has no usable rows")
	}
	return New(places), nil
}
