package domain

import (
	"context"
	"errors"
)

var ErrLocationNotFound = errors.New("location not found")

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Geocoder resolves region display names to coordinates.
type Geocoder interface {
	// Lookup returns the first match for name. countryCode is an ISO
	// alpha-2 hint; implementations may ignore it.
	Lookup(ctx context.Context, name, countryCode string) (Coordinates, error)
}
