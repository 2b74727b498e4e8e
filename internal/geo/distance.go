// Package geo provides great-circle distance computation between
// geographic coordinates.
package geo

import (
	"math"

	"buddyup/internal/models"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Validate checks that the coordinate is within valid ranges.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return models.NewInvalidCoordinateError("coordinate must not be NaN")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return models.NewInvalidCoordinateError("latitude must be between -90 and 90")
	}
	if c.Lon < -180 || c.Lon > 180 {
		return models.NewInvalidCoordinateError("longitude must be between -180 and 180")
	}
	return nil
}

// DistanceKm returns the great-circle distance between a and b in
// kilometers using the haversine formula on a spherical Earth.
// It is symmetric and returns 0 for identical coordinates.
func DistanceKm(a, b Coordinate) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	if a == b {
		return 0, nil
	}

	dLat := (b.Lat - a.Lat) * (math.Pi / 180)
	dLon := (b.Lon - a.Lon) * (math.Pi / 180)
	lat1 := a.Lat * (math.Pi / 180)
	lat2 := b.Lat * (math.Pi / 180)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c, nil
}
