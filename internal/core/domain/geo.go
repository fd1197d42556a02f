package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samirrijal/areainsight/internal/pkg/geospatial"
)

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Region is a user-drawn, axis-aligned bounding box in decimal degrees.
// A Region is a value: redrawing the rectangle produces a new Region.
type Region struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// NewRegion builds a Region and validates it.
func NewRegion(north, south, east, west float64) (Region, error) {
	r := Region{North: north, South: south, East: east, West: west}
	if err := r.Validate(); err != nil {
		return Region{}, err
	}
	return r, nil
}

// Validate reports ErrInvalidRegion for out-of-range or inverted bounds.
// Boxes crossing the antimeridian (east < west) are rejected. A zero-size
// box is valid; see IsEmpty.
func (r Region) Validate() error {
	for _, v := range []float64{r.North, r.South, r.East, r.West} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite coordinate", ErrInvalidRegion)
		}
	}
	if r.North > 90 || r.South < -90 {
		return fmt.Errorf("%w: latitude out of range", ErrInvalidRegion)
	}
	if r.East > 180 || r.West < -180 {
		return fmt.Errorf("%w: longitude out of range", ErrInvalidRegion)
	}
	if r.North < r.South {
		return fmt.Errorf("%w: north %.6f is below south %.6f", ErrInvalidRegion, r.North, r.South)
	}
	if r.East < r.West {
		return fmt.Errorf("%w: east %.6f is west of %.6f (antimeridian crossing unsupported)", ErrInvalidRegion, r.East, r.West)
	}
	return nil
}

// IsEmpty reports whether the box has zero extent on either axis.
func (r Region) IsEmpty() bool {
	return r.North == r.South || r.East == r.West
}

// Center returns the midpoint of the box.
func (r Region) Center() GeoPoint {
	lat, lon := geospatial.Midpoint(r.North, r.South, r.East, r.West)
	return GeoPoint{Lat: lat, Lon: lon}
}

// AreaKm2 returns the flat-earth area approximation of the box.
func (r Region) AreaKm2() float64 {
	return geospatial.BoxAreaKm2(r.North, r.South, r.East, r.West)
}

// RadiusMeters is the distance from the center to the north-east corner,
// i.e. the smallest circle around the center covering the whole box.
func (r Region) RadiusMeters() float64 {
	c := r.Center()
	return geospatial.Haversine(c.Lat, c.Lon, r.North, r.East)
}

// Contains reports whether p lies inside the box (edges inclusive).
func (r Region) Contains(p GeoPoint) bool {
	return p.Lat >= r.South && p.Lat <= r.North && p.Lon >= r.West && p.Lon <= r.East
}

// Key is a stable identifier for cache lookups. Bounds are rendered exactly,
// so only identical regions share a key.
func (r Region) Key() string {
	parts := make([]string, 4)
	for i, v := range []float64{r.North, r.South, r.East, r.West} {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ":")
}

// BBox renders the box in Overpass order: south,west,north,east.
func (r Region) BBox() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", r.South, r.West, r.North, r.East)
}
