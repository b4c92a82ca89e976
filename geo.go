package shroud

import (
	"context"
	"math"
)

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat" msgpack:"lat" bson:"lat"`
	Lon float64 `json:"lon" yaml:"lon" msgpack:"lon" bson:"lon"`
}

// City is a named gazetteer entry.
type City struct {
	Name     string
	Location Coordinate
}

// DefaultGazetteer is a small built-in city table for RoundToNearestCity.
var DefaultGazetteer = []City{
	{Name: "Charlottesville, VA", Location: Coordinate{Lat: 38.0293, Lon: -78.4767}},
	{Name: "Richmond, VA", Location: Coordinate{Lat: 37.5407, Lon: -77.4360}},
	{Name: "Washington, DC", Location: Coordinate{Lat: 38.9072, Lon: -77.0369}},
	{Name: "New York, NY", Location: Coordinate{Lat: 40.7128, Lon: -74.0060}},
	{Name: "Chicago, IL", Location: Coordinate{Lat: 41.8781, Lon: -87.6298}},
	{Name: "Denver, CO", Location: Coordinate{Lat: 39.7392, Lon: -104.9903}},
	{Name: "San Francisco, CA", Location: Coordinate{Lat: 37.7749, Lon: -122.4194}},
	{Name: "London, UK", Location: Coordinate{Lat: 51.5074, Lon: -0.1278}},
	{Name: "Berlin, DE", Location: Coordinate{Lat: 52.5200, Lon: 13.4050}},
	{Name: "Tokyo, JP", Location: Coordinate{Lat: 35.6762, Lon: 139.6503}},
	{Name: "Sydney, AU", Location: Coordinate{Lat: -33.8688, Lon: 151.2093}},
}

const earthRadiusKm = 6371.0

// Distance returns the great-circle distance between a and b in kilometres.
func Distance(a, b Coordinate) float64 {
	lat1, lat2 := a.Lat*math.Pi/180, b.Lat*math.Pi/180
	dLat := lat2 - lat1
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func coordinateOf(v any) (Coordinate, bool) {
	switch c := v.(type) {
	case Coordinate:
		return c, true
	case *Coordinate:
		if c != nil {
			return *c, true
		}
	}
	return Coordinate{}, false
}

type nearestCity struct {
	cities []City
}

// RoundToNearestCity returns a transform replacing a coordinate with the
// name of the nearest city in DefaultGazetteer.
func RoundToNearestCity() Transform {
	return NearestCity(DefaultGazetteer)
}

// NearestCity is RoundToNearestCity over a custom gazetteer.
func NearestCity(cities []City) Transform {
	return &nearestCity{cities: cities}
}

func (t *nearestCity) Name() string { return NameRoundToNearestCity }

func (t *nearestCity) Apply(_ context.Context, _ *Session, value any) (any, error) {
	c, ok := coordinateOf(value)
	if !ok || len(t.cities) == 0 {
		return nil, unsupported(NameRoundToNearestCity, value)
	}

	best, bestDist := t.cities[0], math.Inf(1)
	for _, city := range t.cities {
		if d := Distance(c, city.Location); d < bestDist {
			best, bestDist = city, d
		}
	}
	return best.Name, nil
}

type coordinateOffset struct {
	maxDegrees float64
}

// CoordinateOffset returns a reversible transform that shifts coordinates
// by a session-derived offset of up to maxDegrees on each axis. Relative
// movement within a session is preserved; absolute position is not.
func CoordinateOffset(maxDegrees float64) Reversible {
	return &coordinateOffset{maxDegrees: maxDegrees}
}

func (t *coordinateOffset) Name() string { return NameCoordinateOffset }

func (t *coordinateOffset) offsets(s *Session) (float64, float64, error) {
	lat, err := s.Unit("geo.offset.lat")
	if err != nil {
		return 0, 0, err
	}
	lon, err := s.Unit("geo.offset.lon")
	if err != nil {
		return 0, 0, err
	}
	return lat * t.maxDegrees, lon * t.maxDegrees, nil
}

func (t *coordinateOffset) Apply(_ context.Context, s *Session, value any) (any, error) {
	return t.shift(s, value, 1)
}

func (t *coordinateOffset) Revert(_ context.Context, s *Session, value any) (any, error) {
	return t.shift(s, value, -1)
}

func (t *coordinateOffset) shift(s *Session, value any, sign float64) (any, error) {
	c, ok := coordinateOf(value)
	if !ok {
		return nil, unsupported(NameCoordinateOffset, value)
	}
	dLat, dLon, err := t.offsets(s)
	if err != nil {
		return nil, err
	}
	return Coordinate{Lat: c.Lat + sign*dLat, Lon: c.Lon + sign*dLon}, nil
}
