package geo

import (
	"context"
	"errors"
	"math"
	"strings"
)

const earthRadiusKM = 6371

var ErrNotGeocodable = errors.New("address could not be geocoded")

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Location struct {
	Address     string      `json:"address"`
	City        string      `json:"city"`
	Country     string      `json:"country"`
	Coordinates Coordinates `json:"coordinates"`
}

// Geocoder resolves a free-text address to a location.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Location, error)
}

// Distance returns the great-circle distance between two points in kilometers.
func Distance(a, b Coordinates) float64 {
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Latitude))*math.Cos(radians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}

// StaticGeocoder maps known city names to fixed coordinates. It stands in for
// a real geocoding provider behind the Geocoder interface.
type StaticGeocoder struct{}

var knownCities = map[string]Location{
	"buenos aires": {City: "Buenos Aires", Country: "Argentina", Coordinates: Coordinates{-34.6037, -58.3816}},
	"new york":     {City: "New York", Country: "USA", Coordinates: Coordinates{40.7128, -74.0060}},
	"london":       {City: "London", Country: "UK", Coordinates: Coordinates{51.5074, -0.1278}},
	"madrid":       {City: "Madrid", Country: "Spain", Coordinates: Coordinates{40.4168, -3.7038}},
	"sao paulo":    {City: "Sao Paulo", Country: "Brazil", Coordinates: Coordinates{-23.5505, -46.6333}},
}

func NewStaticGeocoder() *StaticGeocoder {
	return &StaticGeocoder{}
}

func (g *StaticGeocoder) Geocode(_ context.Context, address string) (*Location, error) {
	needle := strings.ToLower(address)
	for city, loc := range knownCities {
		if strings.Contains(needle, city) {
			result := loc
			result.Address = address
			return &result, nil
		}
	}
	return nil, ErrNotGeocodable
}
