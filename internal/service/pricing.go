package service

import (
	"math"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
)

// fareRate holds the fare components for one vehicle class.
type fareRate struct {
	BaseFare      float64
	PerKmRate     float64
	PerMinuteRate float64
}

var fareRates = map[domain.VehicleType]fareRate{
	domain.VehicleTypeSedan:     {BaseFare: 50, PerKmRate: 12, PerMinuteRate: 2},
	domain.VehicleTypeHatchback: {BaseFare: 40, PerKmRate: 10, PerMinuteRate: 1.5},
	domain.VehicleTypeSUV:       {BaseFare: 70, PerKmRate: 15, PerMinuteRate: 2.5},
	domain.VehicleTypeLuxury:    {BaseFare: 100, PerKmRate: 20, PerMinuteRate: 3},
}

// averageSpeedKmh is used when the client does not supply a duration.
const averageSpeedKmh = 25.0

// BasePrice computes the starting fare for a trip. Unknown vehicle types
// fall back to sedan rates.
func BasePrice(distanceKm float64, durationMin int, vehicleType domain.VehicleType) float64 {
	rate, ok := fareRates[vehicleType]
	if !ok {
		rate = fareRates[domain.VehicleTypeSedan]
	}

	return math.Round(rate.BaseFare + distanceKm*rate.PerKmRate + float64(durationMin)*rate.PerMinuteRate)
}

// DefaultMaxPrice derives the rider's ceiling when they do not set one.
func DefaultMaxPrice(basePrice float64) float64 {
	return math.Round(basePrice * 1.5)
}

// EstimateDuration estimates trip minutes from distance at average city speed.
func EstimateDuration(distanceKm float64) int {
	return int(math.Round(distanceKm / averageSpeedKmh * 60))
}

// PriceRange returns the advisory band shown to drivers while bidding.
func PriceRange(basePrice float64) (minPrice, maxPrice float64) {
	const maxVariation = 0.3
	return math.Round(basePrice * (1 - maxVariation)), math.Round(basePrice * (1 + maxVariation))
}

// Haversine returns the great-circle distance in kilometers between two points.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0

	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
