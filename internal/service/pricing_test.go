package service

import (
	"math"
	"testing"

	"github.com/jaswant2111058/Vahanwire-server/internal/domain"
)

func TestBasePrice_PerVehicleType(t *testing.T) {
	cases := []struct {
		name        string
		vehicleType domain.VehicleType
		distanceKm  float64
		durationMin int
		want        float64
	}{
		{"sedan", domain.VehicleTypeSedan, 10, 24, 50 + 10*12 + 24*2},
		{"hatchback", domain.VehicleTypeHatchback, 10, 24, 40 + 10*10 + 24*1.5},
		{"suv", domain.VehicleTypeSUV, 10, 24, 70 + 10*15 + 24*2.5},
		{"luxury", domain.VehicleTypeLuxury, 10, 24, 100 + 10*20 + 24*3},
		{"unknown falls back to sedan", domain.VehicleType("RICKSHAW"), 10, 24, 50 + 10*12 + 24*2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := BasePrice(tc.distanceKm, tc.durationMin, tc.vehicleType)
			if got != math.Round(tc.want) {
				t.Errorf("BasePrice = %.0f, want %.0f", got, tc.want)
			}
		})
	}
}

func TestDefaultMaxPrice(t *testing.T) {
	if got := DefaultMaxPrice(400); got != 600 {
		t.Errorf("DefaultMaxPrice(400) = %.0f, want 600", got)
	}
}

func TestEstimateDuration(t *testing.T) {
	// 25 km at 25 km/h is an hour.
	if got := EstimateDuration(25); got != 60 {
		t.Errorf("EstimateDuration(25) = %d, want 60", got)
	}
	if got := EstimateDuration(0); got != 0 {
		t.Errorf("EstimateDuration(0) = %d, want 0", got)
	}
}

func TestPriceRange(t *testing.T) {
	min, max := PriceRange(400)
	if min != 280 {
		t.Errorf("min = %.0f, want 280", min)
	}
	if max != 520 {
		t.Errorf("max = %.0f, want 520", max)
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// Bangalore city center to airport, roughly 30 km.
	got := Haversine(12.9716, 77.5946, 13.1986, 77.7066)
	if got < 25 || got > 35 {
		t.Errorf("Haversine = %.1f km, expected roughly 30", got)
	}

	if zero := Haversine(12.97, 77.59, 12.97, 77.59); zero != 0 {
		t.Errorf("distance to self = %f, want 0", zero)
	}
}
