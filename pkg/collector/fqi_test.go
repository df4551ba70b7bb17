package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	rice = Profile{Name: "White rice", Kind: KindRice, GasCritical: 250, TempCritical: 35}
	meat = Profile{Name: "Beef/Chicken", Kind: KindMeat, GasCritical: 800, TempCritical: 32}
)

func TestFoodQuality(t *testing.T) {
	tests := []struct {
		name       string
		sample     Sample
		profile    Profile
		wantFQI    int
		wantStatus string
	}{
		{"clean air", Sample{Gas: 50, Temperature: 20, Humidity: 50, Red: 100, Green: 100, Blue: 100}, rice, 100, StatusFresh},
		{"green mould on rice", Sample{Gas: 50, Temperature: 20, Humidity: 50, Red: 10, Green: 40, Blue: 10}, rice, 0, StatusSpoiledVisual},
		{"gas at critical", Sample{Gas: 250, Temperature: 20, Humidity: 50}, rice, 0, StatusSpoiledGas},
		{"gas near critical", Sample{Gas: 200, Temperature: 20, Humidity: 50}, rice, 55, StatusStartingSpoil},
		{"temperature at critical", Sample{Gas: 50, Temperature: 35, Humidity: 50}, rice, 52, StatusDamagedHeat},
		{"humid", Sample{Gas: 50, Temperature: 20, Humidity: 95}, rice, 85, StatusFresh},
		{"humid with some gas", Sample{Gas: 100, Temperature: 20, Humidity: 95}, rice, 60, StatusStartingSpoil},
		{"half way to critical gas", Sample{Gas: 150, Temperature: 20, Humidity: 50}, rice, 50, StatusSpoiled},
		{"meat tolerates more gas", Sample{Gas: 425, Temperature: 20, Humidity: 50}, meat, 50, StatusSpoiled},
		{"below gas floor", Sample{Gas: 10, Temperature: 20, Humidity: 50}, meat, 100, StatusFresh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fqi, status := FoodQuality(tt.sample, tt.profile)
			assert.Equal(t, tt.wantFQI, fqi)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestMouldDetected(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b int
		kind    Kind
		want    bool
	}{
		{"too dark to judge", 0, 0, 0, KindRice, false},
		{"white rice", 100, 100, 100, KindRice, false},
		{"greenish rice", 10, 40, 10, KindRice, true},
		{"bluish rice", 50, 50, 80, KindRice, true},
		{"dim rice", 40, 40, 40, KindRice, true},
		{"greenish bread", 50, 70, 50, KindBread, true},
		{"plain bread", 50, 60, 50, KindBread, false},
		{"dark tempeh", 30, 30, 30, KindTempeh, true},
		{"white tempeh", 100, 100, 100, KindTempeh, false},
		{"meat is never judged by colour", 10, 90, 10, KindMeat, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MouldDetected(tt.r, tt.g, tt.b, tt.kind))
		})
	}
}

func TestRemainingLife(t *testing.T) {
	assert.Equal(t, "0 h (spoiled)", RemainingLife(50, 20, rice))
	assert.Equal(t, "0 h (spoiled)", RemainingLife(0, 20, rice))

	// Cool storage decays at the base rate.
	assert.Equal(t, "± 33.3 h", RemainingLife(100, 20, rice))
	// 5 °C below critical: 1.5 * (1 + 5*0.5) = 5.25 per hour.
	assert.Equal(t, "± 4.0 h", RemainingLife(71, 30, rice))
	// Overheated meat: 1.5 * 10 * 1.5 = 22.5 per hour.
	assert.Equal(t, "± 2.0 h", RemainingLife(95, 40, meat))
	// Overheated rice: 15 per hour.
	assert.Equal(t, "± 12 min", RemainingLife(53, 40, rice))
}

func TestAssess(t *testing.T) {
	a := Assess(Sample{Gas: 50, Temperature: 20, Humidity: 50, Red: 100, Green: 100, Blue: 100}, rice)
	assert.Equal(t, Assessment{FQI: 100, Status: StatusFresh, EstimatedLife: "± 33.3 h"}, a)

	a = Assess(Sample{Gas: 300, Temperature: 20, Humidity: 50}, rice)
	assert.Equal(t, Assessment{FQI: 0, Status: StatusSpoiledGas, EstimatedLife: "0 h (spoiled)"}, a)
}
