package collector

import (
	"fmt"
	"math"
)

// Freshness statuses.
const (
	StatusFresh         = "Fresh"
	StatusStartingSpoil = "Starting to spoil"
	StatusSpoiled       = "SPOILED"
	StatusSpoiledVisual = "SPOILED (visual)"
	StatusSpoiledGas    = "SPOILED (gas)"
	StatusDamagedHeat   = "Damaged (heat)"
	StatusOffline       = "OFFLINE"
)

const (
	spoiledThreshold    = 50
	freshThreshold      = 75
	gasFloor            = 50.0
	gasWarningRatio     = 0.8
	humidityLimit       = 90.0
	humidityPenalty     = 15.0
	baseDecayPerHour    = 1.5
	overheatDecayFactor = 10.0
	warmDecayWindow     = 10.0
	warmDecayPerDegree  = 0.5
	darkBrightness      = 20.0
)

// Sample is the part of a report used for grading.
type Sample struct {
	Gas         float64
	Temperature float64
	Humidity    float64
	Red         int
	Green       int
	Blue        int
}

// Assessment is a graded sample.
type Assessment struct {
	FQI           int
	Status        string
	EstimatedLife string
}

// Assess grades s against p.
func Assess(s Sample, p Profile) Assessment {
	fqi, status := FoodQuality(s, p)
	return Assessment{
		FQI:           fqi,
		Status:        status,
		EstimatedLife: RemainingLife(fqi, s.Temperature, p),
	}
}

// FoodQuality returns the food quality index (0-100) and its status.
// Visible mould, critical gas or critical temperature override the score.
func FoodQuality(s Sample, p Profile) (int, string) {
	if MouldDetected(s.Red, s.Green, s.Blue, p.Kind) {
		return 0, StatusSpoiledVisual
	}

	ratio := s.Gas / p.GasCritical
	switch {
	case ratio >= 1:
		return 0, StatusSpoiledGas
	case ratio >= gasWarningRatio:
		return 55, StatusStartingSpoil
	}

	if s.Temperature >= p.TempCritical {
		return 52, StatusDamagedHeat
	}

	risk := math.Max(0, math.Min((s.Gas-gasFloor)/(p.GasCritical-gasFloor), 1))
	penalty := 0.0
	if s.Humidity > humidityLimit {
		penalty = humidityPenalty
	}
	score := 100 - risk*100 - penalty

	status := StatusFresh
	switch {
	case score <= spoiledThreshold:
		status = StatusSpoiled
	case score < freshThreshold:
		status = StatusStartingSpoil
	}
	return int(math.Max(0, score)), status
}

// MouldDetected looks for mould colouring typical of the food kind.
// Channels are colour sensor pulse widths.
func MouldDetected(r, g, b int, kind Kind) bool {
	brightness := float64(r+g+b) / 3
	if brightness < darkBrightness {
		return false
	}

	switch kind {
	case KindRice:
		return g > r+20 || b > r+20 || (brightness > darkBrightness && brightness < 60)
	case KindBread:
		return g > r+15 || b > r+15
	case KindTempeh:
		return brightness < 40
	default:
		return false
	}
}

// RemainingLife estimates how long until the food quality index reaches the
// spoiled threshold at the current temperature.
func RemainingLife(fqi int, temperature float64, p Profile) string {
	if fqi <= spoiledThreshold {
		return "0 h (spoiled)"
	}

	decay := baseDecayPerHour
	switch diff := p.TempCritical - temperature; {
	case diff <= 0:
		decay *= overheatDecayFactor
	case diff <= warmDecayWindow:
		decay *= 1 + (warmDecayWindow-diff)*warmDecayPerDegree
	}
	decay *= kindDecayFactor(p.Kind)

	hours := float64(fqi-spoiledThreshold) / decay
	switch {
	case hours < 1:
		return fmt.Sprintf("± %d min", max(1, int(hours*60)))
	case hours > 48:
		return fmt.Sprintf("> %d days", int(hours/24))
	default:
		return fmt.Sprintf("± %.1f h", hours)
	}
}

func kindDecayFactor(k Kind) float64 {
	switch k {
	case KindTofu:
		return 2.0
	case KindDairy:
		return 1.8
	case KindMeat:
		return 1.5
	case KindGreens:
		return 1.2
	default:
		return 1
	}
}
