// Package collector receives controller reports, grades food freshness,
// stores readings and answers each device with its activation command.
package collector

import "time"

// Kind groups foods that share mould signs and spoilage speed.
type Kind string

const (
	KindRice   Kind = "rice"
	KindMeat   Kind = "meat"
	KindTofu   Kind = "tofu"
	KindTempeh Kind = "tempeh"
	KindBread  Kind = "bread"
	KindGreens Kind = "greens"
	KindDairy  Kind = "dairy"
)

// Profile holds the spoilage thresholds of a food.
type Profile struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Kind         Kind    `json:"kind"`
	GasCritical  float64 `json:"mq135_crit"`
	TempCritical float64 `json:"temp_crit"`
}

// DefaultProfiles are seeded into a new store.
var DefaultProfiles = []Profile{
	{Name: "White rice", Kind: KindRice, GasCritical: 250, TempCritical: 35},
	{Name: "Beef/Chicken", Kind: KindMeat, GasCritical: 800, TempCritical: 32},
	{Name: "Tofu", Kind: KindTofu, GasCritical: 350, TempCritical: 30},
	{Name: "Tempeh", Kind: KindTempeh, GasCritical: 650, TempCritical: 32},
	{Name: "Bread", Kind: KindBread, GasCritical: 300, TempCritical: 30},
	{Name: "Leafy greens", Kind: KindGreens, GasCritical: 350, TempCritical: 25},
	{Name: "Milk/Dairy", Kind: KindDairy, GasCritical: 300, TempCritical: 20},
}

// Device is a registered controller.
type Device struct {
	ID        string `json:"device_id"`
	Name      string `json:"name"`
	Active    bool   `json:"is_active"`
	ProfileID int64  `json:"profile_id"`
}

// Reading is one stored, graded report.
type Reading struct {
	ID            int64     `json:"-"`
	DeviceID      string    `json:"device_id"`
	Timestamp     time.Time `json:"timestamp"`
	FoodName      string    `json:"food_name"`
	Gas           float64   `json:"mq135"`
	Temperature   float64   `json:"temp"`
	Humidity      float64   `json:"humidity"`
	Red           int       `json:"r"`
	Green         int       `json:"g"`
	Blue          int       `json:"b"`
	FQI           int       `json:"fqi"`
	Status        string    `json:"status"`
	EstimatedLife string    `json:"estimated_life"`
}
