package models

import "time"

// PredictionRecord is one row of the happy_predictions table.
type PredictionRecord struct {
	ID            int64     `json:"id"`
	CityServices  int       `json:"city_services"`
	HousingCosts  int       `json:"housing_costs"`
	SchoolQuality int       `json:"school_quality"`
	LocalPolicies int       `json:"local_policies"`
	Maintenance   int       `json:"maintenance"`
	SocialEvents  int       `json:"social_events"`
	Prediction    int       `json:"prediction"`
	Probability   float64   `json:"probability"`
	CreatedAt     time.Time `json:"created_at"`
}
