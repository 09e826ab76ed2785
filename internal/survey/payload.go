package survey

import (
	"errors"
	"fmt"
	"strings"
)

// Rating group keys as they appear on the page.
const (
	CityServices  = "city_services"
	HousingCosts  = "housing_costs"
	SchoolQuality = "school_quality"
	LocalPolicies = "local_policies"
	Maintenance   = "maintenance"
	SocialEvents  = "social_events"
)

const (
	Unanswered = 0
	MinRating  = 1
	MaxRating  = 5
)

// GroupKeys lists the rating groups in document order.
var GroupKeys = []string{
	CityServices,
	HousingCosts,
	SchoolQuality,
	LocalPolicies,
	Maintenance,
	SocialEvents,
}

// Question pairs a rating group with the prompt shown above its stars.
type Question struct {
	Key    string
	Prompt string
}

var Questions = []Question{
	{Key: CityServices, Prompt: "How satisfied are you with the availability of information about the city services?"},
	{Key: HousingCosts, Prompt: "How satisfied are you with the cost of housing?"},
	{Key: SchoolQuality, Prompt: "How satisfied are you with the overall quality of public schools?"},
	{Key: LocalPolicies, Prompt: "How much do you trust in the local police?"},
	{Key: Maintenance, Prompt: "How much are you satisfied in the maintenance of streets and sidewalks?"},
	{Key: SocialEvents, Prompt: "How much are you satisfied in the availability of social community events?"},
}

var ErrUnanswered = errors.New("not all questions are answered")

// ValidationError reports the rating groups that were left unanswered.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrUnanswered, strings.Join(e.Missing, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrUnanswered
}

// Payload is the body posted to the prediction endpoint. A zero field
// means the group was not answered.
type Payload struct {
	CityServices  int `json:"city_services"`
	HousingCosts  int `json:"housing_costs"`
	SchoolQuality int `json:"school_quality"`
	LocalPolicies int `json:"local_policies"`
	Maintenance   int `json:"maintenance"`
	SocialEvents  int `json:"social_events"`
}

func (p *Payload) field(key string) *int {
	switch key {
	case CityServices:
		return &p.CityServices
	case HousingCosts:
		return &p.HousingCosts
	case SchoolQuality:
		return &p.SchoolQuality
	case LocalPolicies:
		return &p.LocalPolicies
	case Maintenance:
		return &p.Maintenance
	case SocialEvents:
		return &p.SocialEvents
	}
	return nil
}

// Get returns the rating stored under key.
func (p Payload) Get(key string) (int, bool) {
	f := p.field(key)
	if f == nil {
		return 0, false
	}
	return *f, true
}

// Set stores a rating under key and reports whether the key is known.
func (p *Payload) Set(key string, value int) bool {
	f := p.field(key)
	if f == nil {
		return false
	}
	*f = value
	return true
}

// Values returns the ratings in GroupKeys order.
func (p Payload) Values() []int {
	out := make([]int, 0, len(GroupKeys))
	for _, key := range GroupKeys {
		v, _ := p.Get(key)
		out = append(out, v)
	}
	return out
}

// Validate fails with a *ValidationError when any group is unanswered or
// holds a value outside the star range.
func (p Payload) Validate() error {
	var missing []string
	for _, key := range GroupKeys {
		v, _ := p.Get(key)
		if v < MinRating || v > MaxRating {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
