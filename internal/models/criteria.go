package models

import "regexp"

var airportCodeRe = regexp.MustCompile(`^[A-Za-z]{3}$`)

type PassengerCounts struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

func (p PassengerCounts) Total() int {
	return p.Adults + p.Children + p.Infants
}

// SearchCriteria describes one logical search. It is treated as immutable
// once a search has been created from it.
type SearchCriteria struct {
	Origin        string          `json:"origin"`
	Destination   string          `json:"destination"`
	DepartureDate string          `json:"departure_date"`
	ReturnDate    *string         `json:"return_date,omitempty"`
	Passengers    PassengerCounts `json:"passengers"`
	CabinClass    string          `json:"cabin_class"`
	Flexible      bool            `json:"flexible,omitempty"`
}

func (c *SearchCriteria) Validate() error {
	if !airportCodeRe.MatchString(c.Origin) {
		return ErrInvalidOrigin
	}
	if !airportCodeRe.MatchString(c.Destination) {
		return ErrInvalidDestination
	}
	if c.DepartureDate == "" {
		return ErrMissingDepartureDate
	}
	if c.Passengers.Adults < 1 {
		return ErrNoAdultPassenger
	}
	if c.Passengers.Children < 0 || c.Passengers.Infants < 0 {
		return ErrNegativePassengers
	}
	if c.Passengers.Infants > c.Passengers.Adults {
		return ErrTooManyInfants
	}
	if c.CabinClass == "" {
		c.CabinClass = "economy"
	}
	return nil
}

func (c SearchCriteria) RoundTrip() bool {
	return c.ReturnDate != nil && *c.ReturnDate != ""
}

// MultiCityCriteria describes a multi-city itinerary: one hop between each
// consecutive pair of cities.
type MultiCityCriteria struct {
	Cities         []string        `json:"cities"`
	DepartureDates []string        `json:"departure_dates,omitempty"`
	Passengers     PassengerCounts `json:"passengers"`
	CabinClass     string          `json:"cabin_class"`
}

func (c MultiCityCriteria) Hops() int {
	if len(c.Cities) < 2 {
		return 0
	}
	return len(c.Cities) - 1
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrInvalidOrigin        ValidationError = "origin must be a 3-letter airport code"
	ErrInvalidDestination   ValidationError = "destination must be a 3-letter airport code"
	ErrMissingDepartureDate ValidationError = "departure_date is required"
	ErrNoAdultPassenger     ValidationError = "at least one adult passenger is required"
	ErrNegativePassengers   ValidationError = "passenger counts cannot be negative"
	ErrTooManyInfants       ValidationError = "infants cannot outnumber adults"
)
