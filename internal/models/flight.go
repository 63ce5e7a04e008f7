package models

import "time"

// RouteSegment is a single flown leg of an itinerary.
type RouteSegment struct {
	Airline          string    `json:"airline"`
	OperatingAirline string    `json:"operating_airline,omitempty"`
	FlightNumber     string    `json:"flight_number"`
	Origin           string    `json:"origin"`
	Destination      string    `json:"destination"`
	Departure        time.Time `json:"departure"`
	Arrival          time.Time `json:"arrival"`
	DurationMinutes  int       `json:"duration_minutes"`
	Aircraft         string    `json:"aircraft,omitempty"`
}

// PointsOption is one loyalty-program redemption alternative for a fare.
type PointsOption struct {
	Program      string  `json:"program"`
	Points       int     `json:"points"`
	TaxesAndFees float64 `json:"taxes_and_fees"`
}

type PricingInfo struct {
	Amount        float64        `json:"amount"`
	Currency      string         `json:"currency"`
	PointsOptions []PointsOption `json:"points_options,omitempty"`
	Taxes         float64        `json:"taxes"`
	Fees          float64        `json:"fees"`
	Total         float64        `json:"total"`
}

type AvailabilityInfo struct {
	AvailableSeats int    `json:"available_seats"`
	BookingClass   string `json:"booking_class,omitempty"`
	FareBasis      string `json:"fare_basis,omitempty"`
}

// FlightResult is one bookable itinerary returned by an adapter. Results are
// never mutated after creation except through Normalize, which clamps and
// derives numeric fields.
type FlightResult struct {
	ID              string           `json:"id"`
	Airline         string           `json:"airline"`
	Route           []RouteSegment   `json:"route"`
	Pricing         PricingInfo      `json:"pricing"`
	Availability    AvailabilityInfo `json:"availability"`
	DurationMinutes int              `json:"duration_minutes"`
	Layovers        int              `json:"layovers"`
	Score           float64          `json:"score,omitempty"`
	Source          string           `json:"source"`
}

// Normalize enforces the result invariants: layovers equals route length
// minus one, seats never negative, duration and total derived when absent.
func (f *FlightResult) Normalize() {
	if len(f.Route) > 0 {
		f.Layovers = len(f.Route) - 1
	} else {
		f.Layovers = 0
	}
	if f.Availability.AvailableSeats < 0 {
		f.Availability.AvailableSeats = 0
	}
	if f.DurationMinutes == 0 && len(f.Route) > 0 {
		first := f.Route[0]
		last := f.Route[len(f.Route)-1]
		f.DurationMinutes = int(last.Arrival.Sub(first.Departure).Minutes())
	}
	if f.DurationMinutes < 0 {
		f.DurationMinutes = 0
	}
	if f.Pricing.Total == 0 {
		f.Pricing.Total = f.Pricing.Amount + f.Pricing.Taxes + f.Pricing.Fees
	}
}

func (f FlightResult) Direct() bool {
	return len(f.Route) == 1
}

func (f FlightResult) Origin() string {
	if len(f.Route) == 0 {
		return ""
	}
	return f.Route[0].Origin
}

func (f FlightResult) Destination() string {
	if len(f.Route) == 0 {
		return ""
	}
	return f.Route[len(f.Route)-1].Destination
}

func (f FlightResult) DepartureTime() time.Time {
	if len(f.Route) == 0 {
		return time.Time{}
	}
	return f.Route[0].Departure
}

func (f FlightResult) ArrivalTime() time.Time {
	if len(f.Route) == 0 {
		return time.Time{}
	}
	return f.Route[len(f.Route)-1].Arrival
}
