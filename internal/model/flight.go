package model

import "time"

// FlightDirection is whether a flight lands at or leaves the home airport
type FlightDirection string

const (
	DirectionArrival   FlightDirection = "Arrival"
	DirectionDeparture FlightDirection = "Departure"
)

// FlightScope segments domestic vs international traffic
type FlightScope string

const (
	ScopeDomestic      FlightScope = "domestic"
	ScopeInternational FlightScope = "international"
)

// FlightStatus is the closed set of board statuses
type FlightStatus string

const (
	StatusOnTime    FlightStatus = "On Time"
	StatusDelayed   FlightStatus = "Delayed"
	StatusCancelled FlightStatus = "Cancelled"
	StatusBoarding  FlightStatus = "Boarding"
	StatusLanded    FlightStatus = "Landed"
)

// Flight represents one scheduled flight event at the home airport.
// Each fetch produces a fresh snapshot; records are never mutated in place.
type Flight struct {
	ID                 string          `json:"id" db:"id"`
	AirportCode        string          `json:"airportCode" db:"airport_code"`
	FlightNumber       string          `json:"flightNumber" db:"flight_number"`
	Airline            string          `json:"airline" db:"airline"`
	Direction          FlightDirection `json:"direction" db:"direction"`
	OriginCity         string          `json:"originCity" db:"origin_city"`
	DestinationCity    string          `json:"destinationCity" db:"destination_city"`
	ScheduledTimeLocal string          `json:"scheduledTimeLocal" db:"scheduled_time_local"`
	EstimatedTimeLocal string          `json:"estimatedTimeLocal,omitempty" db:"estimated_time_local"`
	Status             FlightStatus    `json:"status" db:"status"`
	Gate               string          `json:"gate,omitempty" db:"gate"`
	Baggage            string          `json:"baggage,omitempty" db:"baggage"`
}

// OtherCity returns the non-home endpoint: origin for arrivals,
// destination for departures.
func (f *Flight) OtherCity() string {
	if f.Direction == DirectionArrival {
		return f.OriginCity
	}
	return f.DestinationCity
}

// ScheduledAt parses the local schedule timestamp. The zero time and
// false are returned when the record carries an unparseable value.
func (f *Flight) ScheduledAt() (time.Time, bool) {
	return parseLocalTime(f.ScheduledTimeLocal)
}

// EstimatedAt parses the estimated timestamp when present.
func (f *Flight) EstimatedAt() (time.Time, bool) {
	if f.EstimatedTimeLocal == "" {
		return time.Time{}, false
	}
	return parseLocalTime(f.EstimatedTimeLocal)
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

func parseLocalTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseStatus maps provider remark strings onto the closed status set
func ParseStatus(s string) FlightStatus {
	switch s {
	case "On Time", "On_Time", "Scheduled", "Zamanında":
		return StatusOnTime
	case "Delayed", "Gecikmeli":
		return StatusDelayed
	case "Cancelled", "Canceled", "İptal":
		return StatusCancelled
	case "Boarding", "Biniş", "Gate Closed", "Final Call", "Last Call":
		return StatusBoarding
	case "Landed", "İndi":
		return StatusLanded
	}
	return StatusOnTime
}
