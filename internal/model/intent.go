package model

// Intent is the structured interpretation of a free-text query.
// All fields are optional; extractors fill what they can.
type Intent struct {
	City         string          `json:"city,omitempty"`
	Direction    FlightDirection `json:"type,omitempty"`
	FlightNumber string          `json:"flightNumber,omitempty"`
}

// Empty reports whether no field was extracted
func (i *Intent) Empty() bool {
	return i == nil || (i.City == "" && i.Direction == "" && i.FlightNumber == "")
}

// Merge fills the receiver's unset fields from other. The receiver's
// fields always win; direction asymmetry (defaulting to Departure) is
// applied later, by the caller, only when flight intent is present.
func (i *Intent) Merge(other *Intent) {
	if other == nil {
		return
	}
	if i.City == "" {
		i.City = other.City
	}
	if i.Direction == "" {
		i.Direction = other.Direction
	}
	if i.FlightNumber == "" {
		i.FlightNumber = other.FlightNumber
	}
}
