package provider

import (
	"context"

	"flightassist/internal/model"
)

// FlightStore is the subset of the repository the database source needs
type FlightStore interface {
	GetFlights(ctx context.Context, airportCode string) ([]model.Flight, error)
}

// DatabaseSource serves the most recent snapshot persisted by the
// refresher. It sits between the live board and the static fixtures in
// the fallback chain.
type DatabaseSource struct {
	store       FlightStore
	airportCode string
	domestic    map[string]bool
}

// NewDatabaseSource creates the source; domesticCities drives scope
// filtering since the snapshot does not record scope.
func NewDatabaseSource(store FlightStore, airportCode string, domesticCities []string) *DatabaseSource {
	domestic := make(map[string]bool, len(domesticCities))
	for _, c := range domesticCities {
		domestic[normalizeKey(c)] = true
	}
	return &DatabaseSource{store: store, airportCode: airportCode, domestic: domestic}
}

func (s *DatabaseSource) Name() string { return "db" }

func (s *DatabaseSource) Fetch(ctx context.Context, scope model.FlightScope) ([]model.Flight, error) {
	flights, err := s.store.GetFlights(ctx, s.airportCode)
	if err != nil {
		return nil, err
	}
	if scope == "" {
		return flights, nil
	}

	out := make([]model.Flight, 0, len(flights))
	for _, f := range flights {
		isDomestic := s.domestic[normalizeKey(f.OtherCity())]
		if (scope == model.ScopeDomestic) == isDomestic {
			out = append(out, f)
		}
	}
	return out, nil
}
