package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"flightassist/internal/model"
	"flightassist/pkg/logger"
)

// AviationStackSource is a commercial REST backup for the live board.
// It keys on the home airport's IATA code and does not segment by
// scope, so the scope argument is accepted and ignored.
type AviationStackSource struct {
	endpoint    string
	accessKey   string
	airportCode string
	httpClient  *http.Client
	log         logger.Logger
}

// NewAviationStackSource creates the source. An empty access key
// yields a source that always errors, which the fallback chain skips.
func NewAviationStackSource(endpoint, accessKey, airportCode string, timeout time.Duration, log logger.Logger) *AviationStackSource {
	return &AviationStackSource{
		endpoint:    endpoint,
		accessKey:   accessKey,
		airportCode: airportCode,
		httpClient:  &http.Client{Timeout: timeout},
		log:         log,
	}
}

func (s *AviationStackSource) Name() string { return "aviationstack" }

type aviationStackResponse struct {
	Data []struct {
		FlightStatus string `json:"flight_status"`
		Flight       struct {
			IATA string `json:"iata"`
		} `json:"flight"`
		Airline struct {
			Name string `json:"name"`
		} `json:"airline"`
		Departure struct {
			Airport   string `json:"airport"`
			IATA      string `json:"iata"`
			Scheduled string `json:"scheduled"`
			Estimated string `json:"estimated"`
			Gate      string `json:"gate"`
		} `json:"departure"`
		Arrival struct {
			Airport   string `json:"airport"`
			IATA      string `json:"iata"`
			Scheduled string `json:"scheduled"`
			Estimated string `json:"estimated"`
			Gate      string `json:"gate"`
			Baggage   string `json:"baggage"`
		} `json:"arrival"`
	} `json:"data"`
}

func (s *AviationStackSource) Fetch(ctx context.Context, _ model.FlightScope) ([]model.Flight, error) {
	if s.accessKey == "" {
		return nil, fmt.Errorf("provider: aviationstack access key not configured")
	}

	var departures, arrivals []model.Flight
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		departures, err = s.fetchDirection(gctx, "dep_iata", model.DirectionDeparture)
		return err
	})
	g.Go(func() error {
		var err error
		arrivals, err = s.fetchDirection(gctx, "arr_iata", model.DirectionArrival)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return dedupFlights(append(departures, arrivals...)), nil
}

func (s *AviationStackSource) fetchDirection(ctx context.Context, airportParam string, direction model.FlightDirection) ([]model.Flight, error) {
	q := url.Values{
		"access_key":  {s.accessKey},
		airportParam:  {s.airportCode},
		"flight_date": {time.Now().Format("2006-01-02")},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider: aviationstack request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider: aviationstack returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed aviationStackResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("provider: decode aviationstack payload: %w", err)
	}

	flights := make([]model.Flight, 0, len(parsed.Data))
	for _, d := range parsed.Data {
		if d.Flight.IATA == "" {
			continue
		}
		f := model.Flight{
			ID:              d.Flight.IATA + "-" + string(direction),
			AirportCode:     s.airportCode,
			FlightNumber:    d.Flight.IATA,
			Airline:         d.Airline.Name,
			Direction:       direction,
			OriginCity:      d.Departure.Airport,
			DestinationCity: d.Arrival.Airport,
			Status:          mapAviationStackStatus(d.FlightStatus),
		}
		if direction == model.DirectionDeparture {
			f.ScheduledTimeLocal = d.Departure.Scheduled
			f.EstimatedTimeLocal = d.Departure.Estimated
			f.Gate = d.Departure.Gate
		} else {
			f.ScheduledTimeLocal = d.Arrival.Scheduled
			f.EstimatedTimeLocal = d.Arrival.Estimated
			f.Gate = d.Arrival.Gate
			f.Baggage = d.Arrival.Baggage
		}
		flights = append(flights, f)
	}
	return flights, nil
}

func mapAviationStackStatus(s string) model.FlightStatus {
	switch s {
	case "active", "scheduled":
		return model.StatusOnTime
	case "delayed", "incident", "diverted":
		return model.StatusDelayed
	case "cancelled":
		return model.StatusCancelled
	case "landed":
		return model.StatusLanded
	}
	return model.StatusOnTime
}
