package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"flightassist/internal/model"
	"flightassist/pkg/logger"
)

const boardUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// StatusBoardSource pulls the live departure/arrival board from the
// airport's form-POST endpoint. One request covers a single
// direction×scope combination, so a full snapshot fans out to four.
type StatusBoardSource struct {
	endpoint    string
	airportCode string
	pageSize    int
	culture     string
	httpClient  *http.Client
	log         logger.Logger
}

// NewStatusBoardSource creates a live board source
func NewStatusBoardSource(endpoint, airportCode string, pageSize int, timeout time.Duration, log logger.Logger) *StatusBoardSource {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &StatusBoardSource{
		endpoint:    endpoint,
		airportCode: airportCode,
		pageSize:    pageSize,
		culture:     "tr",
		httpClient:  &http.Client{Timeout: timeout},
		log:         log,
	}
}

func (s *StatusBoardSource) Name() string { return "statusboard" }

// boardFlight mirrors one row of the upstream board payload
type boardFlight struct {
	FlightNumber      string `json:"flightNumber"`
	AirlineName       string `json:"airlineName"`
	FromCityName      string `json:"fromCityName"`
	ToCityName        string `json:"toCityName"`
	ScheduledDatetime string `json:"scheduledDatetime"`
	EstimatedDatetime string `json:"estimatedDatetime"`
	Remark            string `json:"remark"`
	Gate              string `json:"gate"`
	Carousel          string `json:"carousel"`
}

type boardResponse struct {
	Result struct {
		Data struct {
			Flights []boardFlight `json:"flights"`
		} `json:"data"`
	} `json:"result"`
}

// Fetch retrieves both directions for the requested scope (or all
// scopes) in parallel and de-duplicates the merged board. A single
// failed combination fails the whole fetch; callers treat that as
// this source being down and fall through.
func (s *StatusBoardSource) Fetch(ctx context.Context, scope model.FlightScope) ([]model.Flight, error) {
	directions := []struct {
		nature    string
		direction model.FlightDirection
	}{
		{"1", model.DirectionDeparture},
		{"0", model.DirectionArrival},
	}
	scopes := []string{"0", "1"}
	switch scope {
	case model.ScopeDomestic:
		scopes = []string{"0"}
	case model.ScopeInternational:
		scopes = []string{"1"}
	}

	var mu sync.Mutex
	merged := make([]model.Flight, 0, s.pageSize)

	g, gctx := errgroup.WithContext(ctx)
	for _, d := range directions {
		for _, intl := range scopes {
			d, intl := d, intl
			g.Go(func() error {
				flights, err := s.fetchBoard(gctx, d.nature, intl, d.direction)
				if err != nil {
					return err
				}
				mu.Lock()
				merged = append(merged, flights...)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("provider: status board fetch: %w", err)
	}

	return dedupFlights(merged), nil
}

func (s *StatusBoardSource) fetchBoard(ctx context.Context, nature, isInternational string, direction model.FlightDirection) ([]model.Flight, error) {
	form := url.Values{
		"nature":          {nature},
		"searchTerm":      {""},
		"pageSize":        {strconv.Itoa(s.pageSize)},
		"isInternational": {isInternational},
		"date":            {""},
		"endDate":         {""},
		"culture":         {s.culture},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("User-Agent", boardUserAgent)
	req.Header.Set("Referer", "https://www.istairport.com/")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("board returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed boardResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode board payload: %w", err)
	}

	flights := make([]model.Flight, 0, len(parsed.Result.Data.Flights))
	for _, bf := range parsed.Result.Data.Flights {
		if bf.FlightNumber == "" {
			continue
		}
		flights = append(flights, model.Flight{
			ID:                 bf.FlightNumber + "-" + string(direction),
			AirportCode:        s.airportCode,
			FlightNumber:       bf.FlightNumber,
			Airline:            bf.AirlineName,
			Direction:          direction,
			OriginCity:         bf.FromCityName,
			DestinationCity:    bf.ToCityName,
			ScheduledTimeLocal: bf.ScheduledDatetime,
			EstimatedTimeLocal: bf.EstimatedDatetime,
			Status:             model.ParseStatus(bf.Remark),
			Gate:               bf.Gate,
			Baggage:            bf.Carousel,
		})
	}
	return flights, nil
}

// dedupFlights drops repeated rows; the board occasionally reports
// the same flight under multiple combinations. First occurrence wins.
func dedupFlights(flights []model.Flight) []model.Flight {
	seen := make(map[string]struct{}, len(flights))
	out := flights[:0]
	for _, f := range flights {
		key := f.FlightNumber + "|" + f.ScheduledTimeLocal + "|" + string(f.Direction)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}
