package handler

import (
	"net/http"
	"strings"
	"time"

	"flightassist/internal/cache"
	"flightassist/internal/model"
	"flightassist/internal/provider"
	"flightassist/internal/service"

	"github.com/gin-gonic/gin"
)

// FlightsHandler exposes the raw flight board
type FlightsHandler struct {
	source   provider.Source
	norm     *service.Normalizer
	lookback time.Duration
	clock    cache.Clock
}

// NewFlightsHandler creates a new flights handler. lookback bounds how
// far into the past listed flights may be.
func NewFlightsHandler(source provider.Source, norm *service.Normalizer, lookback time.Duration, clock cache.Clock) *FlightsHandler {
	if clock == nil {
		clock = cache.SystemClock{}
	}
	return &FlightsHandler{source: source, norm: norm, lookback: lookback, clock: clock}
}

// List handles GET /api/v1/flights
func (h *FlightsHandler) List(c *gin.Context) {
	scope := parseScope(c.Query("scope"))
	direction, ok := parseDirection(c.Query("direction"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid direction. Must be one of: arrival, departure"})
		return
	}

	flights, err := h.source.Fetch(c.Request.Context(), scope)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch flights: " + err.Error()})
		return
	}

	city := h.norm.Normalize(c.Query("city"), "tr")
	q := strings.TrimSpace(c.Query("q"))
	qNum := strings.ToUpper(strings.ReplaceAll(q, " ", ""))
	qNorm := h.norm.Normalize(q, "tr")
	cutoff := h.clock.Now().Add(-h.lookback)

	out := make([]model.Flight, 0, len(flights))
	for _, f := range flights {
		if direction != "" && f.Direction != direction {
			continue
		}
		if city != "" && !strings.Contains(h.norm.Normalize(f.OtherCity(), "tr"), city) {
			continue
		}
		// q matches either the flight number or the city, free text
		if q != "" {
			num := strings.ToUpper(strings.ReplaceAll(f.FlightNumber, " ", ""))
			if !strings.Contains(num, qNum) &&
				!strings.Contains(h.norm.Normalize(f.OtherCity(), "tr"), qNorm) {
				continue
			}
		}
		if t, ok := f.ScheduledAt(); ok && t.Before(cutoff) {
			continue
		}
		out = append(out, f)
	}

	c.JSON(http.StatusOK, gin.H{"flights": out, "count": len(out)})
}

func parseScope(s string) model.FlightScope {
	switch strings.ToLower(s) {
	case string(model.ScopeDomestic):
		return model.ScopeDomestic
	case string(model.ScopeInternational):
		return model.ScopeInternational
	}
	return ""
}

// parseDirection accepts the common spellings; "" means both
func parseDirection(s string) (model.FlightDirection, bool) {
	switch strings.ToLower(s) {
	case "":
		return "", true
	case "arrival", "arrivals":
		return model.DirectionArrival, true
	case "departure", "departures":
		return model.DirectionDeparture, true
	}
	return "", false
}
