package nlu

import (
	"context"
	"fmt"
	"strings"

	"flightassist/internal/llm"
	"flightassist/internal/model"
)

const extractSystemPrompt = `You extract flight-search intent from airport assistant queries in Turkish or English.
Respond with a JSON object only: {"city": string, "type": "Arrival"|"Departure"|"", "flightNumber": string}.
"city" is the non-airport endpoint the user asked about, in English, lowercase. Leave fields empty when not present. Do not guess.`

// ChatExtractor asks an OpenAI-dialect model to extract intent. Groq
// and Gemini instances differ only in client options and name.
type ChatExtractor struct {
	client *llm.Client
	name   string
}

// NewChatExtractor wraps an LLM client as an intent extractor
func NewChatExtractor(client *llm.Client, name string) *ChatExtractor {
	return &ChatExtractor{client: client, name: name}
}

func (e *ChatExtractor) Name() string { return e.name }

// Extract sends the raw query to the model and parses its JSON reply.
// Any provider failure comes back as an error; the racer degrades to
// rules in that case.
func (e *ChatExtractor) Extract(ctx context.Context, q Query) (*model.Intent, error) {
	if !e.client.IsEnabled() {
		return nil, fmt.Errorf("nlu: %s extractor is not configured", e.name)
	}

	var payload struct {
		City         string `json:"city"`
		Type         string `json:"type"`
		FlightNumber string `json:"flightNumber"`
	}
	user := fmt.Sprintf("Language: %s\nQuery: %s", q.Lang, q.Raw)
	if err := e.client.CompleteJSON(ctx, extractSystemPrompt, user, &payload); err != nil {
		return nil, fmt.Errorf("nlu: %s extract: %w", e.name, err)
	}

	intent := &model.Intent{
		City:         strings.ToLower(strings.TrimSpace(payload.City)),
		Direction:    parseDirection(payload.Type),
		FlightNumber: ExtractFlightNumber(payload.FlightNumber),
	}
	return intent, nil
}

// parseDirection tolerates the spelling drift models produce
func parseDirection(s string) model.FlightDirection {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "arrival", "arrivals", "arriving", "varis", "varış", "gelen":
		return model.DirectionArrival
	case "departure", "departures", "departing", "kalkis", "kalkış", "giden":
		return model.DirectionDeparture
	}
	return ""
}
