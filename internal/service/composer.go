package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"flightassist/internal/model"
	"flightassist/pkg/logger"
)

// Synthesizer is the LLM surface the composer uses for final phrasing.
// *llm.Client satisfies it; a disabled client degrades every call to
// the deterministic template.
type Synthesizer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	IsEnabled() bool
}

// statusLabels maps the closed status set to display text per language
var statusLabels = map[string]map[model.FlightStatus]string{
	"tr": {
		model.StatusOnTime:    "Zamanında",
		model.StatusDelayed:   "Gecikmeli",
		model.StatusCancelled: "İptal",
		model.StatusBoarding:  "Biniş",
		model.StatusLanded:    "İndi",
	},
	"en": {
		model.StatusOnTime:    "On Time",
		model.StatusDelayed:   "Delayed",
		model.StatusCancelled: "Cancelled",
		model.StatusBoarding:  "Boarding",
		model.StatusLanded:    "Landed",
	},
}

var listRequest = regexp.MustCompile(`(?i)listele|list`)

const (
	phrasePromptTR = "İstanbul Havalimanı uçuş asistanısın. Kullanıcının sorusunu ve UÇUŞ BİLGİLERİ listesini kullanarak tek cümlede net bir yanıt ver. Zamanı HH:MM biçiminde yaz; kapı veya bagaj bilgisini ekle. Uydurma bilgi verme."
	phrasePromptEN = "You are an assistant for Istanbul Airport. Using the user's question and the FLIGHT FACTS, produce one concise sentence with the key time/gate/baggage. Do not fabricate."

	noMatchPromptTR = "İstanbul Havalimanı uçuş asistanısın. Kullanıcının sorusunu kibarca yanıtla. Eşleşen sonuç yoksa olası nedenleri (yazım, yön/terminal, tarih) kısa belirt; mümkünse en yakın ilgili uçuşları öner. Uydurma bilgi verme."
	noMatchPromptEN = "You are an assistant for Istanbul Airport. Politely answer. If no exact match, briefly mention possible reasons (spelling, direction/terminal, date) and suggest the closest relevant flights if available. Do not fabricate."
)

// Composer renders matched flights into the final answer text. The
// deterministic template is always produced first; the LLM only
// rephrases it and any failure leaves the template untouched.
type Composer struct {
	synth Synthesizer
	log   logger.Logger
}

// NewComposer creates a composer; synth may be a disabled client
func NewComposer(synth Synthesizer, log logger.Logger) *Composer {
	return &Composer{synth: synth, log: log}
}

// StatusLabel localizes a flight status
func StatusLabel(status model.FlightStatus, lang string) string {
	labels, ok := statusLabels[lang]
	if !ok {
		labels = statusLabels["tr"]
	}
	if label, ok := labels[status]; ok {
		return label
	}
	return string(status)
}

// FormatLine renders one flight as a board line:
// "TK2695 Paris 14:30 / 14:45, Kapı A7 — Zamanında"
func FormatLine(f model.Flight, lang string) string {
	var b strings.Builder
	b.WriteString(f.FlightNumber)
	b.WriteString(" ")
	b.WriteString(f.OtherCity())
	b.WriteString(" ")
	b.WriteString(formatClock(f.ScheduledTimeLocal))
	if f.EstimatedTimeLocal != "" {
		b.WriteString(" / ")
		b.WriteString(formatClock(f.EstimatedTimeLocal))
	}

	if f.Direction == model.DirectionDeparture && f.Gate != "" {
		if lang == "en" {
			b.WriteString(", Gate " + f.Gate)
		} else {
			b.WriteString(", Kapı " + f.Gate)
		}
	} else if f.Direction == model.DirectionArrival && f.Baggage != "" {
		if lang == "en" {
			b.WriteString(", Baggage " + f.Baggage)
		} else {
			b.WriteString(", Bagaj " + f.Baggage)
		}
	}

	b.WriteString(" — ")
	b.WriteString(StatusLabel(f.Status, lang))
	return b.String()
}

// Compose renders the answer for a non-empty match set. hadNumber
// marks that the user asked for a specific flight, which suppresses
// the list form for multi-row results.
func (c *Composer) Compose(ctx context.Context, rawQuery, lang string, matches []model.Flight, hadNumber bool) string {
	lines := make([]string, len(matches))
	for i, f := range matches {
		lines[i] = FormatLine(f, lang)
	}

	wantsList := listRequest.MatchString(rawQuery) || (!hadNumber && len(matches) > 1)
	if wantsList {
		if lang == "en" {
			return fmt.Sprintf("Matching flights:\n%s\nYou can ask by flight number for a specific one.", strings.Join(lines, "\n"))
		}
		return fmt.Sprintf("Eşleşen uçuşlar:\n%s\nİsterseniz uçuş numarasıyla sorabilirsiniz.", strings.Join(lines, "\n"))
	}

	answer := "Uçuş: " + lines[0]
	if lang == "en" {
		answer = "Flight: " + lines[0]
	}

	if c.synth.IsEnabled() {
		system := phrasePromptTR
		if lang == "en" {
			system = phrasePromptEN
		}
		facts := lines
		if len(facts) > 5 {
			facts = facts[:5]
		}
		user := fmt.Sprintf("%s\n\nFLIGHT FACTS:\n%s", rawQuery, strings.Join(facts, "\n"))
		if phrased, err := c.synth.Complete(ctx, system, user); err == nil && phrased != "" {
			return phrased
		} else if err != nil {
			c.log.Debug("answer rephrasing failed", "error", err)
		}
	}
	return answer
}

// ComposeNoMatch produces the answer when the matcher found nothing:
// an LLM reply grounded on the closest token-related flights when
// available, otherwise the canned not-found message.
func (c *Composer) ComposeNoMatch(ctx context.Context, rawQuery, lang string, nearest []model.Flight) (string, []model.Flight) {
	if c.synth.IsEnabled() {
		system := noMatchPromptTR
		if lang == "en" {
			system = noMatchPromptEN
		}
		user := rawQuery
		if len(nearest) > 0 {
			lines := make([]string, 0, 5)
			for i, f := range nearest {
				if i == 5 {
					break
				}
				lines = append(lines, fmt.Sprintf("[%d] %s", i+1, FormatLine(f, lang)))
			}
			user = fmt.Sprintf("%s\n\nPOSSIBLE FLIGHTS:\n%s", rawQuery, strings.Join(lines, "\n"))
		}
		if answer, err := c.synth.Complete(ctx, system, user); err == nil && answer != "" {
			return answer, nearest
		} else if err != nil {
			c.log.Debug("no-match answer synthesis failed", "error", err)
		}
	}
	return c.NotFound(lang), []model.Flight{}
}

// NotFound is the canned no-result message
func (c *Composer) NotFound(lang string) string {
	if lang == "en" {
		return "No matching flights found. Please try again with a flight number or clearer city name."
	}
	return "Uçuş bulunamadı. Lütfen uçuş numarası veya şehir adını netleştirerek tekrar dener misiniz?"
}

// formatClock shortens a parseable timestamp to HH:MM, leaving
// unparseable values as they came
func formatClock(s string) string {
	if s == "" {
		return ""
	}
	f := model.Flight{ScheduledTimeLocal: s}
	if t, ok := f.ScheduledAt(); ok {
		return t.Format("15:04")
	}
	return s
}
