package faq

import (
	"encoding/csv"
	"io"
	"regexp"
	"strings"

	"flightassist/internal/model"
)

// Header variants accepted for the four columns. Sheets maintained by
// hand drift between Turkish and English headings and between _en
// suffix and en_ prefix conventions.
var (
	headerQ   = regexp.MustCompile(`^(sorular|soru|question|questions)$`)
	headerA   = regexp.MustCompile(`^(cevaplar|cevap|answer|answers)$`)
	headerQEN = regexp.MustCompile(`^(sorular_en|soru_en|question_en|questions_en|en_sorular|en_soru|en_question|en_questions)$`)
	headerAEN = regexp.MustCompile(`^(cevaplar_en|cevap_en|answer_en|answers_en|en_cevaplar|en_cevap|en_answer|en_answers)$`)
)

// ParseCSV reads FAQ rows from r. Quoted fields may contain commas,
// newlines and doubled quotes. When the first row carries recognizable
// headers, columns are mapped by name; otherwise column 0 is the
// question and the remaining columns joined by commas form the answer.
// Rows with an empty question are dropped.
func ParseCSV(r io.Reader) ([]model.FAQItem, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []model.FAQItem{}, nil
	}

	idxQ, idxA, idxQEN, idxAEN := -1, -1, -1, -1
	start := 0
	header := rows[0]
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case headerQ.MatchString(h):
			idxQ = i
		case headerA.MatchString(h):
			idxA = i
		case headerQEN.MatchString(h):
			idxQEN = i
		case headerAEN.MatchString(h):
			idxAEN = i
		}
	}
	if idxQ >= 0 {
		start = 1
	}

	get := func(cols []string, idx int) string {
		if idx < 0 || idx >= len(cols) {
			return ""
		}
		return strings.TrimSpace(cols[idx])
	}

	items := make([]model.FAQItem, 0, len(rows))
	for _, cols := range rows[start:] {
		if len(cols) == 0 {
			continue
		}
		var item model.FAQItem
		if idxQ >= 0 {
			item.Question = get(cols, idxQ)
			item.Answer = get(cols, idxA)
			item.QuestionEN = get(cols, idxQEN)
			item.AnswerEN = get(cols, idxAEN)
		} else {
			item.Question = strings.TrimSpace(cols[0])
			if len(cols) > 1 {
				item.Answer = strings.TrimSpace(strings.Join(cols[1:], ","))
			}
		}
		if item.Question == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
