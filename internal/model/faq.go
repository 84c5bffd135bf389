package model

// FAQItem is a question/answer pair, optionally bilingual.
// Loaded from a CSV/spreadsheet source, static per refresh cycle.
type FAQItem struct {
	Question   string `json:"q"`
	Answer     string `json:"a"`
	QuestionEN string `json:"q_en,omitempty"`
	AnswerEN   string `json:"a_en,omitempty"`
}

// QuestionFor returns the question text for the given language,
// falling back to Turkish when no English variant exists.
func (f *FAQItem) QuestionFor(lang string) string {
	if lang == "en" && f.QuestionEN != "" {
		return f.QuestionEN
	}
	return f.Question
}

// AnswerFor returns the answer text for the given language, or ""
// when only the other language is available.
func (f *FAQItem) AnswerFor(lang string) string {
	if lang == "en" {
		return f.AnswerEN
	}
	return f.Answer
}
