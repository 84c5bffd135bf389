package model

// AssistantRequest is the inbound query payload
type AssistantRequest struct {
	Query string `json:"query"`
	Lang  string `json:"lang,omitempty"`  // "tr" (default) or "en"
	Scope string `json:"scope,omitempty"` // "domestic" or "international"
	Debug bool   `json:"debug,omitempty"`
}

// Language normalizes the requested language tag
func (r *AssistantRequest) Language() string {
	if r.Lang == "en" {
		return "en"
	}
	return "tr"
}

// ScopeFilter returns the requested scope, or "" when unset/unknown
func (r *AssistantRequest) ScopeFilter() FlightScope {
	switch r.Scope {
	case string(ScopeDomestic):
		return ScopeDomestic
	case string(ScopeInternational):
		return ScopeInternational
	}
	return ""
}

// FAQRef describes which FAQ entry answered a query
type FAQRef struct {
	Score    float64 `json:"score"`
	Question string  `json:"q"`
}

// AssistantResponse is the best-effort answer payload. The endpoint
// always returns one of these with HTTP 200.
type AssistantResponse struct {
	Answer      string   `json:"answer"`
	Matches     []Flight `json:"matches"`
	NLUProvider string   `json:"nluProvider,omitempty"`
	FAQ         *FAQRef  `json:"faq,omitempty"`
}

// STTRequest carries base64-encoded audio for transcription
type STTRequest struct {
	AudioBase64 string `json:"audioBase64" binding:"required"`
	MimeType    string `json:"mimeType,omitempty"`
	Lang        string `json:"lang,omitempty"`
}

// STTResponse carries the transcript
type STTResponse struct {
	Transcript string `json:"transcript"`
}
