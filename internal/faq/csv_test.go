package faq

import (
	"strings"
	"testing"
)

func TestParseCSV_TurkishHeaders(t *testing.T) {
	csv := `soru,cevap
"Otopark ücreti ne kadar?","İlk 15 dakika ücretsizdir."
"Wi-Fi var mı?","Evet, ücretsiz Wi-Fi mevcuttur."
`
	items, err := ParseCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Question != "Otopark ücreti ne kadar?" {
		t.Errorf("unexpected question %q", items[0].Question)
	}
	if items[1].Answer != "Evet, ücretsiz Wi-Fi mevcuttur." {
		t.Errorf("unexpected answer %q", items[1].Answer)
	}
}

func TestParseCSV_QuotedFieldsWithCommasAndEscapes(t *testing.T) {
	csv := `sorular,cevaplar
"Kayıp eşya, nereye başvurmalıyım?","""Kayıp Eşya"" ofisi, gelen yolcu katındadır."
`
	items, err := ParseCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Question != "Kayıp eşya, nereye başvurmalıyım?" {
		t.Errorf("comma inside quotes split the field: %q", items[0].Question)
	}
	if items[0].Answer != `"Kayıp Eşya" ofisi, gelen yolcu katındadır.` {
		t.Errorf("escaped quotes mishandled: %q", items[0].Answer)
	}
}

func TestParseCSV_EnglishColumns(t *testing.T) {
	csv := `soru,cevap,soru_en,cevap_en
"Wi-Fi var mı?","Evet.","Is there Wi-Fi?","Yes."
`
	items, err := ParseCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].QuestionEN != "Is there Wi-Fi?" || items[0].AnswerEN != "Yes." {
		t.Errorf("english columns not mapped: %+v", items[0])
	}
}

func TestParseCSV_PrefixEnglishHeaders(t *testing.T) {
	csv := `question,answer,en_question,en_answer
"Soru","Cevap","Question","Answer"
`
	items, err := ParseCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].QuestionEN != "Question" || items[0].AnswerEN != "Answer" {
		t.Errorf("en_ prefixed headers not mapped: %+v", items[0])
	}
}

func TestParseCSV_Headerless(t *testing.T) {
	csv := `Otopark nerede?,Terminal önünde,ek bilgi
`
	items, err := ParseCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Question != "Otopark nerede?" {
		t.Errorf("headerless first column should be the question: %q", items[0].Question)
	}
	if items[0].Answer != "Terminal önünde,ek bilgi" {
		t.Errorf("headerless answer should join remaining columns: %q", items[0].Answer)
	}
}

func TestParseCSV_SkipsEmptyQuestions(t *testing.T) {
	csv := `soru,cevap
"","cevapsız"
"Gerçek soru","Gerçek cevap"
`
	items, err := ParseCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Question != "Gerçek soru" {
		t.Errorf("empty-question rows should be dropped: %+v", items)
	}
}

func TestParseCSV_Empty(t *testing.T) {
	items, err := ParseCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items, got %+v", items)
	}
}

func TestExportURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{
			in:   "https://docs.google.com/spreadsheets/d/abc/edit#gid=0",
			want: "https://docs.google.com/spreadsheets/d/abc/export?format=csv&gid=0",
		},
		{
			in:   "https://docs.google.com/spreadsheets/d/abc/export?format=csv&gid=0",
			want: "https://docs.google.com/spreadsheets/d/abc/export?format=csv&gid=0",
		},
		{
			in:   "https://example.com/faq.csv",
			want: "https://example.com/faq.csv",
		},
	}
	for _, tt := range tests {
		if got := exportURL(tt.in); got != tt.want {
			t.Errorf("exportURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
