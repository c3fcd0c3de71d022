package tags

import (
	"testing"
)

func TestRemoveDiacritics(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Jiří", "Jiri"},
		{"château", "chateau"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := RemoveDiacritics(tt.input); got != tt.want {
			t.Errorf("RemoveDiacritics(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase and trim", "  Beach , Sunset ", "beach, sunset"},
		{"diacritics", "Řím, léto", "rim, leto"},
		{"dedupe", "dog, Dog, DOG", "dog"},
		{"empty segments", "cat,,  ,dog", "cat, dog"},
		{"empty input", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestJoinAllText(t *testing.T) {
	tests := []struct {
		name    string
		tagText string
		ocrText string
		want    string
	}{
		{"both", "beach, sunset", "hotel receipt", "beach, sunset, hotel receipt"},
		{"tags only", "beach", "", "beach"},
		{"ocr only", "", "hotel receipt", "hotel receipt"},
		{"neither", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinAllText(tt.tagText, tt.ocrText); got != tt.want {
				t.Errorf("JoinAllText(%q, %q) = %q, want %q", tt.tagText, tt.ocrText, got, tt.want)
			}
		})
	}
}

func TestJoinAllText_TagsComeFirst(t *testing.T) {
	joined := JoinAllText("vacation", "a very long ocr dump")
	if joined[:8] != "vacation" {
		t.Errorf("expected tag text first, got %q", joined)
	}
}
