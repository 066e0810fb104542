package extract

import (
	"reflect"
	"testing"
)

func TestDigitRuns(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"no digits", "אין כאן מספרים בכלל", nil},
		{"single run", "נ.צ 123456", []string{"123456"}},
		{"maximal runs", "12 345678 בשעה 0630", []string{"12", "345678", "0630"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DigitRuns(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DigitRuns(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestCountRuns(t *testing.T) {
	tests := []struct {
		name string
		text string
		want RunCounts
	}{
		{"empty", "", RunCounts{}},
		{"one six digit run", "נ.צ 123456", RunCounts{Total: 1, SixDigit: 1}},
		{"five digit near miss", "מספר 12345 בלבד", RunCounts{Total: 1, NearMiss: 1}},
		{"seven digit near miss", "מספר 1234567 בלבד", RunCounts{Total: 1, NearMiss: 1}},
		{"mixed runs", "12 345678 90123 בשעה 0630", RunCounts{Total: 4, SixDigit: 1, NearMiss: 1}},
		{"two six digit runs", "נ.צ 111111 או 222222", RunCounts{Total: 2, SixDigit: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountRuns(tt.text); got != tt.want {
				t.Errorf("CountRuns(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}
