package main

import (
	"testing"

	"leetdoist/internal/due"
)

func setAddFlags(t *testing.T, format, option, date string) {
	t.Helper()
	oldFormat, oldOption, oldDate := outputFormat, dueOption, dueDate
	t.Cleanup(func() {
		outputFormat, dueOption, dueDate = oldFormat, oldOption, oldDate
	})
	outputFormat, dueOption, dueDate = format, option, date
}

func TestValidateFlags(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		option  string
		date    string
		want    due.Selection
		wantErr bool
	}{
		{"relative", "text", "tomorrow", "", due.Selection{Kind: due.KindRelative, Value: "tomorrow"}, false},
		{"custom date", "json", "custom", "2025-03-01", due.Selection{Kind: due.KindDate, Value: "2025-03-01"}, false},
		{"custom without date", "text", "custom", "", due.Selection{}, true},
		{"custom with impossible date", "text", "custom", "2025-02-30", due.Selection{}, true},
		{"date without custom", "text", "tomorrow", "2025-03-01", due.Selection{}, true},
		{"unknown option", "text", "someday", "", due.Selection{}, true},
		{"unknown format", "yaml", "tomorrow", "", due.Selection{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setAddFlags(t, tt.format, tt.option, tt.date)
			got, err := validateFlags()
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("validateFlags() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"leetcode.com/problems/two-sum/":          "https://leetcode.com/problems/two-sum/",
		" https://leetcode.com/problems/two-sum/": "https://leetcode.com/problems/two-sum/",
		"HTTP://leetcode.com/problems/two-sum/":   "HTTP://leetcode.com/problems/two-sum/",
		"":                                        "",
	}
	for in, want := range tests {
		if got := normalizeURL(in); got != want {
			t.Errorf("normalizeURL(%q) = %q, want %q", in, got, want)
		}
	}
}
