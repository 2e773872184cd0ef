package leetcode

import (
	"encoding/json"
	"strings"
	"testing"

	"leetdoist/internal/due"
	"leetdoist/internal/options"
	"leetdoist/internal/problem"
)

var twoSum = problem.Data{Title: "1. Two Sum", URL: "https://leetcode.com/problems/two-sum/"}

func TestTaskContentText(t *testing.T) {
	c := NewTaskContent(twoSum,
		due.Selection{Kind: due.KindDate, Value: "2025-03-01"},
		options.Status{Text: "Task created in Todoist!", Tone: options.ToneSuccess})

	got, err := c.ToText()
	if err != nil {
		t.Fatal(err)
	}
	want := "1. Two Sum\nhttps://leetcode.com/problems/two-sum/\nDue: 2025-03-01\nTask created in Todoist!\n"
	if got != want {
		t.Errorf("ToText() = %q, want %q", got, want)
	}
}

func TestTaskContentJSON(t *testing.T) {
	c := NewTaskContent(twoSum,
		due.Selection{Kind: due.KindRelative, Value: "tomorrow"},
		options.Status{Text: "Todoist API responded with 401: Forbidden", Tone: options.ToneError})

	b, err := c.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		OK  bool `json:"ok"`
		Due struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"due"`
		Message string `json:"message"`
		Tone    string `json:"tone"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("ToJSON() is not valid JSON: %v", err)
	}
	if out.OK || out.Tone != "error" || out.Due.Type != "string" || out.Due.Value != "tomorrow" {
		t.Errorf("ToJSON() = %s", b)
	}
}

func TestTaskContentEscaping(t *testing.T) {
	p := problem.Data{Title: `Sum "A, B" <fast>`, URL: "https://leetcode.com/problems/sum/"}
	c := NewTaskContent(p, due.Selection{}, options.Status{Text: "ok", Tone: options.ToneSuccess})

	html, _ := c.ToHTML()
	if !strings.Contains(html, "&lt;fast&gt;") {
		t.Errorf("ToHTML() did not escape title: %s", html)
	}
	if strings.Contains(html, "Due:") {
		t.Errorf("ToHTML() shows an empty due: %s", html)
	}

	csv, err := c.ToCSV()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(csv, `"Sum ""A, B"" <fast>"`) {
		t.Errorf("ToCSV() did not quote title: %s", csv)
	}
}

func TestTaskContentMarkdown(t *testing.T) {
	c := NewTaskContent(twoSum, due.Selection{Kind: due.KindRelative, Value: "in 3 days"},
		options.Status{Text: "Task created in Todoist!", Tone: options.ToneSuccess})

	md, _ := c.ToMarkdown()
	if !strings.HasPrefix(md, "## [1. Two Sum](https://leetcode.com/problems/two-sum/)") {
		t.Errorf("ToMarkdown() = %q", md)
	}
	if !strings.Contains(md, "- Due: in 3 days") {
		t.Errorf("ToMarkdown() missing due: %q", md)
	}
}
