package leetcode

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"leetdoist/internal/due"
	"leetdoist/internal/options"
	"leetdoist/internal/problem"
)

// TaskContent is the result of one add run and implements scraper.Content.
type TaskContent struct {
	problem problem.Data
	due     due.Selection
	status  options.Status
}

// NewTaskContent creates a new TaskContent instance.
func NewTaskContent(p problem.Data, sel due.Selection, status options.Status) *TaskContent {
	return &TaskContent{problem: p, due: sel, status: status}
}

func (c *TaskContent) ok() bool {
	return c.status.Tone == options.ToneSuccess
}

func (c *TaskContent) ToText() (string, error) {
	var sb strings.Builder
	sb.WriteString(c.problem.Title + "\n")
	sb.WriteString(c.problem.URL + "\n")
	if c.due.Value != "" {
		sb.WriteString("Due: " + c.due.Value + "\n")
	}
	sb.WriteString(c.status.Text + "\n")
	return sb.String(), nil
}

func (c *TaskContent) ToMarkdown() (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## [%s](%s)\n\n", c.problem.Title, c.problem.URL))
	if c.due.Value != "" {
		sb.WriteString(fmt.Sprintf("- Due: %s\n", c.due.Value))
	}
	sb.WriteString(fmt.Sprintf("- Status: %s\n", c.status.Text))
	return sb.String(), nil
}

func (c *TaskContent) ToHTML() (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<h2><a href=%q>%s</a></h2>\n", c.problem.URL, html.EscapeString(c.problem.Title)))
	if c.due.Value != "" {
		sb.WriteString(fmt.Sprintf("<p>Due: %s</p>\n", html.EscapeString(c.due.Value)))
	}
	sb.WriteString(fmt.Sprintf("<p data-tone=%q>%s</p>\n", c.status.Tone, html.EscapeString(c.status.Text)))
	return sb.String(), nil
}

func (c *TaskContent) ToJSON() ([]byte, error) {
	type jsonOutput struct {
		OK      bool          `json:"ok"`
		Title   string        `json:"title"`
		URL     string        `json:"url"`
		Due     due.Selection `json:"due"`
		Message string        `json:"message"`
		Tone    string        `json:"tone"`
	}
	return json.MarshalIndent(jsonOutput{
		OK:      c.ok(),
		Title:   c.problem.Title,
		URL:     c.problem.URL,
		Due:     c.due,
		Message: c.status.Text,
		Tone:    string(c.status.Tone),
	}, "", "  ")
}

func (c *TaskContent) ToCSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Title", "URL", "Due", "Status"})
	_ = w.Write([]string{c.problem.Title, c.problem.URL, c.due.Value, c.status.Text})
	w.Flush()
	return buf.String(), w.Error()
}
