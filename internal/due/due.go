package due

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Kind discriminates a Selection. The values are the ones carried on the wire.
type Kind string

const (
	KindRelative Kind = "string" // human readable phrase, sent as due_string
	KindDate     Kind = "date"   // YYYY-MM-DD, sent as due_date
)

// CustomToken is the option that takes its value from the custom-date field.
const CustomToken = "custom"

// ErrInvalidSelection is returned when an option cannot be turned into a due directive.
var ErrInvalidSelection = errors.New("invalid due selection")

// Selection is the due directive attached to a task.
type Selection struct {
	Kind  Kind   `json:"type"`
	Value string `json:"value"`
}

// Option is one entry of the due-option selector.
type Option struct {
	Token string
	Label string
}

// Options lists the selector entries in display order. The first one is the default.
var Options = []Option{
	{Token: "tomorrow", Label: "Tomorrow"},
	{Token: "twoDays", Label: "In 2 days"},
	{Token: "threeDays", Label: "In 3 days"},
	{Token: "fourDays", Label: "In 4 days"},
	{Token: "fiveDays", Label: "In 5 days"},
	{Token: "sixDays", Label: "In 6 days"},
	{Token: "oneWeek", Label: "In 1 week"},
	{Token: CustomToken, Label: "Pick a date"},
}

var relativePhrases = map[string]string{
	"tomorrow":  "tomorrow",
	"twoDays":   "in 2 days",
	"threeDays": "in 3 days",
	"fourDays":  "in 4 days",
	"fiveDays":  "in 5 days",
	"sixDays":   "in 6 days",
	"oneWeek":   "in 1 week",
}

// Resolve maps a selector token, plus the custom-date field for "custom",
// to a due Selection.
func Resolve(option, customDate string) (Selection, error) {
	if phrase, ok := relativePhrases[option]; ok {
		return Selection{Kind: KindRelative, Value: phrase}, nil
	}
	if option != CustomToken {
		return Selection{}, fmt.Errorf("%w: unknown option %q", ErrInvalidSelection, option)
	}
	if customDate == "" {
		return Selection{}, fmt.Errorf("%w: custom date is empty", ErrInvalidSelection)
	}
	if _, ok := ParseDate(customDate); !ok {
		return Selection{}, fmt.Errorf("%w: %q is not a valid date", ErrInvalidSelection, customDate)
	}
	return Selection{Kind: KindDate, Value: customDate}, nil
}

// Validate checks a Selection received from another context.
func (s Selection) Validate() error {
	switch s.Kind {
	case KindRelative:
		if s.Value == "" {
			return fmt.Errorf("%w: empty due phrase", ErrInvalidSelection)
		}
	case KindDate:
		if _, ok := ParseDate(s.Value); !ok {
			return fmt.Errorf("%w: %q is not a valid date", ErrInvalidSelection, s.Value)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSelection, s.Kind)
	}
	return nil
}

// IsValidToken reports whether option is one of the selector tokens.
func IsValidToken(option string) bool {
	for _, o := range Options {
		if o.Token == option {
			return true
		}
	}
	return false
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate parses a strict YYYY-MM-DD string into local midnight.
// Dates that do not exist on the calendar (2024-02-30) are rejected.
func ParseDate(s string) (time.Time, bool) {
	if !datePattern.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
