// Package calendar implements the month-grid date picker that backs the
// custom-date field of the popup.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"leetdoist/internal/due"
)

// Cell is one day button of the grid.
type Cell struct {
	Day      int
	Selected bool
}

// Grid is the layout of the displayed month.
// Leading is the number of blank cells before day 1 (0=Sunday).
type Grid struct {
	Leading int
	Days    []Cell
}

// Widget holds the displayed month and whether the picker is open.
// The selected date lives in the custom-date field and is passed in.
type Widget struct {
	now   func() time.Time
	month time.Time
	open  bool
}

// New returns a closed widget displaying the current month.
func New(now func() time.Time) *Widget {
	if now == nil {
		now = time.Now
	}
	return &Widget{now: now, month: startOfMonth(now())}
}

// Open displays the month of fieldValue, or today's month if the value is
// empty or not a valid date.
func (w *Widget) Open(fieldValue string) {
	initial, ok := due.ParseDate(fieldValue)
	if !ok {
		initial = w.now()
	}
	w.month = startOfMonth(initial)
	w.open = true
}

func (w *Widget) Close() {
	w.open = false
}

func (w *Widget) Toggle(fieldValue string) {
	if w.open {
		w.Close()
		return
	}
	w.Open(fieldValue)
}

func (w *Widget) IsOpen() bool {
	return w.open
}

// Reset closes the widget and forgets the displayed month.
func (w *Widget) Reset() {
	w.open = false
	w.month = startOfMonth(w.now())
}

// ClickOutside handles a pointer press while the widget is open.
func (w *Widget) ClickOutside(insideWidget, insideField bool) {
	if !w.open || insideWidget || insideField {
		return
	}
	w.Close()
}

func (w *Widget) Prev() {
	w.month = addMonths(w.month, -1)
}

func (w *Widget) Next() {
	w.month = addMonths(w.month, 1)
}

// Month returns the displayed year and month.
func (w *Widget) Month() (int, time.Month) {
	return w.month.Year(), w.month.Month()
}

// DaysInMonth returns the number of days of the displayed month.
func (w *Widget) DaysInMonth() int {
	return daysInMonth(w.month)
}

// Grid lays out the displayed month, marking the day equal to fieldValue.
func (w *Widget) Grid(fieldValue string) Grid {
	selected, hasSelected := due.ParseDate(fieldValue)
	total := daysInMonth(w.month)

	g := Grid{
		Leading: int(w.month.Weekday()),
		Days:    make([]Cell, 0, total),
	}
	for day := 1; day <= total; day++ {
		g.Days = append(g.Days, Cell{
			Day: day,
			Selected: hasSelected &&
				selected.Year() == w.month.Year() &&
				selected.Month() == w.month.Month() &&
				selected.Day() == day,
		})
	}
	return g
}

// Select returns the YYYY-MM-DD value for day of the displayed month and
// closes the widget.
func (w *Widget) Select(day int) (string, error) {
	if day < 1 || day > daysInMonth(w.month) {
		return "", fmt.Errorf("day %d out of range for %s", day, w.Label())
	}
	value := due.FormatDate(time.Date(w.month.Year(), w.month.Month(), day, 0, 0, 0, 0, w.month.Location()))
	w.Close()
	return value, nil
}

// Label is the month heading, e.g. "February 2024".
func (w *Widget) Label() string {
	return w.month.Format("January 2006")
}

// Render draws the month as text. The selected day is bracketed and the
// cursor day, if any, is marked with angle brackets.
func (w *Widget) Render(fieldValue string, cursor int) string {
	g := w.Grid(fieldValue)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  <  %-20s  >\n", w.Label()))
	sb.WriteString(" Su  Mo  Tu  We  Th  Fr  Sa\n")

	col := 0
	for i := 0; i < g.Leading; i++ {
		sb.WriteString("    ")
		col++
	}
	for _, c := range g.Days {
		switch {
		case c.Day == cursor:
			sb.WriteString(fmt.Sprintf(">%2d<", c.Day))
		case c.Selected:
			sb.WriteString(fmt.Sprintf("[%2d]", c.Day))
		default:
			sb.WriteString(fmt.Sprintf(" %2d ", c.Day))
		}
		col++
		if col == 7 {
			sb.WriteString("\n")
			col = 0
		}
	}
	if col != 0 {
		sb.WriteString("\n")
	}
	return sb.String()
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func addMonths(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
