package views

import (
	"time"

	"opsdesk/pkg/domain"
)

// CalendarDay is one cell of a month grid. Blank cells (the padding before the
// first of the month) have a zero Day.
type CalendarDay struct {
	Day          int    `json:"day"`
	Date         string `json:"date,omitempty"`
	Today        bool   `json:"today,omitempty"`
	Selected     bool   `json:"selected,omitempty"`
	MeetingCount int    `json:"meetingCount,omitempty"`
}

// MonthGrid lays out the month containing selected as a Sunday-first grid:
// leading blank cells equal to the weekday of the 1st, then one cell per day
// with its meeting count and today/selected markers.
func MonthGrid(meetings []domain.Meeting, selected, now time.Time) []CalendarDay {
	byDate := map[string]int{}
	for _, m := range meetings {
		byDate[m.Date]++
	}

	first := time.Date(selected.Year(), selected.Month(), 1, 0, 0, 0, 0, selected.Location())
	daysInMonth := first.AddDate(0, 1, -1).Day()
	today := DateOf(now)
	selectedDay := DateOf(selected)

	grid := make([]CalendarDay, 0, int(first.Weekday())+daysInMonth)
	for i := 0; i < int(first.Weekday()); i++ {
		grid = append(grid, CalendarDay{})
	}
	for day := 1; day <= daysInMonth; day++ {
		date := DateOf(first.AddDate(0, 0, day-1))
		grid = append(grid, CalendarDay{
			Day:          day,
			Date:         date,
			Today:        date == today,
			Selected:     date == selectedDay,
			MeetingCount: byDate[date],
		})
	}
	return grid
}
