package views

import (
	"time"

	"opsdesk/pkg/domain"
)

var trendLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// TrendPoint is one day of the weekly meetings trend.
type TrendPoint struct {
	Day   string `json:"day"`
	Value int    `json:"value"`
}

// MeetingsTrend counts meetings per day for the Monday-anchored week
// containing now. The anchor is now minus its weekday number plus one day,
// with Sunday counted as zero, so on a Sunday the window covers the following
// Monday through Sunday. Counting matches on exact date strings regardless of
// meeting status.
func MeetingsTrend(meetings []domain.Meeting, now time.Time) []TrendPoint {
	byDate := map[string]int{}
	for _, m := range meetings {
		byDate[m.Date]++
	}
	points := make([]TrendPoint, 0, 7)
	for i := 0; i < 7; i++ {
		day := now.AddDate(0, 0, -int(now.Weekday())+1+i)
		points = append(points, TrendPoint{Day: trendLabels[i], Value: byDate[DateOf(day)]})
	}
	return points
}
