package views

import (
	"testing"
	"time"

	"opsdesk/pkg/domain"
)

var testNow = time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC) // a Friday

func TestRelativeTime(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  string
	}{
		{"minutes ago", "2026-08-28T11:30:00Z", "just now"},
		{"hours ago", "2026-08-28T07:00:00Z", "5 hours ago"},
		{"yesterday", "2026-08-27T06:00:00Z", "yesterday"},
		{"days ago", "2026-08-24T12:00:00Z", "4 days ago"},
		{"date only", "2026-08-25", "3 days ago"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RelativeTime(tc.value, testNow); got != tc.want {
				t.Fatalf("RelativeTime(%q) = %q, want %q", tc.value, got, tc.want)
			}
		})
	}
}

func TestComputeStatsEmptySnapshot(t *testing.T) {
	s := ComputeStats(domain.Snapshot{}, testNow)
	if s.ConversionRate != 0 {
		t.Fatalf("empty snapshot must have zero conversion rate, got %d", s.ConversionRate)
	}
	if s.TotalLeads != 0 || s.TotalMeetings != 0 || s.TotalProjects != 0 || s.TotalTasks != 0 {
		t.Fatalf("unexpected totals: %+v", s)
	}
}

func TestComputeStatsMeetingsTodayRequiresUpcoming(t *testing.T) {
	snap := domain.Snapshot{Meetings: []domain.Meeting{
		{Date: "2026-08-28", Status: domain.MeetingStatusUpcoming},
		{Date: "2026-08-28", Status: domain.MeetingStatusPast},
		{Date: "2026-08-29", Status: domain.MeetingStatusUpcoming},
	}}
	s := ComputeStats(snap, testNow)
	if s.MeetingsToday != 1 {
		t.Fatalf("expected 1 meeting today, got %d", s.MeetingsToday)
	}
	if s.UpcomingMeetings != 2 || s.PastMeetings != 1 {
		t.Fatalf("unexpected meeting split: %+v", s)
	}
}

func TestComputeStatsConversionRounds(t *testing.T) {
	leads := []domain.Lead{
		{Status: domain.LeadStatusClosed},
		{Status: domain.LeadStatusNew},
		{Status: domain.LeadStatusNew},
	}
	s := ComputeStats(domain.Snapshot{Leads: leads}, testNow)
	if s.ConversionRate != 33 {
		t.Fatalf("expected 33, got %d", s.ConversionRate)
	}
}

func TestStatusDistributionEncounterOrderAndPalette(t *testing.T) {
	leads := []domain.Lead{
		{Status: domain.LeadStatusContacted},
		{Status: domain.LeadStatusNew},
		{Status: domain.LeadStatusContacted},
		{Status: domain.LeadStatusNew},
	}
	slices := StatusDistribution(leads)
	if len(slices) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(slices))
	}
	if slices[0].Name != "Contacted" || slices[1].Name != "New" {
		t.Fatalf("segments must follow encounter order: %+v", slices)
	}
	if slices[0].Color != "#3B82F6" || slices[1].Color != "#10B981" {
		t.Fatalf("unexpected palette assignment: %+v", slices)
	}
	if slices[0].Percentage != 50 || slices[1].Percentage != 50 {
		t.Fatalf("unexpected percentages: %+v", slices)
	}
}

func TestStatusDistributionPaletteWraps(t *testing.T) {
	leads := []domain.Lead{
		{Status: "A"}, {Status: "B"}, {Status: "C"},
		{Status: "D"}, {Status: "E"}, {Status: "F"},
	}
	slices := StatusDistribution(leads)
	if slices[5].Color != slices[0].Color {
		t.Fatalf("sixth segment must reuse first palette color: %+v", slices)
	}
}

func TestDonutArcsPartitionCircle(t *testing.T) {
	slices := []StatusSlice{
		{Name: "New", Percentage: 25},
		{Name: "Contacted", Percentage: 75},
	}
	arcs := DonutArcs(slices)
	if arcs[0].StartAngle != 0 || arcs[0].EndAngle != 90 {
		t.Fatalf("unexpected first arc: %+v", arcs[0])
	}
	if arcs[1].StartAngle != 90 || arcs[1].EndAngle != 360 {
		t.Fatalf("arcs must be contiguous: %+v", arcs[1])
	}
}

func TestMeetingsTrendMondayAnchor(t *testing.T) {
	meetings := []domain.Meeting{
		{Date: "2026-08-24"}, // Monday of testNow's week
		{Date: "2026-08-24"},
		{Date: "2026-08-30"}, // Sunday
		{Date: "2026-09-05"}, // outside the window
	}
	points := MeetingsTrend(meetings, testNow)
	if len(points) != 7 {
		t.Fatalf("expected 7 points, got %d", len(points))
	}
	if points[0].Day != "Mon" || points[0].Value != 2 {
		t.Fatalf("unexpected Monday point: %+v", points[0])
	}
	if points[6].Day != "Sun" || points[6].Value != 1 {
		t.Fatalf("unexpected Sunday point: %+v", points[6])
	}
	var total int
	for _, p := range points {
		total += p.Value
	}
	if total != 3 {
		t.Fatalf("expected 3 meetings inside the window, got %d", total)
	}
}

func TestMeetingsTrendSundayAnchorsToNextMonday(t *testing.T) {
	sunday := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	meetings := []domain.Meeting{{Date: "2026-08-31"}} // Monday after
	points := MeetingsTrend(meetings, sunday)
	if points[0].Value != 1 {
		t.Fatalf("Sunday anchor must point at the following Monday: %+v", points)
	}
}
