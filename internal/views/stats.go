package views

import (
	"math"
	"time"

	"opsdesk/pkg/domain"
)

// Stats is the dashboard's headline counter block.
type Stats struct {
	TotalLeads        int `json:"totalLeads"`
	ActiveLeads       int `json:"activeLeads"`
	ClosedLeads       int `json:"closedLeads"`
	TotalProjects     int `json:"totalProjects"`
	ActiveProjects    int `json:"activeProjects"`
	CompletedProjects int `json:"completedProjects"`
	MeetingsToday     int `json:"meetingsToday"`
	TotalMeetings     int `json:"totalMeetings"`
	UpcomingMeetings  int `json:"upcomingMeetings"`
	PastMeetings      int `json:"pastMeetings"`
	TotalTasks        int `json:"totalTasks"`
	PendingTasks      int `json:"pendingTasks"`
	CompletedTasks    int `json:"completedTasks"`
	ConversionRate    int `json:"conversionRate"`
}

// ComputeStats derives the counter block from a snapshot. MeetingsToday counts
// meetings on now's exact calendar day that are still Upcoming; the conversion
// rate is closed/total rounded to a whole percent, zero when there are no
// leads.
func ComputeStats(snap domain.Snapshot, now time.Time) Stats {
	var s Stats
	s.TotalLeads = len(snap.Leads)
	for _, l := range snap.Leads {
		if l.Status == domain.LeadStatusClosed {
			s.ClosedLeads++
		} else {
			s.ActiveLeads++
		}
	}
	s.TotalProjects = len(snap.Projects)
	for _, p := range snap.Projects {
		if p.Status == domain.ProjectStatusCompleted {
			s.CompletedProjects++
		} else {
			s.ActiveProjects++
		}
	}
	today := DateOf(now)
	s.TotalMeetings = len(snap.Meetings)
	for _, m := range snap.Meetings {
		switch m.Status {
		case domain.MeetingStatusUpcoming:
			s.UpcomingMeetings++
			if m.Date == today {
				s.MeetingsToday++
			}
		case domain.MeetingStatusPast:
			s.PastMeetings++
		}
	}
	s.TotalTasks = len(snap.Tasks)
	for _, t := range snap.Tasks {
		if t.Completed {
			s.CompletedTasks++
		} else {
			s.PendingTasks++
		}
	}
	if s.TotalLeads > 0 {
		s.ConversionRate = int(math.Round(float64(s.ClosedLeads) / float64(s.TotalLeads) * 100))
	}
	return s
}
