package views

import (
	"sort"
	"strings"
	"time"

	"opsdesk/pkg/domain"
)

const summaryLimit = 5

// Lead sort keys accepted by LeadQuery.
const (
	SortByName         = "name"
	SortByEmail        = "email"
	SortByStatus       = "status"
	SortByLastActivity = "lastActivity"
)

// Meeting list tabs.
const (
	TabToday    = "Today"
	TabUpcoming = "Upcoming"
	TabPast     = "Past"
)

// LeadQuery selects and orders the leads table.
type LeadQuery struct {
	Search string // case-insensitive substring over name, email, phone
	Status string // exact status, or "All"/"" for no filter
	SortBy string // one of the SortBy keys; defaults to lastActivity
	Desc   bool
}

// FilterLeads applies a query to the lead collection. Records whose sort key
// is empty order after all others regardless of direction; otherwise ties keep
// collection order.
func FilterLeads(leads []domain.Lead, q LeadQuery) []domain.Lead {
	result := make([]domain.Lead, 0, len(leads))
	term := strings.ToLower(q.Search)
	for _, l := range leads {
		if term != "" &&
			!strings.Contains(strings.ToLower(l.Name), term) &&
			!strings.Contains(strings.ToLower(l.Email), term) &&
			!strings.Contains(strings.ToLower(l.Phone), term) {
			continue
		}
		if q.Status != "" && q.Status != "All" && string(l.Status) != q.Status {
			continue
		}
		result = append(result, l)
	}

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = SortByLastActivity
	}
	sort.SliceStable(result, func(i, j int) bool {
		return compareLeads(result[i], result[j], sortBy, q.Desc) < 0
	})
	return result
}

func compareLeads(a, b domain.Lead, sortBy string, desc bool) int {
	av, bv := leadSortKey(a, sortBy), leadSortKey(b, sortBy)
	// Empty keys sink to the bottom in both directions.
	if av == "" && bv == "" {
		return 0
	}
	if av == "" {
		return 1
	}
	if bv == "" {
		return -1
	}
	var cmp int
	if sortBy == SortByLastActivity {
		at, bt := parseWhen(av), parseWhen(bv)
		switch {
		case at.Before(bt):
			cmp = -1
		case at.After(bt):
			cmp = 1
		}
	} else {
		cmp = strings.Compare(av, bv)
	}
	if desc {
		cmp = -cmp
	}
	return cmp
}

func leadSortKey(l domain.Lead, sortBy string) string {
	switch sortBy {
	case SortByName:
		return l.Name
	case SortByEmail:
		return l.Email
	case SortByStatus:
		return string(l.Status)
	default:
		return l.LastActivity
	}
}

// StatusTab is a filter pill with its record count.
type StatusTab struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// LeadStatusTabs builds the status filter pills: "All" with the full count
// first, then each status present in the collection in encounter order.
func LeadStatusTabs(leads []domain.Lead) []StatusTab {
	tabs := []StatusTab{{Name: "All", Count: len(leads)}}
	index := map[domain.LeadStatus]int{}
	for _, l := range leads {
		if i, seen := index[l.Status]; seen {
			tabs[i].Count++
			continue
		}
		index[l.Status] = len(tabs)
		tabs = append(tabs, StatusTab{Name: string(l.Status), Count: 1})
	}
	return tabs
}

// RecentLeads returns the five most recently active leads, newest first.
func RecentLeads(leads []domain.Lead) []domain.Lead {
	result := append([]domain.Lead(nil), leads...)
	sort.SliceStable(result, func(i, j int) bool {
		return parseWhen(result[i].LastActivity).After(parseWhen(result[j].LastActivity))
	})
	return truncateLeads(result)
}

// UpcomingMeetings returns up to five upcoming meetings on days after today,
// soonest first.
func UpcomingMeetings(meetings []domain.Meeting, now time.Time) []domain.Meeting {
	today := DateOf(now)
	var result []domain.Meeting
	for _, m := range meetings {
		if m.Status == domain.MeetingStatusUpcoming && m.Date != today {
			result = append(result, m)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return parseWhen(result[i].Date).Before(parseWhen(result[j].Date))
	})
	if len(result) > summaryLimit {
		result = result[:summaryLimit]
	}
	return result
}

// TodaysMeetings returns meetings on now's calendar day that are still
// upcoming, in collection order.
func TodaysMeetings(meetings []domain.Meeting, now time.Time) []domain.Meeting {
	today := DateOf(now)
	var result []domain.Meeting
	for _, m := range meetings {
		if m.Date == today && m.Status == domain.MeetingStatusUpcoming {
			result = append(result, m)
		}
	}
	return result
}

// MeetingsForTab selects and orders meetings for the scheduling page tabs.
// Today shows upcoming meetings on the selected day ordered by time; Upcoming
// shows upcoming meetings on any day other than today's actual date, ordered
// by date then time; any other tab matches status verbatim with the same
// ordering.
func MeetingsForTab(meetings []domain.Meeting, tab string, selected, now time.Time) []domain.Meeting {
	selectedDay := DateOf(selected)
	today := DateOf(now)
	var result []domain.Meeting
	for _, m := range meetings {
		switch tab {
		case TabToday:
			if m.Date == selectedDay && m.Status == domain.MeetingStatusUpcoming {
				result = append(result, m)
			}
		case TabUpcoming:
			if m.Status == domain.MeetingStatusUpcoming && m.Date != today {
				result = append(result, m)
			}
		default:
			if string(m.Status) == tab {
				result = append(result, m)
			}
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if tab != TabToday && a.Date != b.Date {
			return parseWhen(a.Date).Before(parseWhen(b.Date))
		}
		return a.Time < b.Time
	})
	return result
}

// LeadNameOptions returns distinct lead names in encounter order, for the
// meeting scheduling form.
func LeadNameOptions(leads []domain.Lead) []string {
	seen := map[string]bool{}
	var names []string
	for _, l := range leads {
		if !seen[l.Name] {
			seen[l.Name] = true
			names = append(names, l.Name)
		}
	}
	return names
}

// MeetingTypeOptions returns distinct meeting types in encounter order.
func MeetingTypeOptions(meetings []domain.Meeting) []string {
	seen := map[string]bool{}
	var types []string
	for _, m := range meetings {
		if !seen[m.Type] {
			seen[m.Type] = true
			types = append(types, m.Type)
		}
	}
	return types
}

// FilterProjects matches a case-insensitive substring against project name or
// client. An empty term returns the collection unfiltered.
func FilterProjects(projects []domain.Project, search string) []domain.Project {
	if search == "" {
		return append([]domain.Project(nil), projects...)
	}
	term := strings.ToLower(search)
	var result []domain.Project
	for _, p := range projects {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Client), term) {
			result = append(result, p)
		}
	}
	return result
}

// RecentProjects returns the first five projects in collection order.
func RecentProjects(projects []domain.Project) []domain.Project {
	result := append([]domain.Project(nil), projects...)
	if len(result) > summaryLimit {
		result = result[:summaryLimit]
	}
	return result
}

// ProjectTasks returns a project's tasks with incomplete tasks first, each
// group ordered by due date ascending.
func ProjectTasks(tasks []domain.Task, projectID int64) []domain.Task {
	var result []domain.Task
	for _, t := range tasks {
		if t.ProjectID == projectID {
			result = append(result, t)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		return parseWhen(a.DueDate).Before(parseWhen(b.DueDate))
	})
	return result
}

// PendingTasks returns up to five incomplete tasks in collection order.
func PendingTasks(tasks []domain.Task) []domain.Task {
	var result []domain.Task
	for _, t := range tasks {
		if !t.Completed {
			result = append(result, t)
			if len(result) == summaryLimit {
				break
			}
		}
	}
	return result
}

// TaskOverdue reports whether an incomplete task's due date has passed.
func TaskOverdue(t domain.Task, now time.Time) bool {
	return !t.Completed && t.DueDate != "" && t.DueDate < DateOf(now)
}

// AvailableLeads returns leads eligible for outreach: everything not Closed.
func AvailableLeads(leads []domain.Lead) []domain.Lead {
	var result []domain.Lead
	for _, l := range leads {
		if l.Status != domain.LeadStatusClosed {
			result = append(result, l)
		}
	}
	return result
}

func truncateLeads(leads []domain.Lead) []domain.Lead {
	if len(leads) > summaryLimit {
		return leads[:summaryLimit]
	}
	return leads
}
