// Package domain defines the persistent record types, session values, and
// persistence contracts shared by the opsdesk core and its infrastructure
// drivers.
package domain

// LeadStatus enumerates the lead pipeline states. The store does not validate
// status values; unknown strings pass through and render as-is.
type LeadStatus string

// Canonical lead statuses offered by the UI.
const (
	LeadStatusNew        LeadStatus = "New"
	LeadStatusContacted  LeadStatus = "Contacted"
	LeadStatusInterested LeadStatus = "Interested"
	LeadStatusClosed     LeadStatus = "Closed"
)

// MeetingStatus enumerates meeting states.
type MeetingStatus string

// Canonical meeting statuses.
const (
	MeetingStatusUpcoming MeetingStatus = "Upcoming"
	MeetingStatusPast     MeetingStatus = "Past"
)

// ProjectStatus enumerates project workflow states.
type ProjectStatus string

// Canonical project statuses.
const (
	ProjectStatusPlanning   ProjectStatus = "Planning"
	ProjectStatusInProgress ProjectStatus = "In Progress"
	ProjectStatusCompleted  ProjectStatus = "Completed"
)

// ActivityType tags a recorded lead interaction.
type ActivityType string

// Recognized activity types. The feed falls back to a generic note icon for
// anything else.
const (
	ActivityCall     ActivityType = "call"
	ActivityEmail    ActivityType = "email"
	ActivityNote     ActivityType = "note"
	ActivityWhatsApp ActivityType = "whatsapp"
)

// Activity is an interaction recorded against a single lead. Its ID is scoped
// to the owning lead's activity list (assigned as list length + 1 at insert
// time) and is not unique across leads.
type Activity struct {
	ID        int64        `json:"id"`
	Type      ActivityType `json:"type"`
	Title     string       `json:"title"`
	Snippet   string       `json:"snippet"`
	Timestamp string       `json:"timestamp"`
}

// Lead is a sales prospect tracked through the pipeline.
type Lead struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Status       LeadStatus `json:"status"`
	LastActivity string     `json:"lastActivity"`
	Notes        string     `json:"notes"`
	Activities   []Activity `json:"activities,omitempty"`
}

// Meeting is a scheduled appointment. LeadName is a denormalized display
// string, not a foreign key.
type Meeting struct {
	ID          int64         `json:"id"`
	LeadName    string        `json:"leadName"`
	Date        string        `json:"date"` // calendar day, YYYY-MM-DD
	Time        string        `json:"time"`
	Type        string        `json:"type"`
	Status      MeetingStatus `json:"status"`
	Description string        `json:"description,omitempty"`
}

// Project is a client engagement grouping tasks.
type Project struct {
	ID     int64         `json:"id"`
	Name   string        `json:"name"`
	Client string        `json:"client"`
	Status ProjectStatus `json:"status"`
}

// Assignee identifies who a task is assigned to, with a short avatar label
// for display.
type Assignee struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Task belongs to a project via ProjectID. Deleting a project does not cascade;
// orphaned tasks remain in the collection and are simply never rendered in
// project-scoped views.
type Task struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	AssignedTo Assignee `json:"assignedTo"`
	DueDate    string   `json:"dueDate"`
	Completed  bool     `json:"completed"`
	ProjectID  int64    `json:"projectId"`
}

// Role identifies a signed-in user's role for navigation gating.
type Role string

// Recognized roles.
const (
	RoleFounder    Role = "Founder"
	RoleTechLead   Role = "Tech Lead"
	RoleTelecaller Role = "Telecaller"
)

// User is the singleton session identity. It is not a stored collection.
type User struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Session is the persisted session record: login flag plus user object.
type Session struct {
	LoggedIn bool `json:"isLoggedIn"`
	User     User `json:"user"`
}

// Snapshot carries a full copy of the four record collections.
type Snapshot struct {
	Leads    []Lead    `json:"leads"`
	Meetings []Meeting `json:"meetings"`
	Projects []Project `json:"projects"`
	Tasks    []Task    `json:"tasks"`
}

// CloneLead returns a deep copy of a lead including its activity list.
func CloneLead(l Lead) Lead {
	cp := l
	if l.Activities != nil {
		cp.Activities = append([]Activity(nil), l.Activities...)
	}
	return cp
}

// CloneLeads deep-copies a lead slice.
func CloneLeads(in []Lead) []Lead {
	out := make([]Lead, 0, len(in))
	for _, l := range in {
		out = append(out, CloneLead(l))
	}
	return out
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Leads:    CloneLeads(s.Leads),
		Meetings: append([]Meeting(nil), s.Meetings...),
		Projects: append([]Project(nil), s.Projects...),
		Tasks:    append([]Task(nil), s.Tasks...),
	}
}
