package views

import (
	"fmt"
	"sort"
	"time"

	"opsdesk/pkg/domain"
)

const feedLimit = 15

// Icon tags rendered by the feed. The client maps these to glyphs.
const (
	IconUser     = "user"
	IconPhone    = "phone"
	IconMail     = "mail"
	IconNote     = "note"
	IconCalendar = "calendar"
	IconChart    = "chart"
	IconCheck    = "check"
	IconPin      = "pin"
)

// FeedEntry is one row of the recent-activity feed. IDs are synthetic,
// derived from the source record's identity per source kind; they are display
// keys, not stable identifiers.
type FeedEntry struct {
	ID    int64     `json:"id"`
	Type  string    `json:"type"`
	Title string    `json:"title"`
	Meta  string    `json:"meta"`
	Time  time.Time `json:"time"`
	Icon  string    `json:"icon"`
}

// ActivityFeed synthesizes feed rows from all four collections: one per lead
// creation, one per recorded lead activity, one per meeting, one per project,
// and one per task. Project and task rows are timestamped now, so they always
// float to the top. Rows are sorted newest first and truncated to the 15 most
// recent.
func ActivityFeed(snap domain.Snapshot, now time.Time) []FeedEntry {
	var entries []FeedEntry

	for _, lead := range snap.Leads {
		entries = append(entries, FeedEntry{
			ID:    1000 + lead.ID,
			Type:  "lead",
			Title: fmt.Sprintf("Lead '%s' Added", lead.Name),
			Meta:  feedMeta(lead.LastActivity, now),
			Time:  parseWhen(lead.LastActivity),
			Icon:  IconUser,
		})
		for i, act := range lead.Activities {
			entries = append(entries, FeedEntry{
				ID:    2000 + lead.ID*100 + int64(i),
				Type:  string(act.Type),
				Title: act.Title,
				Meta:  feedMeta(act.Timestamp, now),
				Time:  parseWhen(act.Timestamp),
				Icon:  activityIcon(act.Type),
			})
		}
	}

	for i, m := range snap.Meetings {
		entries = append(entries, FeedEntry{
			ID:    3000 + int64(i),
			Type:  "calendar",
			Title: fmt.Sprintf("Meeting scheduled with '%s'", m.LeadName),
			Meta:  feedMeta(m.Date, now),
			Time:  parseWhen(m.Date),
			Icon:  IconCalendar,
		})
	}

	today := DateOf(now)
	for i, p := range snap.Projects {
		entries = append(entries, FeedEntry{
			ID:    4000 + int64(i),
			Type:  "task",
			Title: fmt.Sprintf("Project '%s' status changed to %s", p.Name, p.Status),
			Meta:  feedMeta(today, now),
			Time:  now,
			Icon:  IconChart,
		})
	}

	for i, t := range snap.Tasks {
		entry := FeedEntry{
			ID:    6000 + int64(i),
			Type:  "task",
			Title: fmt.Sprintf("Task created: '%s'", t.Name),
			Meta:  feedMeta(today, now),
			Time:  now,
			Icon:  IconPin,
		}
		if t.Completed {
			entry.ID = 5000 + int64(i)
			entry.Title = fmt.Sprintf("Task completed: '%s'", t.Name)
			entry.Icon = IconCheck
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.After(entries[j].Time)
	})
	if len(entries) > feedLimit {
		entries = entries[:feedLimit]
	}
	return entries
}

func feedMeta(timestamp string, now time.Time) string {
	return "by System — " + RelativeTime(timestamp, now)
}

func activityIcon(t domain.ActivityType) string {
	switch t {
	case domain.ActivityCall:
		return IconPhone
	case domain.ActivityEmail:
		return IconMail
	default:
		return IconNote
	}
}
