package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"opsdesk/internal/infra/archive"
	"opsdesk/internal/outreach"
	"opsdesk/internal/views"
	"opsdesk/pkg/domain"
)

// Validation failures surfaced to the transport layer.
var (
	ErrEmptyTemplate   = errors.New("message template is empty")
	ErrNoLeadsSelected = errors.New("no leads selected")
)

// Service composes the record store, the derived-view engine, outreach
// preparation, and snapshot archiving behind one API for the transport layer.
type Service struct {
	store   *Store
	archive archive.Store
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a service over an opened store. The archive may be nil;
// export operations then fail with an explicit error.
func NewService(store *Store, arch archive.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, archive: arch, logger: logger, now: time.Now}
}

// SetClock overrides the service clock. Test hook.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Store exposes the underlying record store.
func (s *Service) Store() *Store { return s.store }

// Dashboard aggregates every derived view the dashboard renders. It is
// computed fresh from the current snapshot on each call.
type Dashboard struct {
	Stats            views.Stats         `json:"stats"`
	Distribution     []views.StatusSlice `json:"distribution"`
	Arcs             []views.DonutArc    `json:"arcs"`
	Trend            []views.TrendPoint  `json:"trend"`
	Feed             []views.FeedEntry   `json:"feed"`
	RecentLeads      []domain.Lead       `json:"recentLeads"`
	UpcomingMeetings []domain.Meeting    `json:"upcomingMeetings"`
	RecentProjects   []domain.Project    `json:"recentProjects"`
	PendingTasks     []domain.Task       `json:"pendingTasks"`
	TodaysMeetings   []domain.Meeting    `json:"todaysMeetings"`
}

// Dashboard computes the full dashboard view.
func (s *Service) Dashboard() Dashboard {
	snap := s.store.Snapshot()
	now := s.now()
	distribution := views.StatusDistribution(snap.Leads)
	return Dashboard{
		Stats:            views.ComputeStats(snap, now),
		Distribution:     distribution,
		Arcs:             views.DonutArcs(distribution),
		Trend:            views.MeetingsTrend(snap.Meetings, now),
		Feed:             views.ActivityFeed(snap, now),
		RecentLeads:      views.RecentLeads(snap.Leads),
		UpcomingMeetings: views.UpcomingMeetings(snap.Meetings, now),
		RecentProjects:   views.RecentProjects(snap.Projects),
		PendingTasks:     views.PendingTasks(snap.Tasks),
		TodaysMeetings:   views.TodaysMeetings(snap.Meetings, now),
	}
}

// Calendar renders the month grid containing the selected day.
func (s *Service) Calendar(selected time.Time) []views.CalendarDay {
	return views.MonthGrid(s.store.Meetings(), selected, s.now())
}

// PrepareWhatsApp personalizes the template for the selected leads, builds
// chat links, and records a prepared-message activity on each lead that had a
// phone number.
func (s *Service) PrepareWhatsApp(leadIDs []int64, template string) (outreach.Result, error) {
	leads, err := s.selectLeads(leadIDs, template)
	if err != nil {
		return outreach.Result{}, err
	}
	res := outreach.PrepareWhatsApp(leads, template, s.now().UTC().Format(time.RFC3339))
	s.recordActivities(res)
	return res, nil
}

// PrepareEmail personalizes the template for the selected leads and builds
// mailto links. Every selected lead gets an activity recorded, address or not.
func (s *Service) PrepareEmail(leadIDs []int64, template string) (outreach.Result, error) {
	leads, err := s.selectLeads(leadIDs, template)
	if err != nil {
		return outreach.Result{}, err
	}
	res := outreach.PrepareEmail(leads, template, s.now().UTC().Format(time.RFC3339))
	s.recordActivities(res)
	return res, nil
}

func (s *Service) selectLeads(leadIDs []int64, template string) ([]domain.Lead, error) {
	if template == "" {
		return nil, ErrEmptyTemplate
	}
	if len(leadIDs) == 0 {
		return nil, ErrNoLeadsSelected
	}
	var leads []domain.Lead
	for _, id := range leadIDs {
		if lead, ok := s.store.GetLead(id); ok {
			leads = append(leads, lead)
		}
	}
	if len(leads) == 0 {
		return nil, ErrNoLeadsSelected
	}
	return leads, nil
}

func (s *Service) recordActivities(res outreach.Result) {
	for _, p := range res.Prepared {
		s.store.AddLeadActivity(p.Lead.ID, p.Activity)
	}
}

// ErrArchiveDisabled is returned by export operations when no archive backend
// was configured.
var ErrArchiveDisabled = errors.New("snapshot archive not configured")

// ExportSnapshot captures the current collections as a JSON document and
// stores it under a timestamped archive key.
func (s *Service) ExportSnapshot(ctx context.Context) (archive.Info, error) {
	if s.archive == nil {
		return archive.Info{}, ErrArchiveDisabled
	}
	payload, err := json.MarshalIndent(s.store.Snapshot(), "", "  ")
	if err != nil {
		return archive.Info{}, fmt.Errorf("encode snapshot: %w", err)
	}
	key := archive.SnapshotKey(s.now())
	info, err := s.archive.Put(ctx, key, payload)
	if err != nil {
		return archive.Info{}, fmt.Errorf("store snapshot %s: %w", key, err)
	}
	s.logger.Info("snapshot exported", zap.String("key", info.Key), zap.Int64("bytes", info.Size))
	return info, nil
}

// Archives lists stored snapshot exports, oldest key first.
func (s *Service) Archives(ctx context.Context) ([]archive.Info, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.List(ctx, "snapshot-")
}

// ArchivePayload fetches a stored export document by key.
func (s *Service) ArchivePayload(ctx context.Context, key string) ([]byte, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.Get(ctx, key)
}
