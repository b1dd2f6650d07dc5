package core

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"opsdesk/pkg/domain"
)

const restoreTimeout = 5 * time.Second

// Store is the exclusive owner of the four record collections and the single
// mutation point. Collections are ordered slices; insertion order is
// observable in derived views. Mutations update in-memory state synchronously
// and schedule a debounced mirror write; reads return deep copies.
//
// The store is constructed once at bootstrap and handed to consumers by
// reference. A mutex guards it because transport handlers run on multiple
// goroutines; there is still exactly one logical writer.
type Store struct {
	mu     sync.RWMutex
	state  domain.Snapshot
	queue  *flushQueue
	logger *zap.Logger
}

// OpenStore constructs a store mirrored through the supplied mirror,
// restoring any previously persisted collections. Restore is best-effort: a
// missing bucket or a parse failure falls back to an empty collection and is
// logged, never returned as an error.
func OpenStore(mirror domain.Mirror, logger *zap.Logger, flushInterval time.Duration) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		queue:  newFlushQueue(mirror, logger, flushInterval),
		logger: logger,
	}
	s.restore(mirror)
	return s
}

func (s *Store) restore(mirror domain.Mirror) {
	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	defer cancel()
	for _, bucket := range domain.CollectionBuckets {
		payload, err := mirror.Read(ctx, bucket)
		if err != nil {
			s.logger.Warn("restore bucket", zap.String("bucket", string(bucket)), zap.Error(err))
			continue
		}
		if payload == nil {
			continue
		}
		var parseErr error
		switch bucket {
		case domain.BucketLeads:
			parseErr = json.Unmarshal(payload, &s.state.Leads)
		case domain.BucketMeetings:
			parseErr = json.Unmarshal(payload, &s.state.Meetings)
		case domain.BucketProjects:
			parseErr = json.Unmarshal(payload, &s.state.Projects)
		case domain.BucketTasks:
			parseErr = json.Unmarshal(payload, &s.state.Tasks)
		}
		if parseErr != nil {
			s.logger.Warn("decode bucket, using empty collection",
				zap.String("bucket", string(bucket)), zap.Error(parseErr))
			s.clearBucket(bucket)
		}
	}
}

func (s *Store) clearBucket(bucket domain.Bucket) {
	switch bucket {
	case domain.BucketLeads:
		s.state.Leads = nil
	case domain.BucketMeetings:
		s.state.Meetings = nil
	case domain.BucketProjects:
		s.state.Projects = nil
	case domain.BucketTasks:
		s.state.Tasks = nil
	}
}

// persistLocked marshals a collection and hands it to the write-behind queue.
// Callers hold s.mu.
func (s *Store) persistLocked(bucket domain.Bucket, collection any) {
	payload, err := json.Marshal(collection)
	if err != nil {
		s.logger.Error("encode bucket", zap.String("bucket", string(bucket)), zap.Error(err))
		return
	}
	s.queue.Enqueue(bucket, payload)
}

// nextID assigns max(existing)+1, or 1 for an empty collection. When the
// record holding the maximum identifier is deleted, its identifier is handed
// out again by the next add. That matches the shipped behavior and is covered
// by tests; do not change it without a product decision.
func nextID(existing []int64) int64 {
	var max int64
	for _, id := range existing {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// Leads --------------------------------------------------------------------

// AddLead assigns an identifier, appends the lead, and returns the stored
// record.
func (s *Store) AddLead(l domain.Lead) domain.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.state.Leads))
	for _, existing := range s.state.Leads {
		ids = append(ids, existing.ID)
	}
	l.ID = nextID(ids)
	s.state.Leads = append(s.state.Leads, domain.CloneLead(l))
	s.persistLocked(domain.BucketLeads, s.state.Leads)
	return domain.CloneLead(l)
}

// UpdateLead replaces the lead whose identifier matches. Unknown identifiers
// are a silent no-op.
func (s *Store) UpdateLead(l domain.Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.Leads {
		if existing.ID == l.ID {
			s.state.Leads[i] = domain.CloneLead(l)
			s.persistLocked(domain.BucketLeads, s.state.Leads)
			return
		}
	}
}

// DeleteLead removes the lead with the given identifier; no-op if absent.
func (s *Store) DeleteLead(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.Leads {
		if existing.ID == id {
			s.state.Leads = append(s.state.Leads[:i], s.state.Leads[i+1:]...)
			s.persistLocked(domain.BucketLeads, s.state.Leads)
			return
		}
	}
}

// AddLeadActivity appends an activity to the named lead's list, assigning a
// list-scoped identifier (list length + 1). No-op when the lead is unknown.
func (s *Store) AddLeadActivity(leadID int64, activity domain.Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Leads {
		if s.state.Leads[i].ID == leadID {
			activity.ID = int64(len(s.state.Leads[i].Activities) + 1)
			s.state.Leads[i].Activities = append(s.state.Leads[i].Activities, activity)
			s.persistLocked(domain.BucketLeads, s.state.Leads)
			return
		}
	}
}

// Leads returns a deep copy of the lead collection in insertion order.
func (s *Store) Leads() []domain.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneLeads(s.state.Leads)
}

// GetLead retrieves a lead by identifier.
func (s *Store) GetLead(id int64) (domain.Lead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.state.Leads {
		if l.ID == id {
			return domain.CloneLead(l), true
		}
	}
	return domain.Lead{}, false
}

// Meetings ------------------------------------------------------------------

// AddMeeting assigns an identifier, appends the meeting, and returns the
// stored record.
func (s *Store) AddMeeting(m domain.Meeting) domain.Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.state.Meetings))
	for _, existing := range s.state.Meetings {
		ids = append(ids, existing.ID)
	}
	m.ID = nextID(ids)
	s.state.Meetings = append(s.state.Meetings, m)
	s.persistLocked(domain.BucketMeetings, s.state.Meetings)
	return m
}

// UpdateMeeting replaces the meeting whose identifier matches; silent no-op
// when absent.
func (s *Store) UpdateMeeting(m domain.Meeting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.Meetings {
		if existing.ID == m.ID {
			s.state.Meetings[i] = m
			s.persistLocked(domain.BucketMeetings, s.state.Meetings)
			return
		}
	}
}

// DeleteMeeting removes the meeting with the given identifier; no-op if
// absent.
func (s *Store) DeleteMeeting(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.Meetings {
		if existing.ID == id {
			s.state.Meetings = append(s.state.Meetings[:i], s.state.Meetings[i+1:]...)
			s.persistLocked(domain.BucketMeetings, s.state.Meetings)
			return
		}
	}
}

// Meetings returns a copy of the meeting collection in insertion order.
func (s *Store) Meetings() []domain.Meeting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Meeting(nil), s.state.Meetings...)
}

// Projects ------------------------------------------------------------------

// AddProject assigns an identifier, appends the project, and returns the
// stored record.
func (s *Store) AddProject(p domain.Project) domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.state.Projects))
	for _, existing := range s.state.Projects {
		ids = append(ids, existing.ID)
	}
	p.ID = nextID(ids)
	s.state.Projects = append(s.state.Projects, p)
	s.persistLocked(domain.BucketProjects, s.state.Projects)
	return p
}

// UpdateProject replaces the project whose identifier matches; silent no-op
// when absent.
func (s *Store) UpdateProject(p domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.Projects {
		if existing.ID == p.ID {
			s.state.Projects[i] = p
			s.persistLocked(domain.BucketProjects, s.state.Projects)
			return
		}
	}
}

// DeleteProject removes the project with the given identifier; no-op if
// absent. Dependent tasks are NOT cascaded: they stay in the task collection
// as orphans and drop out of project-scoped views.
func (s *Store) DeleteProject(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.Projects {
		if existing.ID == id {
			s.state.Projects = append(s.state.Projects[:i], s.state.Projects[i+1:]...)
			s.persistLocked(domain.BucketProjects, s.state.Projects)
			return
		}
	}
}

// Projects returns a copy of the project collection in insertion order.
func (s *Store) Projects() []domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Project(nil), s.state.Projects...)
}

// Tasks ---------------------------------------------------------------------

// AddTask assigns an identifier, appends the task, and returns the stored
// record.
func (s *Store) AddTask(t domain.Task) domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.state.Tasks))
	for _, existing := range s.state.Tasks {
		ids = append(ids, existing.ID)
	}
	t.ID = nextID(ids)
	s.state.Tasks = append(s.state.Tasks, t)
	s.persistLocked(domain.BucketTasks, s.state.Tasks)
	return t
}

// UpdateTask replaces the task whose identifier matches; silent no-op when
// absent.
func (s *Store) UpdateTask(t domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.Tasks {
		if existing.ID == t.ID {
			s.state.Tasks[i] = t
			s.persistLocked(domain.BucketTasks, s.state.Tasks)
			return
		}
	}
}

// DeleteTask removes the task with the given identifier; no-op if absent.
func (s *Store) DeleteTask(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.Tasks {
		if existing.ID == id {
			s.state.Tasks = append(s.state.Tasks[:i], s.state.Tasks[i+1:]...)
			s.persistLocked(domain.BucketTasks, s.state.Tasks)
			return
		}
	}
}

// ToggleTaskCompletion flips the completion flag of the named task; no-op
// when absent.
func (s *Store) ToggleTaskCompletion(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.state.Tasks {
		if existing.ID == id {
			s.state.Tasks[i].Completed = !existing.Completed
			s.persistLocked(domain.BucketTasks, s.state.Tasks)
			return
		}
	}
}

// Tasks returns a copy of the task collection in insertion order.
func (s *Store) Tasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Task(nil), s.state.Tasks...)
}

// Snapshot returns a deep copy of all four collections.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Flush synchronously drains pending mirror writes.
func (s *Store) Flush() {
	s.queue.FlushAll()
}

// Close drains pending writes and stops the write-behind queue. It does not
// close the mirror; the mirror's owner does that.
func (s *Store) Close() {
	s.queue.Close()
}
