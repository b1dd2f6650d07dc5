package core

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"opsdesk/internal/infra/persistence/memory"
	"opsdesk/pkg/domain"
)

func newTestStore(t *testing.T) (*Store, *memory.Mirror) {
	t.Helper()
	mirror := memory.New()
	store := OpenStore(mirror, zap.NewNop(), time.Millisecond)
	t.Cleanup(store.Close)
	return store, mirror
}

func TestAddLeadAssignsSequentialIDs(t *testing.T) {
	store, _ := newTestStore(t)
	for want := int64(1); want <= 3; want++ {
		got := store.AddLead(domain.Lead{Name: "Lead"})
		if got.ID != want {
			t.Fatalf("lead %d: got ID %d", want, got.ID)
		}
	}
}

func TestDeleteMaxIDThenAddReusesID(t *testing.T) {
	store, _ := newTestStore(t)
	store.AddLead(domain.Lead{Name: "A"})
	b := store.AddLead(domain.Lead{Name: "B"})
	store.DeleteLead(b.ID)
	c := store.AddLead(domain.Lead{Name: "C"})
	if c.ID != b.ID {
		t.Fatalf("expected reused ID %d, got %d", b.ID, c.ID)
	}
}

func TestDeleteInteriorIDDoesNotCollide(t *testing.T) {
	store, _ := newTestStore(t)
	a := store.AddLead(domain.Lead{Name: "A"})
	store.AddLead(domain.Lead{Name: "B"})
	store.DeleteLead(a.ID)
	c := store.AddLead(domain.Lead{Name: "C"})
	if c.ID != 3 {
		t.Fatalf("expected ID 3, got %d", c.ID)
	}
}

func TestUpdateUnknownLeadIsNoOp(t *testing.T) {
	store, _ := newTestStore(t)
	store.AddLead(domain.Lead{Name: "A"})
	store.UpdateLead(domain.Lead{ID: 99, Name: "Ghost"})
	leads := store.Leads()
	if len(leads) != 1 || leads[0].Name != "A" {
		t.Fatalf("unexpected leads after no-op update: %+v", leads)
	}
	store.DeleteLead(99)
	if got := len(store.Leads()); got != 1 {
		t.Fatalf("expected 1 lead after no-op delete, got %d", got)
	}
}

func TestAddLeadActivityAssignsListScopedIDs(t *testing.T) {
	store, _ := newTestStore(t)
	a := store.AddLead(domain.Lead{Name: "A"})
	b := store.AddLead(domain.Lead{Name: "B"})
	store.AddLeadActivity(a.ID, domain.Activity{Type: domain.ActivityNote, Title: "first"})
	store.AddLeadActivity(a.ID, domain.Activity{Type: domain.ActivityNote, Title: "second"})
	store.AddLeadActivity(b.ID, domain.Activity{Type: domain.ActivityCall, Title: "other"})

	lead, ok := store.GetLead(a.ID)
	if !ok {
		t.Fatal("lead A missing")
	}
	if len(lead.Activities) != 2 || lead.Activities[0].ID != 1 || lead.Activities[1].ID != 2 {
		t.Fatalf("unexpected activity IDs: %+v", lead.Activities)
	}
	other, _ := store.GetLead(b.ID)
	if len(other.Activities) != 1 || other.Activities[0].ID != 1 {
		t.Fatalf("activity IDs must be scoped per lead: %+v", other.Activities)
	}
}

func TestToggleTaskCompletion(t *testing.T) {
	store, _ := newTestStore(t)
	task := store.AddTask(domain.Task{Name: "Ship", ProjectID: 1})
	store.ToggleTaskCompletion(task.ID)
	if tasks := store.Tasks(); !tasks[0].Completed {
		t.Fatal("expected task completed after toggle")
	}
	store.ToggleTaskCompletion(task.ID)
	if tasks := store.Tasks(); tasks[0].Completed {
		t.Fatal("expected task pending after second toggle")
	}
}

func TestLeadsReturnsDeepCopy(t *testing.T) {
	store, _ := newTestStore(t)
	lead := store.AddLead(domain.Lead{Name: "A"})
	store.AddLeadActivity(lead.ID, domain.Activity{Title: "note"})
	leads := store.Leads()
	leads[0].Name = "mutated"
	leads[0].Activities[0].Title = "mutated"
	stored, _ := store.GetLead(lead.ID)
	if stored.Name != "A" || stored.Activities[0].Title != "note" {
		t.Fatalf("store state mutated through returned copy: %+v", stored)
	}
}

func TestFlushPersistsCollections(t *testing.T) {
	store, mirror := newTestStore(t)
	store.AddLead(domain.Lead{Name: "A", Status: domain.LeadStatusNew})
	store.AddMeeting(domain.Meeting{LeadName: "A", Date: "2026-09-01", Time: "10:00"})
	store.Flush()

	payload, err := mirror.Read(context.Background(), domain.BucketLeads)
	if err != nil || payload == nil {
		t.Fatalf("leads bucket not persisted: payload=%v err=%v", payload, err)
	}
	var leads []domain.Lead
	if err := json.Unmarshal(payload, &leads); err != nil {
		t.Fatalf("decode persisted leads: %v", err)
	}
	if len(leads) != 1 || leads[0].Name != "A" {
		t.Fatalf("unexpected persisted leads: %+v", leads)
	}
}

func TestOpenStoreRestoresState(t *testing.T) {
	mirror := memory.New()
	first := OpenStore(mirror, zap.NewNop(), time.Millisecond)
	first.AddLead(domain.Lead{Name: "Persisted", Status: domain.LeadStatusNew})
	first.AddProject(domain.Project{Name: "P", Client: "C", Status: domain.ProjectStatusPlanning})
	first.Close()

	second := OpenStore(mirror, zap.NewNop(), time.Millisecond)
	defer second.Close()
	if leads := second.Leads(); len(leads) != 1 || leads[0].Name != "Persisted" {
		t.Fatalf("leads not restored: %+v", leads)
	}
	if projects := second.Projects(); len(projects) != 1 {
		t.Fatalf("projects not restored: %+v", projects)
	}
	// Restored IDs keep counting from the persisted maximum.
	if lead := second.AddLead(domain.Lead{Name: "Next"}); lead.ID != 2 {
		t.Fatalf("expected ID 2 after restore, got %d", lead.ID)
	}
}

func TestOpenStoreRecoversFromCorruptBucket(t *testing.T) {
	mirror := memory.New()
	if err := mirror.Write(context.Background(), domain.BucketLeads, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	store := OpenStore(mirror, zap.NewNop(), time.Millisecond)
	defer store.Close()
	if leads := store.Leads(); len(leads) != 0 {
		t.Fatalf("expected empty collection after corrupt bucket, got %+v", leads)
	}
}

func TestNextID(t *testing.T) {
	cases := []struct {
		name     string
		existing []int64
		want     int64
	}{
		{"empty", nil, 1},
		{"sequential", []int64{1, 2, 3}, 4},
		{"gap", []int64{1, 3}, 4},
		{"unordered", []int64{5, 2}, 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := nextID(tc.existing); got != tc.want {
				t.Fatalf("nextID(%v) = %d, want %d", tc.existing, got, tc.want)
			}
		})
	}
}
