package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"opsdesk/pkg/domain"
)

func TestWriteReadRoundTrip(t *testing.T) {
	m, err := New(filepath.Join(t.TempDir(), "opsdesk.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = m.Close() }()

	ctx := context.Background()
	payload := []byte(`[{"id":1,"name":"Asha"}]`)
	if err := m.Write(ctx, domain.BucketLeads, payload); err != nil {
		t.Fatal(err)
	}
	got, err := m.Read(ctx, domain.BucketLeads)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(payload) {
		t.Fatalf("got %s, want %s", got, payload)
	}
}

func TestReadMissingBucketReturnsNil(t *testing.T) {
	m, err := New(filepath.Join(t.TempDir(), "opsdesk.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = m.Close() }()

	got, err := m.Read(context.Background(), domain.BucketSession)
	if err != nil {
		t.Fatalf("missing bucket must not error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil payload, got %s", got)
	}
}

func TestWriteUpsertsLatestPayload(t *testing.T) {
	m, err := New(filepath.Join(t.TempDir(), "opsdesk.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = m.Close() }()

	ctx := context.Background()
	if err := m.Write(ctx, domain.BucketTasks, []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := m.Write(ctx, domain.BucketTasks, []byte("v2")); err != nil {
		t.Fatal(err)
	}
	got, err := m.Read(ctx, domain.BucketTasks)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v2" {
		t.Fatalf("expected latest payload, got %s", got)
	}
}

func TestStateSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opsdesk.db")
	ctx := context.Background()

	first, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Write(ctx, domain.BucketProjects, []byte("persisted")); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = second.Close() }()
	got, err := second.Read(ctx, domain.BucketProjects)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "persisted" {
		t.Fatalf("state lost across reopen: %s", got)
	}
}

func TestDeleteRemovesBucket(t *testing.T) {
	m, err := New(filepath.Join(t.TempDir(), "opsdesk.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = m.Close() }()

	ctx := context.Background()
	if err := m.Write(ctx, domain.BucketSession, []byte(`{"isLoggedIn":true}`)); err != nil {
		t.Fatal(err)
	}
	if err := m.Delete(ctx, domain.BucketSession); err != nil {
		t.Fatal(err)
	}
	got, err := m.Read(ctx, domain.BucketSession)
	if err != nil || got != nil {
		t.Fatalf("expected empty bucket after delete, got %s err=%v", got, err)
	}
}
