package archive

import (
	"context"
	"testing"
	"time"
)

func TestSnapshotKey(t *testing.T) {
	at := time.Date(2026, time.August, 28, 9, 30, 0, 0, time.UTC)
	if got := SnapshotKey(at); got != "snapshot-20260828T093000Z.json" {
		t.Fatalf("unexpected key %q", got)
	}
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fsStore, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return map[string]Store{"memory": NewMemory(), "fs": fsStore}
}

func TestPutGetListAcrossDrivers(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			payload := []byte(`{"leads":[]}`)
			info, err := store.Put(ctx, "snapshot-20260828T093000Z.json", payload)
			if err != nil {
				t.Fatal(err)
			}
			if info.Size != int64(len(payload)) {
				t.Fatalf("unexpected size %d", info.Size)
			}

			got, err := store.Get(ctx, info.Key)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != string(payload) {
				t.Fatalf("payload mismatch: %s", got)
			}

			if _, err := store.Put(ctx, info.Key, payload); err == nil {
				t.Fatal("second put for the same key must fail")
			}

			if _, err := store.Put(ctx, "other-file.json", payload); err != nil {
				t.Fatal(err)
			}
			infos, err := store.List(ctx, "snapshot-")
			if err != nil {
				t.Fatal(err)
			}
			if len(infos) != 1 || infos[0].Key != info.Key {
				t.Fatalf("unexpected list result: %+v", infos)
			}
		})
	}
}

func TestInvalidKeysRejected(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "../escape.json", "/abs.json"} {
				if _, err := store.Put(ctx, key, []byte("x")); err == nil {
					t.Fatalf("key %q must be rejected", key)
				}
			}
		})
	}
}

func TestGetMissingKeyFails(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, "snapshot-none.json"); err == nil {
				t.Fatal("expected error for missing key")
			}
		})
	}
}
