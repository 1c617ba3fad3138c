package session

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testSlice() Slice {
	return Slice{
		User: &User{
			ID:        uuid.MustParse("9c5f7a2e-58b2-4f7d-9c17-3f9f2b6f6d41"),
			Email:     "a@b.com",
			FirstName: "Ada",
			LastName:  "Nguyen",
			Role:      RoleManufacturingManager,
			CreatedAt: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2025, 3, 2, 9, 30, 0, 0, time.UTC),
		},
		Token: "tok-abc",
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()

	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, present, err := store.Load(ctx); err != nil || present {
		t.Fatalf("fresh store: present=%v err=%v", present, err)
	}

	want := testSlice()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopen stands in for a process restart.
	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, present, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !present {
		t.Fatal("slice absent after reopen")
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestSQLiteStoreSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()

	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	first := testSlice()
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := testSlice()
	second.Token = "tok-def"
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, _, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Token != "tok-def" {
		t.Fatalf("token = %q, want tok-def", got.Token)
	}
}

func TestSQLiteStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()

	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	if err := store.Save(ctx, testSlice()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, present, _ := store.Load(ctx); present {
		t.Fatal("slice present after clear")
	}

	// Clearing an already empty store succeeds.
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}
