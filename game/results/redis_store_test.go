package results

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

// newRedisStore starts an in-process Redis and connects a store to it
func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	rdb, err := Connect("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}

	store := NewRedisStore(rdb)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestConnect_InvalidURL(t *testing.T) {
	if _, err := Connect("not a redis url"); err == nil {
		t.Error("Expected error for malformed URL")
	}
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := Connect("redis://" + addr); err == nil {
		t.Error("Expected error when the server does not answer PING")
	}
}

func TestResultKey(t *testing.T) {
	if got := resultKey("r-1"); got != "bagatelle:result:r-1" {
		t.Errorf("Unexpected key %s", got)
	}
}

func TestRedisStore_SaveGetList(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	first := createTestResult("test-"+uuid.NewString(), time.Now().Add(-time.Minute))
	second := createTestResult("test-"+uuid.NewString(), time.Now())
	second.Tie = true

	for _, r := range []*Result{first, second} {
		if err := store.Save(ctx, r); err != nil {
			t.Fatalf("Failed to save %s: %v", r.ID, err)
		}
	}

	if !mr.Exists(resultKey(first.ID)) {
		t.Errorf("Expected payload under %s", resultKey(first.ID))
	}
	index, err := mr.List(resultIndexKey)
	if err != nil {
		t.Fatalf("Failed to read index: %v", err)
	}
	if len(index) != 2 || index[0] != second.ID {
		t.Errorf("Expected newest id first in the index, got %v", index)
	}

	loaded, err := store.Get(ctx, second.ID)
	if err != nil {
		t.Fatalf("Failed to get result: %v", err)
	}
	if !loaded.Tie || loaded.TopScore != 150 || len(loaded.Players) != 2 {
		t.Errorf("Unexpected result loaded: %+v", loaded)
	}

	list, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to list results: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("Expected newest first, got %d results", len(list))
	}

	limited, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to list results: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != second.ID {
		t.Errorf("Expected only the newest result, got %d", len(limited))
	}
}

func TestRedisStore_ListSkipsMissingPayloads(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	kept := createTestResult("kept", time.Now().Add(-time.Minute))
	gone := createTestResult("gone", time.Now())
	for _, r := range []*Result{kept, gone} {
		if err := store.Save(ctx, r); err != nil {
			t.Fatalf("Failed to save %s: %v", r.ID, err)
		}
	}
	mr.Del(resultKey(gone.ID))

	list, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to list results: %v", err)
	}
	if len(list) != 1 || list[0].ID != kept.ID {
		t.Errorf("Expected only %s, got %d results", kept.ID, len(list))
	}
}

func TestRedisStore_Errors(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing-"+uuid.NewString()); !errors.Is(err, ErrResultNotFound) {
		t.Errorf("Expected ErrResultNotFound, got %v", err)
	}
	if err := store.Save(ctx, nil); err == nil {
		t.Error("Expected error saving nil result")
	}
	if err := store.Save(ctx, &Result{}); err == nil {
		t.Error("Expected error saving result without id")
	}

	mr.Set(resultKey("corrupt"), "not json")
	if _, err := store.Get(ctx, "corrupt"); err == nil || errors.Is(err, ErrResultNotFound) {
		t.Errorf("Expected an unmarshal error, got %v", err)
	}

	mr.SetError("server is down")
	if err := store.Save(ctx, createTestResult("r-down", time.Now())); err == nil {
		t.Error("Expected error saving while the server fails")
	}
	if _, err := store.List(ctx, 5); err == nil {
		t.Error("Expected error listing while the server fails")
	}
	mr.SetError("")
}
