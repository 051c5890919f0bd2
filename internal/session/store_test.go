package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"poster-backend/internal/records"
	"poster-backend/internal/report"
)

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore(time.Hour, nil)
		},
		"redis": func(t *testing.T) Store {
			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = rdb.Close() })
			return NewRedisStore(rdb, time.Hour)
		},
	}

	for name, build := range stores {
		build := build
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := build(t)

			if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if _, err := store.Update(ctx, "missing", func(*State) error { return nil }); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound on update, got %v", err)
			}

			if err := store.Create(ctx, NewState("s1", time.Now().UTC())); err != nil {
				t.Fatalf("Create: %v", err)
			}
			updated, err := store.Update(ctx, "s1", func(st *State) error {
				st.ApplyUpload([]records.Record{{ID: "M1", ImageReference: "https://x/a.png"}})
				st.Select("M1", "a1")
				st.Complete("a1", Result{
					ReportText: "body",
					Outcome:    report.OutcomeParsed,
					Payload:    map[string]any{"cta_text": "Register"},
					Poster:     &report.Poster{CTAText: "Register"},
				})
				return nil
			})
			if err != nil {
				t.Fatalf("Update: %v", err)
			}
			if updated.Status != StatusCompleted {
				t.Fatalf("expected completed, got %s", updated.Status)
			}

			got, err := store.Get(ctx, "s1")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if len(got.Records) != 1 || got.Current == nil || got.Current.ID != "M1" {
				t.Fatalf("unexpected state %+v", got)
			}
			if got.Result == nil || got.Result.Poster == nil || got.Result.Poster.CTAText != "Register" {
				t.Fatalf("result not persisted: %+v", got.Result)
			}
			if got.Result.Payload["cta_text"] != "Register" {
				t.Fatalf("payload not persisted: %+v", got.Result.Payload)
			}

			abort := errors.New("abort")
			if _, err := store.Update(ctx, "s1", func(st *State) error {
				st.Status = StatusError
				return abort
			}); !errors.Is(err, abort) {
				t.Fatalf("expected abort error, got %v", err)
			}
			got, _ = store.Get(ctx, "s1")
			if got.Status != StatusCompleted {
				t.Fatalf("aborted update must not be written, got %s", got.Status)
			}
		})
	}
}

func TestStoresSerializeConcurrentUpdates(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	for name, store := range map[string]Store{
		"memory": NewMemoryStore(0, nil),
		"redis":  NewRedisStore(rdb, time.Hour),
	} {
		ctx := context.Background()
		if err := store.Create(ctx, NewState("s1", time.Now().UTC())); err != nil {
			t.Fatalf("%s: Create: %v", name, err)
		}

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = store.Update(ctx, "s1", func(st *State) error {
					st.Records = append(st.Records, records.Record{ID: "M", ImageReference: "x"})
					return nil
				})
			}()
		}
		wg.Wait()

		got, err := store.Get(ctx, "s1")
		if err != nil {
			t.Fatalf("%s: Get: %v", name, err)
		}
		if len(got.Records) != 5 {
			t.Fatalf("%s: expected 5 records, got %d", name, len(got.Records))
		}
	}
}

func TestMemoryStoreExpires(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Minute, func() time.Time { return now })
	ctx := context.Background()

	if err := store.Create(ctx, NewState("s1", now)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	now = now.Add(30 * time.Second)
	if _, err := store.Get(ctx, "s1"); err != nil {
		t.Fatalf("expected live session: %v", err)
	}
	if _, err := store.Update(ctx, "s1", func(*State) error { return nil }); err != nil {
		t.Fatalf("Update: %v", err)
	}
	now = now.Add(45 * time.Second)
	if _, err := store.Get(ctx, "s1"); err != nil {
		t.Fatalf("update should slide expiry: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}

func TestRedisStoreSetsTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	store := NewRedisStore(rdb, 10*time.Minute)

	if err := store.Create(context.Background(), NewState("s1", time.Now().UTC())); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ttl := mr.TTL(redisKey("s1")); ttl != 10*time.Minute {
		t.Fatalf("expected ttl 10m, got %v", ttl)
	}
	mr.FastForward(11 * time.Minute)
	if _, err := store.Get(context.Background(), "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}
