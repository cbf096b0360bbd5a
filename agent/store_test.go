package agent

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
)

func TestStoreHandsOutCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	s := NewSession("a", "", testFields("Vorname"), time.Now())
	if err := store.Put(ctx, s); err != nil {
		t.Fatal(err)
	}
	s.Values["Vorname"] = "changed after put"

	got, ok, err := store.Get(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("get failed: ok=%v err=%v", ok, err)
	}
	if _, exists := got.Values["Vorname"]; exists {
		t.Error("store must keep its own copy")
	}
	got.Cursor = 1
	again, _, _ := store.Get(ctx, "a")
	if again.Cursor != 0 {
		t.Error("mutating a fetched session must not leak into the store")
	}
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache[*Session]()
	store := NewCacheSessionStore(cache, "session")
	now := time.Now()
	old := NewSession("old", "", nil, now.Add(-time.Hour))
	fresh := NewSession("fresh", "", nil, now)
	_ = store.Put(ctx, old)
	_ = store.Put(ctx, fresh)

	n, err := store.Sweep(ctx, now.Add(-time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("evicted %d sessions, want 1", n)
	}
	if cache.Len() != 1 {
		t.Errorf("cache holds %d entries, want 1", cache.Len())
	}
	if _, ok, _ := store.Get(ctx, "old"); ok {
		t.Error("idle session survived")
	}
	if _, ok, _ := store.Get(ctx, "fresh"); !ok {
		t.Error("fresh session evicted")
	}
}

func TestRunSweeperStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := NewMemorySessionStore()
	_ = store.Put(ctx, NewSession("old", "", nil, time.Now().Add(-time.Hour)))

	done := make(chan error, 1)
	go func() { done <- RunSweeper(ctx, store, time.Minute, 5*time.Millisecond) }()

	deadline := time.After(2 * time.Second)
	for {
		if _, ok, _ := store.Get(ctx, "old"); !ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("sweeper did not evict idle session")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("sweeper returned %v", err)
	}
}

func TestRunSweeperDisabled(t *testing.T) {
	if err := RunSweeper(context.Background(), NewMemorySessionStore(), 0, 0); err != nil {
		t.Fatal(err)
	}
}

func TestAgentRun(t *testing.T) {
	store := NewMemorySessionStore()
	engine := NewEngine(store)
	ctx := WithSessionID(context.Background(), "terminal")
	if _, err := engine.CreateSession(ctx, "terminal", "", testFields("Vorname", "Familienname")); err != nil {
		t.Fatal(err)
	}

	runner := adk.NewRunner(ctx, adk.RunnerConfig{Agent: NewAgent("formpilot", "form assistant", engine)})
	iter := runner.Run(ctx, []adk.Message{schema.UserMessage("Max")})
	var reply string
	for {
		event, ok := iter.Next()
		if !ok {
			break
		}
		if event.Err != nil {
			t.Fatalf("agent error: %v", event.Err)
		}
		if event.Output != nil && event.Output.MessageOutput != nil {
			msg, err := event.Output.MessageOutput.GetMessage()
			if err != nil {
				t.Fatal(err)
			}
			reply = msg.Content
		}
	}
	if reply == "" {
		t.Fatal("no reply from agent")
	}
	if s, _, _ := store.Get(ctx, "terminal"); s.Values["Vorname"] != "Max" {
		t.Errorf("value not stored through agent: %v", s.Values)
	}
}

func TestRedisSessionStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("set REDIS_ADDR to run Redis tests")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	store := NewCacheSessionStore(NewRedisCache[*Session](client, time.Minute), "formpilot-test")
	s := NewSession("redis", "https://files.example/a.pdf", testFields("Vorname"), time.Now())
	s.Values["Vorname"] = "Max"
	s.record("Max", "Notiert!")
	if err := store.Put(ctx, s); err != nil {
		t.Fatal(err)
	}
	defer store.Remove(ctx, "redis")

	got, ok, err := store.Get(ctx, "redis")
	if err != nil || !ok {
		t.Fatalf("get failed: ok=%v err=%v", ok, err)
	}
	if got.Values["Vorname"] != "Max" || len(got.History) != 2 || got.DocumentURL != s.DocumentURL {
		t.Errorf("unexpected session: %+v", got)
	}
	if _, ok, _ := store.Get(ctx, "missing"); ok {
		t.Error("missing key reported as present")
	}
}
