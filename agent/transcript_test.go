package agent

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func TestKeepLastNTrimmer(t *testing.T) {
	history := []*schema.Message{
		schema.SystemMessage("sys"),
		schema.UserMessage("1"),
		schema.AssistantMessage("2", nil),
		schema.UserMessage("3"),
	}
	got := KeepLastNTrimmer{N: 2}.Trim(history)
	if len(got) != 3 || got[0].Content != "sys" || got[1].Content != "2" || got[2].Content != "3" {
		t.Errorf("unexpected trim result: %v", got)
	}
	if got := (KeepLastNTrimmer{}).Trim(history); len(got) != 1 {
		t.Errorf("N=0 must keep only system messages, got %d", len(got))
	}
}

func TestTranscriptStoreAppend(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTranscriptStore(KeepLastNTrimmer{N: 3})
	for _, m := range []string{"a", "a", "b", "c", "d"} {
		if _, err := store.Append(ctx, "s", schema.UserMessage(m)); err != nil {
			t.Fatal(err)
		}
	}
	hist, err := store.Append(ctx, "s")
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 3 || hist[0].Content != "b" {
		t.Errorf("unexpected window: %v", hist)
	}
	if err := store.Clear(ctx, "s"); err != nil {
		t.Fatal(err)
	}
	if hist, _ := store.Append(ctx, "s"); len(hist) != 0 {
		t.Errorf("window not cleared: %v", hist)
	}
}
