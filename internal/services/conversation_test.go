package services

import (
	"context"
	"testing"
	"time"

	"github.com/agrosub/agrosub-backend/internal/types"
)

func TestMemoryConversationStore_AppendAndHistory(t *testing.T) {
	store := NewMemoryConversationStore(testLogger(t), time.Hour)
	ctx := context.Background()

	if err := store.Append(ctx, "k", types.ChatMessage{Role: types.ChatRoleUser, Content: "a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Append(ctx, "k", types.ChatMessage{Role: types.ChatRoleAssistant, Content: "b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history, err := store.History(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 || history[0].Content != "a" || history[1].Content != "b" {
		t.Fatalf("unexpected history: %+v", history)
	}

	// Keys are isolated.
	other, err := store.History(ctx, "other")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected empty history for an unknown key")
	}
}

func TestMemoryConversationStore_Clear(t *testing.T) {
	store := NewMemoryConversationStore(testLogger(t), time.Hour)
	ctx := context.Background()

	if err := store.Append(ctx, "k", types.ChatMessage{Role: types.ChatRoleUser, Content: "a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Clear(ctx, "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	history, err := store.History(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected cleared history, got %+v", history)
	}
}

func TestMemoryConversationStore_EvictsExpired(t *testing.T) {
	store := NewMemoryConversationStore(testLogger(t), time.Millisecond)
	ctx := context.Background()

	if err := store.Append(ctx, "k", types.ChatMessage{Role: types.ChatRoleUser, Content: "a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	history, err := store.History(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected the conversation to be evicted, got %+v", history)
	}
}
