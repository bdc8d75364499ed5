package chat

import (
	"strings"
	"testing"
)

func TestDeriveTitle(t *testing.T) {
	if got := DeriveTitle("hello"); got != "hello" {
		t.Fatalf("unexpected title: %q", got)
	}
	if got := DeriveTitle("  padded  "); got != "padded" {
		t.Fatalf("expected trimmed title, got %q", got)
	}

	long := strings.Repeat("a", 40)
	got := DeriveTitle(long)
	if got != strings.Repeat("a", 30)+"..." {
		t.Fatalf("unexpected truncated title: %q", got)
	}

	exact := strings.Repeat("b", 30)
	if got := DeriveTitle(exact); got != exact {
		t.Fatalf("30-rune title must not be truncated, got %q", got)
	}
}

func TestHistory(t *testing.T) {
	messages := []Message{
		NewMessage(RoleUser, "add a task"),
		NewMessage(RoleAssistant, "done"),
		NewErrorMessage("Sorry, something went wrong."),
	}
	entries := History(messages)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Role != "user" || entries[0].Content != "add a task" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Role != "assistant" {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestNewErrorMessage(t *testing.T) {
	m := NewErrorMessage("boom")
	if m.Role != RoleAssistant || !m.IsError {
		t.Fatalf("unexpected message: %+v", m)
	}
	if m.ID == "" || m.Timestamp.IsZero() {
		t.Fatalf("expected id and timestamp to be set")
	}
}
