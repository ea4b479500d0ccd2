// ABOUTME: Tests for conversation turns and history trimming
// ABOUTME: Verifies role validation and the recent-window invariant
package models

import (
	"fmt"
	"testing"
)

func TestNewTurn(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		text    string
		wantErr bool
	}{
		{"user turn", RoleUser, "hello", false},
		{"assistant turn", RoleAssistant, "hi there", false},
		{"invalid role", Role("system"), "hello", true},
		{"empty text", RoleUser, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turn, err := NewTurn(tt.role, tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewTurn() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if turn.Role != tt.role || turn.Text != tt.text {
				t.Errorf("turn = %+v, want role %q text %q", turn, tt.role, tt.text)
			}
			if turn.Timestamp.IsZero() {
				t.Error("timestamp not set")
			}
		})
	}
}

func TestTrimHistory(t *testing.T) {
	history := make([]ConversationTurn, 30)
	for i := range history {
		history[i] = ConversationTurn{Role: RoleUser, Text: fmt.Sprintf("turn %d", i)}
	}

	trimmed := TrimHistory(history, 20)
	if len(trimmed) != 20 {
		t.Fatalf("trimmed length = %d, want 20", len(trimmed))
	}
	// Must keep the most recent turns.
	if trimmed[len(trimmed)-1].Text != "turn 29" {
		t.Errorf("last turn = %q, want turn 29", trimmed[len(trimmed)-1].Text)
	}
	if trimmed[0].Text != "turn 10" {
		t.Errorf("first turn = %q, want turn 10", trimmed[0].Text)
	}
}

func TestTrimHistory_ShorterThanWindow(t *testing.T) {
	history := []ConversationTurn{{Role: RoleUser, Text: "only one"}}
	trimmed := TrimHistory(history, 20)
	if len(trimmed) != 1 {
		t.Errorf("trimmed length = %d, want 1", len(trimmed))
	}
}

func TestTrimHistory_ZeroWindow(t *testing.T) {
	history := []ConversationTurn{{Role: RoleUser, Text: "a"}, {Role: RoleAssistant, Text: "b"}}
	trimmed := TrimHistory(history, 0)
	if len(trimmed) != 2 {
		t.Errorf("zero window should disable trimming, got %d turns", len(trimmed))
	}
}
