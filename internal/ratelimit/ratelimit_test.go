// ABOUTME: Tests for per-user action rate limiting
// ABOUTME: Verifies budgets, isolation between users and actions, and resets
package ratelimit

import "testing"

func TestAllow_BudgetExhausts(t *testing.T) {
	l, err := New(Config{ChatPerMinute: 3})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if !l.Allow("user1", ActionChat) {
			t.Fatalf("request %d denied within budget", i+1)
		}
	}
	if l.Allow("user1", ActionChat) {
		t.Error("request over budget allowed")
	}
}

func TestAllow_UsersIsolated(t *testing.T) {
	l, err := New(Config{ChatPerMinute: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !l.Allow("user1", ActionChat) {
		t.Fatal("first request denied")
	}
	if l.Allow("user1", ActionChat) {
		t.Error("user1 over budget")
	}
	if !l.Allow("user2", ActionChat) {
		t.Error("user2 affected by user1's budget")
	}
}

func TestAllow_ActionsIsolated(t *testing.T) {
	l, err := New(Config{ChatPerMinute: 1, IndexPerMinute: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !l.Allow("user1", ActionChat) {
		t.Fatal("chat denied")
	}
	if !l.Allow("user1", ActionIndex) {
		t.Error("index budget shared with chat")
	}
}

func TestAllow_UnknownActionAllowed(t *testing.T) {
	l, err := New(Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !l.Allow("user1", Action("unknown")) {
		t.Error("unknown action denied")
	}
}

func TestReset_RestoresBudget(t *testing.T) {
	l, err := New(Config{ChatPerMinute: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Allow("user1", ActionChat)
	if l.Allow("user1", ActionChat) {
		t.Fatal("budget should be spent")
	}

	l.Reset("user1", ActionChat)
	if !l.Allow("user1", ActionChat) {
		t.Error("reset did not restore budget")
	}
}

func TestResetAll(t *testing.T) {
	l, err := New(Config{ChatPerMinute: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Allow("user1", ActionChat)
	l.Allow("user2", ActionChat)
	l.ResetAll()

	if !l.Allow("user1", ActionChat) || !l.Allow("user2", ActionChat) {
		t.Error("ResetAll did not restore budgets")
	}
}
