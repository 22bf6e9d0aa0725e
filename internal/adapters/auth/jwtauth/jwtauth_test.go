package jwtauth

import (
	"context"
	"testing"
	"time"
)

func TestIssueVerify_RoundTrip(t *testing.T) {
	svc, err := New(Config{Secret: "test-secret", TTL: time.Hour})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	token, err := svc.Issue("user-1", "Ana")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected subject user-1, got %q", claims.UserID)
	}
	if claims.Name != "Ana" {
		t.Fatalf("expected name Ana, got %q", claims.Name)
	}
}

func TestVerify_RejectsExpired(t *testing.T) {
	svc, err := New(Config{Secret: "test-secret", TTL: time.Minute})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	issuedAt := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.Issue("user-1", "Ana")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	if _, err := svc.Verify(context.Background(), token); err == nil {
		t.Fatalf("expected error verifying expired token")
	}
}

func TestVerify_RejectsTamperedAndForeign(t *testing.T) {
	svc, _ := New(Config{Secret: "test-secret", TTL: time.Hour})
	other, _ := New(Config{Secret: "other-secret", TTL: time.Hour})

	token, err := other.Issue("user-1", "Ana")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := svc.Verify(context.Background(), token); err == nil {
		t.Fatalf("expected error verifying token signed with another secret")
	}
	if _, err := svc.Verify(context.Background(), "not-a-token"); err == nil {
		t.Fatalf("expected error verifying garbage token")
	}
	if _, err := svc.Verify(context.Background(), ""); err == nil {
		t.Fatalf("expected error verifying empty token")
	}
}

func TestNew_RequiresSecret(t *testing.T) {
	if _, err := New(Config{Secret: "   "}); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
