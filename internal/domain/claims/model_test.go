package claims

import (
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"REJECTED", "PENDING", "CALL", "RESUBMITTED"} {
		if _, ok := ParseStatus(s); !ok {
			t.Errorf("expected %s to parse", s)
		}
	}
	for _, s := range []string{"", "pending", "APPROVED"} {
		if _, ok := ParseStatus(s); ok {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestClaim_Validate(t *testing.T) {
	c := testClaim("10001", "Ann", "Lee", StatusCall, day(2024, 5, 5))
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	neg := c
	neg.Amount = -1
	if err := neg.Validate(); err == nil {
		t.Error("expected error for negative amount")
	}

	bad := c
	bad.Status = "OPEN"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown status")
	}

	noDate := c
	noDate.ServiceDate = time.Time{}
	if err := noDate.Validate(); err == nil {
		t.Error("expected error for missing service date")
	}
}

func TestClaim_Labels(t *testing.T) {
	c := testClaim("10001", "Ann", "Lee", StatusCall, day(2024, 3, 7))
	c.LastUpdated = time.Date(2025, 1, 9, 14, 5, 0, 0, time.UTC)
	c.Amount = 1234.5

	if got := c.ServiceDateLabel(); got != "Mar 07, 2024" {
		t.Errorf("unexpected service date label %q", got)
	}
	if got := c.LastUpdatedLabel(); got != "Jan 09, 2025 2:05 PM" {
		t.Errorf("unexpected last updated label %q", got)
	}
	if got := c.AmountLabel(); got != "$1,234.50" {
		t.Errorf("unexpected amount label %q", got)
	}
	if got := c.PatientName(); got != "Ann Lee" {
		t.Errorf("unexpected patient name %q", got)
	}
}

func TestUserColor(t *testing.T) {
	if got := UserColor("js"); got != "bg-cyan-100 text-cyan-800" {
		t.Errorf("unexpected color %q", got)
	}
	if got := UserColor(""); got != "bg-gray-100 text-gray-800" {
		t.Errorf("expected fallback color, got %q", got)
	}
	if got := UserColor("9z"); got != "bg-gray-100 text-gray-800" {
		t.Errorf("expected fallback color, got %q", got)
	}
}
