package booking

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusApproved, StatusCancelled, true},
		{StatusApproved, StatusCompleted, true},
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusPending, false},
		{StatusRejected, StatusPending, false},
		{StatusCancelled, StatusApproved, false},
		{StatusCompleted, StatusCancelled, false},
		// 同态重放也非法
		{StatusPending, StatusPending, false},
		{StatusApproved, StatusApproved, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestApplyTransitionStampsTimes(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	b := &Booking{Status: StatusPending}
	if err := ApplyTransition(b, StatusApproved, now); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if b.Status != StatusApproved {
		t.Fatalf("expected status APPROVED, got %s", b.Status)
	}
	if b.ApprovedAt == nil || !b.ApprovedAt.Equal(now) {
		t.Fatalf("expected ApprovedAt stamped with %v, got %v", now, b.ApprovedAt)
	}

	later := now.Add(2 * time.Hour)
	if err := ApplyTransition(b, StatusCompleted, later); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if b.CompletedAt == nil || !b.CompletedAt.Equal(later) {
		t.Fatalf("expected CompletedAt stamped with %v, got %v", later, b.CompletedAt)
	}
}

func TestApplyTransitionRejectsTerminal(t *testing.T) {
	now := time.Now()

	b := &Booking{Status: StatusCompleted}
	if err := ApplyTransition(b, StatusCancelled, now); err == nil {
		t.Fatalf("expected transition out of COMPLETED to fail")
	}

	b = &Booking{Status: StatusPending}
	if err := ApplyTransition(b, StatusCompleted, now); err == nil {
		t.Fatalf("expected PENDING -> COMPLETED shortcut to fail")
	}
}
