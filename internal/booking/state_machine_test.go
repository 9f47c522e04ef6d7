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
		{StatusConfirmed, StatusActive, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, false},
		{StatusActive, StatusCompleted, true},
		{StatusActive, StatusCancelled, true},
		{StatusActive, StatusConfirmed, false},
		{StatusCompleted, StatusActive, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusConfirmed, StatusConfirmed, true},
		{Status("unknown"), StatusActive, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestApplyTransitionTimestamps(t *testing.T) {
	now := time.Now()

	b := &Booking{Status: StatusConfirmed}
	if err := ApplyTransition(b, StatusActive, now); err != nil {
		t.Fatalf("confirmed -> active: %v", err)
	}
	if b.PickupAt == nil || !b.PickupAt.Equal(now) {
		t.Fatalf("PickupAt not set on activation")
	}

	if err := ApplyTransition(b, StatusCompleted, now); err != nil {
		t.Fatalf("active -> completed: %v", err)
	}
	if b.ReturnAt == nil {
		t.Fatalf("ReturnAt not set on completion")
	}

	if err := ApplyTransition(b, StatusActive, now); err == nil {
		t.Fatalf("completed -> active should be rejected")
	}
}

func TestApplyTransitionCancelled(t *testing.T) {
	now := time.Now()
	b := &Booking{Status: StatusActive}
	if err := ApplyTransition(b, StatusCancelled, now); err != nil {
		t.Fatalf("active -> cancelled: %v", err)
	}
	if b.CancelledAt == nil {
		t.Fatalf("CancelledAt not set")
	}
}
