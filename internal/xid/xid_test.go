package xid

import (
	"strings"
	"testing"
	"time"
)

func TestBillFormat(t *testing.T) {
	at := time.Date(2026, 8, 30, 19, 45, 0, 0, time.UTC)
	id := Bill(at)

	if !strings.HasPrefix(id, "BILL-") {
		t.Fatalf("expected BILL- prefix, got %q", id)
	}
	parts := strings.Split(id, "-")
	if len(parts) != 3 {
		t.Fatalf("expected three segments, got %q", id)
	}
	if len(parts[1]) != 8 {
		t.Fatalf("expected 8 time digits, got %q", parts[1])
	}
	if len(parts[2]) != 4 {
		t.Fatalf("expected 4 char suffix, got %q", parts[2])
	}
}

func TestReservationFormat(t *testing.T) {
	id := Reservation(time.Now())
	if !strings.HasPrefix(id, "RES") || len(id) != 16 {
		t.Fatalf("unexpected reservation id %q", id)
	}
	digits, suffix, ok := strings.Cut(strings.TrimPrefix(id, "RES"), "-")
	if !ok || len(digits) != 8 || len(suffix) != 4 {
		t.Fatalf("unexpected reservation id shape %q", id)
	}
}

func TestReservationIDsDifferWithinSameMillisecond(t *testing.T) {
	at := time.Date(2026, 8, 30, 19, 45, 0, 0, time.UTC)
	seen := make(map[string]struct{})
	for i := 0; i < 32; i++ {
		seen[Reservation(at)] = struct{}{}
	}
	if len(seen) < 2 {
		t.Fatalf("expected distinct ids for the same millisecond, got %d unique of 32", len(seen))
	}
}
