package domain

import (
	"strings"
	"testing"
)

func TestUpcomingWindowIsInclusive(t *testing.T) {
	var bookings []Booking
	for _, d := range []string{"2024-05-31", "2024-06-01", "2024-06-03", "2024-06-05"} {
		bookings = append(bookings, Booking{Origin: "Mumbai", Destination: "Pune", Carrier: "Shivneri 404", TravelDate: MustDate(d)})
	}

	alerts := Upcoming(bookings, MustDate("2024-06-01"), 3)
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d: %v", len(alerts), alerts)
	}
	if !strings.Contains(alerts[0], "2024-06-01") || !strings.Contains(alerts[0], "(today)") {
		t.Errorf("first alert = %q", alerts[0])
	}
	if !strings.Contains(alerts[1], "2024-06-03") || !strings.Contains(alerts[1], "(in 2 days)") {
		t.Errorf("second alert = %q", alerts[1])
	}
}

func TestUpcomingIncludesLastDayOfWindow(t *testing.T) {
	bookings := []Booking{
		{TravelDate: MustDate("2024-06-04"), Carrier: "Rapid 202"},
		{TravelDate: MustDate("2024-06-02"), Carrier: "Express 101"},
	}

	alerts := Upcoming(bookings, MustDate("2024-06-01"), 3)
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %v", alerts)
	}
	if !strings.Contains(alerts[0], "Rapid 202") || !strings.Contains(alerts[1], "(tomorrow)") {
		t.Fatalf("order or wording wrong: %v", alerts)
	}
}

func TestUpcomingEmpty(t *testing.T) {
	if got := Upcoming(nil, MustDate("2024-06-01"), 3); got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
	if got := Upcoming([]Booking{{TravelDate: MustDate("2024-06-01")}}, MustDate("2024-06-01"), -1); len(got) != 0 {
		t.Fatalf("negative window should yield nothing, got %v", got)
	}
}
