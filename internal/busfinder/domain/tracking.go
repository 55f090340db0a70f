package domain

import (
	"fmt"
	"time"
)

type TripPhase string

const (
	PhaseScheduled TripPhase = "scheduled"
	PhaseBoarding  TripPhase = "boarding"
	PhaseEnRoute   TripPhase = "en_route"
	PhaseArrived   TripPhase = "arrived"
)

type TripStatus struct {
	BookingID string    `json:"booking_id"`
	Phase     TripPhase `json:"phase"`
	Departure time.Time `json:"departure"`
	Arrival   time.Time `json:"arrival"`
	Message   string    `json:"message"`
}

// Track simula o rastreamento do ônibus a partir dos horários da rota.
// now é lido pelo relógio de parede, sem conversão de fuso. Chegada no mesmo
// horário ou antes da partida significa chegada no dia seguinte.
func Track(b Booking, r Route, now time.Time) TripStatus {
	departure := b.TravelDate.At(r.Departure)
	arrival := b.TravelDate.At(r.Arrival)
	if r.Arrival.Minutes() <= r.Departure.Minutes() {
		arrival = arrival.AddDate(0, 0, 1)
	}

	wall := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second(), 0, time.UTC)
	status := TripStatus{BookingID: b.ID, Departure: departure, Arrival: arrival}

	switch {
	case wall.Before(b.TravelDate.At(Clock{})):
		status.Phase = PhaseScheduled
		status.Message = fmt.Sprintf("Your bus %s departs on %s at %s.", b.Carrier, b.TravelDate, r.Departure)
	case wall.Before(departure):
		status.Phase = PhaseBoarding
		status.Message = fmt.Sprintf("Your bus %s departs today at %s from %s.", b.Carrier, r.Departure, b.Origin)
	case wall.Before(arrival):
		status.Phase = PhaseEnRoute
		status.Message = fmt.Sprintf("Your bus is currently en route and will arrive in %s on time at %s.", b.Destination, r.Arrival)
	default:
		status.Phase = PhaseArrived
		status.Message = fmt.Sprintf("Your bus arrived in %s at %s.", b.Destination, r.Arrival)
	}
	return status
}
