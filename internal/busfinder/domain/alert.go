package domain

import "fmt"

// DefaultAlertWindowDays é a janela padrão de alertas de viagem próxima.
const DefaultAlertWindowDays = 3

// Upcoming gera um alerta para cada reserva com data em [today, today+windowDays],
// na ordem em que as reservas chegaram.
func Upcoming(bookings []Booking, today Date, windowDays int) []string {
	alerts := make([]string, 0)
	if windowDays < 0 {
		return alerts
	}

	last := today.AddDays(windowDays)
	for _, b := range bookings {
		if b.TravelDate.Before(today) || b.TravelDate.After(last) {
			continue
		}
		alerts = append(alerts, fmt.Sprintf("Upcoming trip: %s → %s on %s with %s (%s)",
			b.Origin, b.Destination, b.TravelDate, b.Carrier, relativeDays(today.DaysUntil(b.TravelDate))))
	}
	return alerts
}

func relativeDays(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}
