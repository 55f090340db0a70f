package application

import (
	"github.com/mateusmacedo/go-busfinder/internal/busfinder/domain"
	pkgDomain "github.com/mateusmacedo/go-busfinder/pkg/domain"
)

const (
	BookingCreatedEventName   = "BookingCreated"
	BookingCancelledEventName = "BookingCancelled"
)

type bookingEvent struct {
	name string
	data domain.Booking
}

func (e bookingEvent) EventName() string { return e.name }

func (e bookingEvent) Payload() domain.Booking { return e.data }

// NewBookingCreatedEvent cria o evento emitido depois que a reserva foi gravada.
func NewBookingCreatedEvent(booking domain.Booking) pkgDomain.Event[domain.Booking] {
	return bookingEvent{name: BookingCreatedEventName, data: booking}
}

// NewBookingCancelledEvent carrega o registro exatamente como estava no store.
func NewBookingCancelledEvent(booking domain.Booking) pkgDomain.Event[domain.Booking] {
	return bookingEvent{name: BookingCancelledEventName, data: booking}
}
