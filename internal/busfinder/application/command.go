package application

import (
	"github.com/mateusmacedo/go-busfinder/internal/busfinder/domain"
	pkgDomain "github.com/mateusmacedo/go-busfinder/pkg/domain"
)

const (
	BookTripCommandName      = "BookTrip"
	CancelBookingCommandName = "CancelBooking"
)

// BookTripData carrega a reserva já montada (com ID e dono) para ser gravada.
type BookTripData struct {
	Booking domain.Booking `json:"booking"`
}

type bookTripCommand struct {
	data BookTripData
}

func (c bookTripCommand) CommandName() string { return BookTripCommandName }

func (c bookTripCommand) Payload() BookTripData { return c.data }

func NewBookTripCommand(data BookTripData) pkgDomain.Command[BookTripData] {
	return bookTripCommand{data: data}
}

// CancelBookingData identifica a reserva a remover, pelo ID ou pelos campos se ela não tiver ID.
type CancelBookingData struct {
	Booking domain.Booking `json:"booking"`
}

type cancelBookingCommand struct {
	data CancelBookingData
}

func (c cancelBookingCommand) CommandName() string { return CancelBookingCommandName }

func (c cancelBookingCommand) Payload() CancelBookingData { return c.data }

func NewCancelBookingCommand(data CancelBookingData) pkgDomain.Command[CancelBookingData] {
	return cancelBookingCommand{data: data}
}
