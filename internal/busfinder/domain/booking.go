package domain

import "context"

// GuestOwner é o dono das reservas feitas sem login.
const GuestOwner = "Guest"

// Booking é uma reserva persistida. Depois de gravada só pode ser removida.
type Booking struct {
	ID          string `json:"id,omitempty"`
	Owner       string `json:"user"`
	Origin      string `json:"from"`
	Destination string `json:"to"`
	TravelDate  Date   `json:"date"`
	Carrier     string `json:"bus"`
}

func NewBooking(id, owner string, route Route, date Date) Booking {
	if owner == "" {
		owner = GuestOwner
	}
	return Booking{
		ID:          id,
		Owner:       owner,
		Origin:      route.Origin,
		Destination: route.Destination,
		TravelDate:  date,
		Carrier:     route.Carrier,
	}
}

// SameTrip compara os campos da reserva ignorando o ID.
func (b Booking) SameTrip(other Booking) bool {
	return b.Owner == other.Owner &&
		b.Origin == other.Origin &&
		b.Destination == other.Destination &&
		b.TravelDate.Equal(other.TravelDate) &&
		b.Carrier == other.Carrier
}

// Matches identifica target pelo ID quando ele existe; registros antigos sem ID
// caem na comparação estrutural.
func (b Booking) Matches(target Booking) bool {
	if target.ID != "" {
		return b.ID == target.ID
	}
	return b.SameTrip(target)
}

// IndexOf devolve a posição do primeiro registro que casa com target, ou -1.
func IndexOf(bookings []Booking, target Booking) int {
	for i, b := range bookings {
		if b.Matches(target) {
			return i
		}
	}
	return -1
}

func OwnedBy(bookings []Booking, owner string) []Booking {
	owned := make([]Booking, 0)
	for _, b := range bookings {
		if b.Owner == owner {
			owned = append(owned, b)
		}
	}
	return owned
}

// BookingStore guarda a coleção completa de reservas de todos os usuários.
// Não há primitiva de atualização: edição é remoção seguida de inclusão.
type BookingStore interface {
	Load(ctx context.Context) ([]Booking, error)
	Append(ctx context.Context, booking Booking) error
	// DeleteAt remove a posição index; fora do intervalo não faz nada.
	DeleteAt(ctx context.Context, index int) error
}
