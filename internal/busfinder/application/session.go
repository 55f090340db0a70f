package application

import (
	"github.com/mateusmacedo/go-busfinder/internal/busfinder/domain"
)

// Session é o contexto efêmero de uma interação: usuário logado, cópia das
// reservas dele e histórico de buscas. O cache só muda por operações do Engine.
type Session struct {
	id            string
	user          string
	authenticated bool
	bookings      []domain.Booking
	history       domain.HistoryLog
}

func NewSession(id string, history domain.HistoryLog) *Session {
	if history == nil {
		history = domain.NewMemoryHistory()
	}
	return &Session{id: id, history: history}
}

func (s *Session) ID() string { return s.id }

func (s *Session) CurrentUser() (string, bool) {
	return s.user, s.authenticated
}

// Bookings devolve uma cópia do cache; alterar o retorno não afeta a sessão.
func (s *Session) Bookings() []domain.Booking {
	return append([]domain.Booking{}, s.bookings...)
}

func (s *Session) History() domain.HistoryLog { return s.history }

// owner é o dono usado para gravar e filtrar: o usuário logado ou Guest.
func (s *Session) owner() string {
	if s.authenticated {
		return s.user
	}
	return domain.GuestOwner
}

func (s *Session) findBooking(id string) (domain.Booking, bool) {
	for _, b := range s.bookings {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Booking{}, false
}
