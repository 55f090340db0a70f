package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mateusmacedo/go-busfinder/internal/busfinder/domain"
	pkgApp "github.com/mateusmacedo/go-busfinder/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-busfinder/pkg/domain"
)

// Buses agrupa os barramentos que o Engine usa para falar com o store e o catálogo.
type Buses struct {
	Book          pkgApp.CommandBus[pkgDomain.Command[BookTripData], BookTripData]
	Cancel        pkgApp.CommandBus[pkgDomain.Command[CancelBookingData], CancelBookingData]
	Search        pkgApp.QueryBus[pkgDomain.Query[SearchRoutesData], SearchRoutesData, []domain.Route]
	OwnerBookings pkgApp.QueryBus[pkgDomain.Query[FindOwnerBookingsData], FindOwnerBookingsData, []domain.Booking]
}

// Engine executa as operações de uma sessão. Não guarda estado de sessão:
// tudo que é da sessão vive no *Session recebido em cada chamada.
type Engine struct {
	buses       Buses
	catalog     *domain.Catalog
	idGenerator pkgDomain.IDGenerator[string]
	now         func() time.Time
	alertWindow int
	logger      pkgApp.AppLogger
}

type EngineOption func(*Engine)

// WithClock troca o relógio usado para "hoje", alertas e rastreamento.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func WithAlertWindow(days int) EngineOption {
	return func(e *Engine) { e.alertWindow = days }
}

func NewEngine(buses Buses, catalog *domain.Catalog, idGenerator pkgDomain.IDGenerator[string], logger pkgApp.AppLogger, opts ...EngineOption) *Engine {
	e := &Engine{
		buses:       buses,
		catalog:     catalog,
		idGenerator: idGenerator,
		now:         time.Now,
		alertWindow: domain.DefaultAlertWindowDays,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Routes() []domain.Route {
	return e.catalog.List()
}

func (e *Engine) Catalog() *domain.Catalog { return e.catalog }

// Today é a data de calendário do relógio do Engine.
func (e *Engine) Today() domain.Date {
	return domain.DateOf(e.now())
}

// Login associa o usuário à sessão e carrega as reservas dele. Em caso de erro
// a sessão fica como estava.
func (e *Engine) Login(ctx context.Context, s *Session, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		pkgApp.LogWarn(ctx, e.logger, "Login rejeitado", map[string]interface{}{"session_id": s.id})
		return domain.ErrInvalidUsername
	}

	owned, err := e.ownerBookings(ctx, username)
	if err != nil {
		return err
	}

	s.user = username
	s.authenticated = true
	s.bookings = owned

	pkgApp.LogInfo(ctx, e.logger, "Usuário autenticado", map[string]interface{}{
		"session_id": s.id,
		"user":       username,
		"bookings":   len(owned),
	})
	return nil
}

// Logout limpa usuário e cache. O store não é tocado.
func (e *Engine) Logout(ctx context.Context, s *Session) {
	user := s.user
	s.user = ""
	s.authenticated = false
	s.bookings = nil

	pkgApp.LogInfo(ctx, e.logger, "Usuário desconectado", map[string]interface{}{
		"session_id": s.id,
		"user":       user,
	})
}

// Refresh recarrega o cache da sessão a partir do store.
func (e *Engine) Refresh(ctx context.Context, s *Session) error {
	owned, err := e.ownerBookings(ctx, s.owner())
	if err != nil {
		return err
	}
	s.bookings = owned
	return nil
}

// Search consulta o catálogo e grava a busca no histórico da sessão. Não altera o store.
func (e *Engine) Search(ctx context.Context, s *Session, origin, destination string, date domain.Date) ([]domain.Route, error) {
	routes, err := e.buses.Search.Dispatch(ctx, NewSearchRoutesQuery(SearchRoutesData{
		Origin:      origin,
		Destination: destination,
	}))
	if err != nil {
		pkgApp.LogError(ctx, e.logger, "Erro ao buscar rotas", err, map[string]interface{}{"session_id": s.id})
		return nil, err
	}

	event := domain.SearchEvent{
		Origin:      strings.TrimSpace(origin),
		Destination: strings.TrimSpace(destination),
		TravelDate:  date,
		Timestamp:   e.now(),
	}
	if err := s.history.Record(ctx, event); err != nil {
		pkgApp.LogError(ctx, e.logger, "Erro ao gravar histórico de busca", err, map[string]interface{}{"session_id": s.id})
		return nil, err
	}

	return routes, nil
}

// Book grava uma reserva da rota na data informada e recarrega o cache.
func (e *Engine) Book(ctx context.Context, s *Session, route domain.Route, date domain.Date) (domain.Booking, error) {
	if date.IsZero() {
		return domain.Booking{}, domain.ErrInvalidDate
	}
	if _, ok := e.catalog.Lookup(route.Origin, route.Destination, route.Carrier); !ok {
		return domain.Booking{}, fmt.Errorf("%w: %s → %s (%s)", domain.ErrRouteNotFound, route.Origin, route.Destination, route.Carrier)
	}

	booking := domain.NewBooking(e.idGenerator(), s.owner(), route, date)
	if err := e.buses.Book.Dispatch(ctx, NewBookTripCommand(BookTripData{Booking: booking})); err != nil {
		return domain.Booking{}, err
	}

	if err := e.Refresh(ctx, s); err != nil {
		return booking, fmt.Errorf("booking %s saved but session refresh failed: %w", booking.ID, err)
	}
	return booking, nil
}

// Cancel remove a reserva do store e recarrega o cache.
func (e *Engine) Cancel(ctx context.Context, s *Session, booking domain.Booking) error {
	if err := e.buses.Cancel.Dispatch(ctx, NewCancelBookingCommand(CancelBookingData{Booking: booking})); err != nil {
		return err
	}
	return e.Refresh(ctx, s)
}

// CancelByID cancela uma reserva que está no cache da sessão.
func (e *Engine) CancelByID(ctx context.Context, s *Session, id string) error {
	booking, ok := s.findBooking(id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrBookingNotFound, id)
	}
	return e.Cancel(ctx, s, booking)
}

// Alerts deriva os alertas de viagem próxima do cache da sessão.
func (e *Engine) Alerts(s *Session) []string {
	return domain.Upcoming(s.bookings, e.Today(), e.alertWindow)
}

// Track devolve o status simulado da viagem de uma reserva do cache.
func (e *Engine) Track(s *Session, id string) (domain.TripStatus, error) {
	booking, ok := s.findBooking(id)
	if !ok {
		return domain.TripStatus{}, fmt.Errorf("%w: %s", domain.ErrBookingNotFound, id)
	}

	route, ok := e.catalog.Lookup(booking.Origin, booking.Destination, booking.Carrier)
	if !ok {
		return domain.TripStatus{}, fmt.Errorf("%w: %s → %s (%s)", domain.ErrRouteNotFound, booking.Origin, booking.Destination, booking.Carrier)
	}
	return domain.Track(booking, route, e.now()), nil
}

// RecentSearches devolve as últimas buscas para exibição, da mais nova para a mais antiga.
func (e *Engine) RecentSearches(ctx context.Context, s *Session) ([]domain.SearchEvent, error) {
	return s.history.Recent(ctx, domain.HistoryDisplayLimit)
}

func (e *Engine) ownerBookings(ctx context.Context, owner string) ([]domain.Booking, error) {
	owned, err := e.buses.OwnerBookings.Dispatch(ctx, NewFindOwnerBookingsQuery(FindOwnerBookingsData{Owner: owner}))
	if err != nil {
		pkgApp.LogError(ctx, e.logger, "Erro ao carregar reservas do usuário", err, map[string]interface{}{"owner": owner})
		return nil, err
	}
	return owned, nil
}
