package application

import (
	"context"

	"github.com/mateusmacedo/go-busfinder/internal/busfinder/domain"
	pkgApp "github.com/mateusmacedo/go-busfinder/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-busfinder/pkg/domain"
)

// BookingEventBus é o barramento dos eventos de reserva.
type BookingEventBus = pkgApp.EventBus[pkgDomain.Event[domain.Booking], domain.Booking]

type bookTripHandler struct {
	eventBus BookingEventBus
	store    domain.BookingStore
	logger   pkgApp.AppLogger
}

func (h *bookTripHandler) Handle(ctx context.Context, command pkgDomain.Command[BookTripData]) error {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "Contexto cancelado", ctx.Err(), nil)
		return ctx.Err()
	}

	booking := command.Payload().Booking
	if err := h.store.Append(ctx, booking); err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao salvar reserva", err, map[string]interface{}{"booking": booking})
		return err
	}

	// a reserva já está gravada; falha do broker não desfaz a escrita
	if err := h.eventBus.Publish(ctx, NewBookingCreatedEvent(booking)); err != nil {
		pkgApp.LogWarn(ctx, h.logger, "Reserva salva, mas o evento não foi publicado", map[string]interface{}{
			"booking_id": booking.ID,
			"error":      err.Error(),
		})
	}

	pkgApp.LogInfo(ctx, h.logger, "Reserva salva com sucesso", map[string]interface{}{"booking": booking})
	return nil
}

func NewBookTripHandler(eventBus BookingEventBus, store domain.BookingStore, logger pkgApp.AppLogger) pkgApp.CommandHandler[pkgDomain.Command[BookTripData], BookTripData] {
	return &bookTripHandler{
		eventBus: eventBus,
		store:    store,
		logger:   logger,
	}
}

type cancelBookingHandler struct {
	eventBus BookingEventBus
	store    domain.BookingStore
	logger   pkgApp.AppLogger
}

// Handle relê o store inteiro, acha a primeira reserva que casa com o alvo e a
// remove pela posição. Alvo ausente não é erro, igual ao DeleteAt fora do intervalo.
func (h *cancelBookingHandler) Handle(ctx context.Context, command pkgDomain.Command[CancelBookingData]) error {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "Contexto cancelado", ctx.Err(), nil)
		return ctx.Err()
	}

	target := command.Payload().Booking
	bookings, err := h.store.Load(ctx)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao carregar reservas", err, nil)
		return err
	}

	index := domain.IndexOf(bookings, target)
	if index < 0 {
		pkgApp.LogWarn(ctx, h.logger, "Reserva não encontrada para cancelamento", map[string]interface{}{"booking": target})
		return nil
	}
	removed := bookings[index]

	if err := h.store.DeleteAt(ctx, index); err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao remover reserva", err, map[string]interface{}{"index": index})
		return err
	}

	if err := h.eventBus.Publish(ctx, NewBookingCancelledEvent(removed)); err != nil {
		pkgApp.LogWarn(ctx, h.logger, "Reserva removida, mas o evento não foi publicado", map[string]interface{}{
			"booking_id": removed.ID,
			"error":      err.Error(),
		})
	}

	pkgApp.LogInfo(ctx, h.logger, "Reserva cancelada", map[string]interface{}{"booking": removed, "index": index})
	return nil
}

func NewCancelBookingHandler(eventBus BookingEventBus, store domain.BookingStore, logger pkgApp.AppLogger) pkgApp.CommandHandler[pkgDomain.Command[CancelBookingData], CancelBookingData] {
	return &cancelBookingHandler{
		eventBus: eventBus,
		store:    store,
		logger:   logger,
	}
}

type searchRoutesHandler struct {
	catalog *domain.Catalog
	logger  pkgApp.AppLogger
}

func (h *searchRoutesHandler) Handle(ctx context.Context, query pkgDomain.Query[SearchRoutesData]) ([]domain.Route, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	data := query.Payload()
	routes := h.catalog.Find(data.Origin, data.Destination)
	pkgApp.LogDebug(ctx, h.logger, "Rotas encontradas", map[string]interface{}{
		"from":    data.Origin,
		"to":      data.Destination,
		"matches": len(routes),
	})
	return routes, nil
}

func NewSearchRoutesHandler(catalog *domain.Catalog, logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[SearchRoutesData], SearchRoutesData, []domain.Route] {
	return &searchRoutesHandler{
		catalog: catalog,
		logger:  logger,
	}
}

type findOwnerBookingsHandler struct {
	store  domain.BookingStore
	logger pkgApp.AppLogger
}

func (h *findOwnerBookingsHandler) Handle(ctx context.Context, query pkgDomain.Query[FindOwnerBookingsData]) ([]domain.Booking, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	owner := query.Payload().Owner
	bookings, err := h.store.Load(ctx)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao carregar reservas", err, map[string]interface{}{"owner": owner})
		return nil, err
	}

	owned := domain.OwnedBy(bookings, owner)
	pkgApp.LogDebug(ctx, h.logger, "Reservas do usuário carregadas", map[string]interface{}{
		"owner": owner,
		"count": len(owned),
	})
	return owned, nil
}

func NewFindOwnerBookingsHandler(store domain.BookingStore, logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[FindOwnerBookingsData], FindOwnerBookingsData, []domain.Booking] {
	return &findOwnerBookingsHandler{
		store:  store,
		logger: logger,
	}
}

type bookingAuditHandler struct {
	logger pkgApp.AppLogger
}

func (h *bookingAuditHandler) Handle(ctx context.Context, event pkgDomain.Event[domain.Booking]) error {
	booking := event.Payload()
	pkgApp.LogInfo(ctx, h.logger, "Evento recebido", map[string]interface{}{
		"event":      event.EventName(),
		"booking_id": booking.ID,
		"owner":      booking.Owner,
	})
	return nil
}

// NewBookingAuditHandler registra em log cada evento de reserva.
func NewBookingAuditHandler(logger pkgApp.AppLogger) pkgApp.EventHandler[pkgDomain.Event[domain.Booking], domain.Booking] {
	return &bookingAuditHandler{logger: logger}
}
