package busfinder

import (
	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/go-busfinder/internal/busfinder/application"
	"github.com/mateusmacedo/go-busfinder/internal/busfinder/domain"
	"github.com/mateusmacedo/go-busfinder/internal/busfinder/infrastructure"
	pkgApp "github.com/mateusmacedo/go-busfinder/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-busfinder/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-busfinder/pkg/infrastructure"
)

type BusFinderSlice struct {
	engine      *application.Engine
	sessions    *infrastructure.SessionRegistry
	httpHandler *infrastructure.BusFinderHTTPHandler
}

// NewBusFinderSlice registra os handlers nos barramentos em processo e monta o
// Engine e o transporte HTTP. O barramento de eventos e o registro de sessões
// vêm de fora: o broker e o histórico dependem da configuração.
func NewBusFinderSlice(
	catalog *domain.Catalog,
	store domain.BookingStore,
	eventBus application.BookingEventBus,
	sessions *infrastructure.SessionRegistry,
	idGenerator pkgDomain.IDGenerator[string],
	logger pkgApp.AppLogger,
	opts ...application.EngineOption,
) *BusFinderSlice {
	buses := application.Buses{
		Book:          pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.BookTripData], application.BookTripData](logger),
		Cancel:        pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.CancelBookingData], application.CancelBookingData](logger),
		Search:        pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.SearchRoutesData], application.SearchRoutesData, []domain.Route](logger),
		OwnerBookings: pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.FindOwnerBookingsData], application.FindOwnerBookingsData, []domain.Booking](logger),
	}

	buses.Book.RegisterHandler(application.BookTripCommandName, application.NewBookTripHandler(eventBus, store, logger))
	buses.Cancel.RegisterHandler(application.CancelBookingCommandName, application.NewCancelBookingHandler(eventBus, store, logger))
	buses.Search.RegisterHandler(application.SearchRoutesQueryName, application.NewSearchRoutesHandler(catalog, logger))
	buses.OwnerBookings.RegisterHandler(application.FindOwnerBookingsQueryName, application.NewFindOwnerBookingsHandler(store, logger))

	audit := application.NewBookingAuditHandler(logger)
	eventBus.RegisterHandler(application.BookingCreatedEventName, audit)
	eventBus.RegisterHandler(application.BookingCancelledEventName, audit)

	engine := application.NewEngine(buses, catalog, idGenerator, logger, opts...)

	return &BusFinderSlice{
		engine:      engine,
		sessions:    sessions,
		httpHandler: infrastructure.NewBusFinderHTTPHandler(engine, sessions, logger),
	}
}

func (s *BusFinderSlice) Engine() *application.Engine { return s.engine }

func (s *BusFinderSlice) Sessions() *infrastructure.SessionRegistry { return s.sessions }

func (s *BusFinderSlice) RegisterRoutes(router chi.Router) {
	s.httpHandler.RegisterRoutes(router)
}
