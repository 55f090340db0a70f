package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/go-busfinder/internal/busfinder/application"
	"github.com/mateusmacedo/go-busfinder/internal/busfinder/domain"
	pkgApp "github.com/mateusmacedo/go-busfinder/pkg/application"
)

const requestTimeout = 10 * time.Second

type BusFinderHTTPHandler struct {
	engine   *application.Engine
	sessions *SessionRegistry
	logger   pkgApp.AppLogger
}

func NewBusFinderHTTPHandler(engine *application.Engine, sessions *SessionRegistry, logger pkgApp.AppLogger) *BusFinderHTTPHandler {
	return &BusFinderHTTPHandler{
		engine:   engine,
		sessions: sessions,
		logger:   logger,
	}
}

type sessionResponse struct {
	SessionID     string `json:"session_id"`
	User          string `json:"user,omitempty"`
	Authenticated bool   `json:"authenticated"`
	Bookings      int    `json:"bookings"`
}

type loginRequest struct {
	Username string `json:"username"`
}

type searchRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Date string `json:"date"`
}

type searchResponse struct {
	Routes  []domain.Route `json:"routes"`
	Message string         `json:"message"`
}

type bookRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Bus  string `json:"bus"`
	Date string `json:"date"`
}

type bookingsResponse struct {
	Bookings []domain.Booking `json:"bookings"`
}

type alertsResponse struct {
	Alerts []string `json:"alerts"`
}

type historyResponse struct {
	Searches []domain.SearchEvent `json:"searches"`
}

// badRequestError marca erros de entrada do cliente.
type badRequestError struct{ err error }

func (e badRequestError) Error() string { return e.err.Error() }

func (e badRequestError) Unwrap() error { return e.err }

func (h *BusFinderHTTPHandler) HandleListRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"routes": h.engine.Routes()})
}

func (h *BusFinderHTTPHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Create()
	pkgApp.LogInfo(r.Context(), h.logger, "session created", map[string]interface{}{"session_id": session.ID()})
	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (h *BusFinderHTTPHandler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.sessions.Delete(ctx, chi.URLParam(r, "sessionID")); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BusFinderHTTPHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.withSession(w, r, func(ctx context.Context, s *application.Session) (int, interface{}, error) {
		if err := h.engine.Login(ctx, s, req.Username); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, toSessionResponse(s), nil
	})
}

func (h *BusFinderHTTPHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctx context.Context, s *application.Session) (int, interface{}, error) {
		h.engine.Logout(ctx, s)
		return http.StatusOK, toSessionResponse(s), nil
	})
}

func (h *BusFinderHTTPHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.withSession(w, r, func(ctx context.Context, s *application.Session) (int, interface{}, error) {
		date, err := parseOptionalDate(req.Date)
		if err != nil {
			return 0, nil, err
		}
		routes, err := h.engine.Search(ctx, s, req.From, req.To, date)
		if err != nil {
			return 0, nil, err
		}

		message := "No buses found for that route."
		if len(routes) > 0 {
			message = fmt.Sprintf("%d route(s) found", len(routes))
		}
		return http.StatusOK, searchResponse{Routes: routes, Message: message}, nil
	})
}

func (h *BusFinderHTTPHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctx context.Context, s *application.Session) (int, interface{}, error) {
		searches, err := h.engine.RecentSearches(ctx, s)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, historyResponse{Searches: searches}, nil
	})
}

func (h *BusFinderHTTPHandler) HandleListBookings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	h.withSession(w, r, func(ctx context.Context, s *application.Session) (int, interface{}, error) {
		start, err := parseOptionalDate(query.Get("start"))
		if err != nil {
			return 0, nil, err
		}
		end, err := parseOptionalDate(query.Get("end"))
		if err != nil {
			return 0, nil, err
		}
		key, err := application.ParseSortKey(query.Get("sort"))
		if err != nil {
			return 0, nil, badRequestError{err}
		}

		bookings := application.Sort(application.Filter(s.Bookings(), start, end), key)
		return http.StatusOK, bookingsResponse{Bookings: bookings}, nil
	})
}

func (h *BusFinderHTTPHandler) HandleBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.withSession(w, r, func(ctx context.Context, s *application.Session) (int, interface{}, error) {
		date, err := domain.ParseDate(req.Date)
		if err != nil {
			return 0, nil, badRequestError{err}
		}
		route, ok := h.engine.Catalog().Lookup(req.From, req.To, req.Bus)
		if !ok {
			return 0, nil, fmt.Errorf("%w: %s → %s (%s)", domain.ErrRouteNotFound, req.From, req.To, req.Bus)
		}

		booking, err := h.engine.Book(ctx, s, route, date)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusCreated, booking, nil
	})
}

func (h *BusFinderHTTPHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingID")

	h.withSession(w, r, func(ctx context.Context, s *application.Session) (int, interface{}, error) {
		if err := h.engine.CancelByID(ctx, s, bookingID); err != nil {
			return 0, nil, err
		}
		return http.StatusOK, bookingsResponse{Bookings: s.Bookings()}, nil
	})
}

func (h *BusFinderHTTPHandler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingID")

	h.withSession(w, r, func(ctx context.Context, s *application.Session) (int, interface{}, error) {
		status, err := h.engine.Track(s, bookingID)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, status, nil
	})
}

func (h *BusFinderHTTPHandler) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctx context.Context, s *application.Session) (int, interface{}, error) {
		return http.StatusOK, alertsResponse{Alerts: h.engine.Alerts(s)}, nil
	})
}

func (h *BusFinderHTTPHandler) RegisterRoutes(router chi.Router) {
	router.Get("/routes", h.HandleListRoutes)
	router.Post("/sessions", h.HandleCreateSession)
	router.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Delete("/", h.HandleDeleteSession)
		r.Post("/login", h.HandleLogin)
		r.Post("/logout", h.HandleLogout)
		r.Post("/search", h.HandleSearch)
		r.Get("/history", h.HandleHistory)
		r.Get("/alerts", h.HandleAlerts)
		r.Get("/bookings", h.HandleListBookings)
		r.Post("/bookings", h.HandleBook)
		r.Delete("/bookings/{bookingID}", h.HandleCancel)
		r.Get("/bookings/{bookingID}/track", h.HandleTrack)
	})
}

type sessionFunc func(ctx context.Context, s *application.Session) (int, interface{}, error)

func (h *BusFinderHTTPHandler) withSession(w http.ResponseWriter, r *http.Request, fn sessionFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var (
		status int
		body   interface{}
	)
	err := h.sessions.With(ctx, chi.URLParam(r, "sessionID"), func(s *application.Session) error {
		var err error
		status, body, err = fn(ctx, s)
		return err
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, status, body)
}

func (h *BusFinderHTTPHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.handleError(w, r, badRequestError{fmt.Errorf("invalid request: %w", err)})
		return false
	}
	return true
}

func (h *BusFinderHTTPHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		pkgApp.LogError(r.Context(), h.logger, "request failed", err, map[string]interface{}{
			"path": r.URL.Path,
		})
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	var badRequest badRequestError
	var corrupt *domain.CorruptStoreError

	switch {
	case errors.As(err, &badRequest),
		errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, application.ErrInvalidSortKey):
		return http.StatusBadRequest
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrRouteNotFound):
		return http.StatusNotFound
	case errors.As(err, &corrupt):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func parseOptionalDate(s string) (domain.Date, error) {
	if s == "" {
		return domain.Date{}, nil
	}
	date, err := domain.ParseDate(s)
	if err != nil {
		return domain.Date{}, badRequestError{err}
	}
	return date, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func toSessionResponse(s *application.Session) sessionResponse {
	user, ok := s.CurrentUser()
	return sessionResponse{
		SessionID:     s.ID(),
		User:          user,
		Authenticated: ok,
		Bookings:      len(s.Bookings()),
	}
}
