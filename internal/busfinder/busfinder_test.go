package busfinder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap/zaptest"

	"github.com/mateusmacedo/go-busfinder/internal/busfinder/application"
	"github.com/mateusmacedo/go-busfinder/internal/busfinder/domain"
	"github.com/mateusmacedo/go-busfinder/internal/busfinder/infrastructure"
	pkgDomain "github.com/mateusmacedo/go-busfinder/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-busfinder/pkg/infrastructure"
	zapAdapter "github.com/mateusmacedo/go-busfinder/pkg/infrastructure/zaplogger/adapter"
)

type testServer struct {
	*httptest.Server
	store *infrastructure.JSONFileStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zapAdapter.NewZapAppLoggerFrom(zaptest.NewLogger(t))
	store := infrastructure.NewJSONFileStore(filepath.Join(t.TempDir(), "bookings.json"), logger)
	eventBus := pkgInfra.NewSimpleEventBus[pkgDomain.Event[domain.Booking], domain.Booking](logger)

	var mu sync.Mutex
	n := 0
	ids := func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
	now := func() time.Time { return time.Date(2024, 6, 30, 8, 0, 0, 0, time.UTC) }

	sessions := infrastructure.NewSessionRegistry(infrastructure.MemoryHistoryFactory(), ids)
	slice := NewBusFinderSlice(domain.DefaultCatalog(), store, eventBus, sessions, ids, logger,
		application.WithClock(now))

	router := chi.NewRouter()
	slice.RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testServer{Server: server, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, out interface{}) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

type sessionBody struct {
	SessionID     string `json:"session_id"`
	User          string `json:"user"`
	Authenticated bool   `json:"authenticated"`
	Bookings      int    `json:"bookings"`
}

func (s *testServer) newSession(t *testing.T) string {
	t.Helper()
	var session sessionBody
	if status := s.do(t, http.MethodPost, "/sessions", nil, &session); status != http.StatusCreated {
		t.Fatalf("create session status %d", status)
	}
	return session.SessionID
}

func TestListRoutes(t *testing.T) {
	server := newTestServer(t)

	var body struct {
		Routes []domain.Route `json:"routes"`
	}
	if status := server.do(t, http.MethodGet, "/routes", nil, &body); status != http.StatusOK {
		t.Fatalf("status %d", status)
	}
	if len(body.Routes) != len(domain.DefaultCatalog().List()) {
		t.Fatalf("expected full catalog, got %d routes", len(body.Routes))
	}
}

func TestLoginAndLogout(t *testing.T) {
	server := newTestServer(t)
	id := server.newSession(t)

	var errBody map[string]string
	if status := server.do(t, http.MethodPost, "/sessions/"+id+"/login", map[string]string{"username": "   "}, &errBody); status != http.StatusBadRequest {
		t.Fatalf("blank login status %d", status)
	}

	var session sessionBody
	if status := server.do(t, http.MethodPost, "/sessions/"+id+"/login", map[string]string{"username": " alice "}, &session); status != http.StatusOK {
		t.Fatalf("login status %d", status)
	}
	if !session.Authenticated || session.User != "alice" {
		t.Fatalf("unexpected session: %+v", session)
	}

	var loggedOut sessionBody
	if status := server.do(t, http.MethodPost, "/sessions/"+id+"/logout", nil, &loggedOut); status != http.StatusOK {
		t.Fatalf("logout status %d", status)
	}
	if loggedOut.SessionID != id || loggedOut.Authenticated || loggedOut.User != "" {
		t.Fatalf("expected logged out session, got %+v", loggedOut)
	}
}

func TestUnknownSession(t *testing.T) {
	server := newTestServer(t)

	var errBody map[string]string
	if status := server.do(t, http.MethodGet, "/sessions/nope/bookings", nil, &errBody); status != http.StatusNotFound {
		t.Fatalf("status %d", status)
	}
	if errBody["error"] == "" {
		t.Fatal("expected error message")
	}
}

func TestSearchAndHistory(t *testing.T) {
	server := newTestServer(t)
	id := server.newSession(t)

	var found struct {
		Routes  []domain.Route `json:"routes"`
		Message string         `json:"message"`
	}
	if status := server.do(t, http.MethodPost, "/sessions/"+id+"/search",
		map[string]string{"from": "mumbai", "to": "PUNE", "date": "2024-07-01"}, &found); status != http.StatusOK {
		t.Fatalf("search status %d", status)
	}
	if len(found.Routes) != 2 || found.Message != "2 route(s) found" {
		t.Fatalf("unexpected search result: %+v", found)
	}

	if status := server.do(t, http.MethodPost, "/sessions/"+id+"/search",
		map[string]string{"from": "Atlantis", "to": "Pune"}, &found); status != http.StatusOK {
		t.Fatalf("search status %d", status)
	}
	if len(found.Routes) != 0 || found.Message != "No buses found for that route." {
		t.Fatalf("unexpected empty search result: %+v", found)
	}

	var history struct {
		Searches []domain.SearchEvent `json:"searches"`
	}
	if status := server.do(t, http.MethodGet, "/sessions/"+id+"/history", nil, &history); status != http.StatusOK {
		t.Fatalf("history status %d", status)
	}
	if len(history.Searches) != 2 || history.Searches[0].Origin != "Atlantis" || history.Searches[1].Origin != "mumbai" {
		t.Fatalf("expected newest-first history, got %+v", history.Searches)
	}

	var errBody map[string]string
	if status := server.do(t, http.MethodPost, "/sessions/"+id+"/search",
		map[string]string{"from": "Mumbai", "to": "Pune", "date": "01/07/2024"}, &errBody); status != http.StatusBadRequest {
		t.Fatalf("bad date status %d", status)
	}
}

func TestBookingLifecycle(t *testing.T) {
	server := newTestServer(t)
	id := server.newSession(t)
	base := "/sessions/" + id

	var session sessionBody
	server.do(t, http.MethodPost, base+"/login", map[string]string{"username": "alice"}, &session)

	var booking domain.Booking
	if status := server.do(t, http.MethodPost, base+"/bookings",
		map[string]string{"from": "Mumbai", "to": "Pune", "bus": "Shivneri 404", "date": "2024-07-01"}, &booking); status != http.StatusCreated {
		t.Fatalf("book status %d", status)
	}
	if booking.ID == "" || booking.Owner != "alice" || booking.TravelDate.String() != "2024-07-01" {
		t.Fatalf("unexpected booking: %+v", booking)
	}

	var errBody map[string]string
	if status := server.do(t, http.MethodPost, base+"/bookings",
		map[string]string{"from": "Mumbai", "to": "Pune", "bus": "Hyperloop", "date": "2024-07-01"}, &errBody); status != http.StatusNotFound {
		t.Fatalf("unknown route status %d", status)
	}
	if status := server.do(t, http.MethodPost, base+"/bookings",
		map[string]string{"from": "Mumbai", "to": "Pune", "bus": "Shivneri 404", "date": ""}, &errBody); status != http.StatusBadRequest {
		t.Fatalf("missing date status %d", status)
	}

	var list struct {
		Bookings []domain.Booking `json:"bookings"`
	}
	if status := server.do(t, http.MethodGet, base+"/bookings?sort=date_desc&start=2024-07-01", nil, &list); status != http.StatusOK {
		t.Fatalf("list status %d", status)
	}
	if len(list.Bookings) != 1 || list.Bookings[0].ID != booking.ID {
		t.Fatalf("unexpected list: %+v", list.Bookings)
	}
	if status := server.do(t, http.MethodGet, base+"/bookings?sort=price", nil, &errBody); status != http.StatusBadRequest {
		t.Fatalf("bad sort status %d", status)
	}

	var alerts struct {
		Alerts []string `json:"alerts"`
	}
	server.do(t, http.MethodGet, base+"/alerts", nil, &alerts)
	want := "Upcoming trip: Mumbai → Pune on 2024-07-01 with Shivneri 404 (tomorrow)"
	if len(alerts.Alerts) != 1 || alerts.Alerts[0] != want {
		t.Fatalf("unexpected alerts: %q", alerts.Alerts)
	}

	var status domain.TripStatus
	if code := server.do(t, http.MethodGet, base+"/bookings/"+booking.ID+"/track", nil, &status); code != http.StatusOK {
		t.Fatalf("track status %d", code)
	}
	if status.Phase != domain.PhaseScheduled || !strings.Contains(status.Message, "Shivneri 404") {
		t.Fatalf("unexpected trip status: %+v", status)
	}

	if code := server.do(t, http.MethodDelete, base+"/bookings/"+booking.ID, nil, &list); code != http.StatusOK {
		t.Fatalf("cancel status %d", code)
	}
	if len(list.Bookings) != 0 {
		t.Fatalf("expected empty cache after cancel, got %+v", list.Bookings)
	}
	if code := server.do(t, http.MethodDelete, base+"/bookings/"+booking.ID, nil, &errBody); code != http.StatusNotFound {
		t.Fatalf("second cancel status %d", code)
	}

	stored, err := server.store.Load(context.Background())
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("expected empty store, got %+v", stored)
	}
}

func TestDeleteSession(t *testing.T) {
	server := newTestServer(t)
	id := server.newSession(t)

	if status := server.do(t, http.MethodDelete, "/sessions/"+id, nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete status %d", status)
	}
	var errBody map[string]string
	if status := server.do(t, http.MethodPost, "/sessions/"+id+"/logout", nil, &errBody); status != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
}
