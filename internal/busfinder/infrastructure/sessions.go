package infrastructure

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mateusmacedo/go-busfinder/internal/busfinder/application"
	"github.com/mateusmacedo/go-busfinder/internal/busfinder/domain"
	pkgApp "github.com/mateusmacedo/go-busfinder/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-busfinder/pkg/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// DefaultSessionIdleTTL acompanha a expiração do histórico no Redis.
const DefaultSessionIdleTTL = historyTTL

// HistoryFactory cria o histórico de buscas de uma nova sessão.
type HistoryFactory func(sessionID string) domain.HistoryLog

func MemoryHistoryFactory() HistoryFactory {
	return func(string) domain.HistoryLog { return domain.NewMemoryHistory() }
}

func RedisHistoryFactory(client redis.UniversalClient) HistoryFactory {
	return func(sessionID string) domain.HistoryLog { return NewRedisHistory(client, sessionID) }
}

// sessionEntry usa um canal de capacidade 1 como lock para poder desistir
// quando o contexto da requisição acaba.
type sessionEntry struct {
	lock     chan struct{}
	session  *application.Session
	lastUsed time.Time
	closed   bool
}

func newSessionEntry(session *application.Session, now time.Time) *sessionEntry {
	return &sessionEntry{
		lock:     make(chan struct{}, 1),
		session:  session,
		lastUsed: now,
	}
}

func (e *sessionEntry) acquire(ctx context.Context) error {
	select {
	case e.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *sessionEntry) tryAcquire() bool {
	select {
	case e.lock <- struct{}{}:
		return true
	default:
		return false
	}
}

func (e *sessionEntry) release() { <-e.lock }

type RegistryOption func(*SessionRegistry)

// WithIdleTTL define quanto tempo uma sessão sem uso sobrevive. Zero desliga a expiração.
func WithIdleTTL(ttl time.Duration) RegistryOption {
	return func(r *SessionRegistry) { r.idleTTL = ttl }
}

func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *SessionRegistry) { r.now = now }
}

func WithRegistryLogger(logger pkgApp.AppLogger) RegistryOption {
	return func(r *SessionRegistry) { r.logger = logger }
}

// SessionRegistry guarda as sessões abertas pelo transporte HTTP e serializa
// as operações de cada uma.
type SessionRegistry struct {
	mu          sync.RWMutex
	sessions    map[string]*sessionEntry
	newHistory  HistoryFactory
	idGenerator pkgDomain.IDGenerator[string]
	idleTTL     time.Duration
	now         func() time.Time
	logger      pkgApp.AppLogger
}

func NewSessionRegistry(newHistory HistoryFactory, idGenerator pkgDomain.IDGenerator[string], opts ...RegistryOption) *SessionRegistry {
	if newHistory == nil {
		newHistory = MemoryHistoryFactory()
	}
	r := &SessionRegistry{
		sessions:    make(map[string]*sessionEntry),
		newHistory:  newHistory,
		idGenerator: idGenerator,
		idleTTL:     DefaultSessionIdleTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *SessionRegistry) Create() *application.Session {
	id := r.idGenerator()
	session := application.NewSession(id, r.newHistory(id))

	r.mu.Lock()
	r.sessions[id] = newSessionEntry(session, r.now())
	r.mu.Unlock()
	return session
}

// With roda fn com a sessão travada; duas requisições da mesma sessão nunca se
// sobrepõem. Se ctx acabar antes do lock ser obtido, devolve ctx.Err().
func (r *SessionRegistry) With(ctx context.Context, id string, fn func(*application.Session) error) error {
	r.mu.RLock()
	entry, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	if err := entry.acquire(ctx); err != nil {
		return err
	}
	defer entry.release()

	// removida enquanto esperava o lock
	if entry.closed {
		return ErrSessionNotFound
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	defer func() { entry.lastUsed = r.now() }()
	return fn(entry.session)
}

// Delete descarta a sessão e, se o histórico for externo, apaga-o também.
func (r *SessionRegistry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	if err := entry.acquire(ctx); err != nil {
		return err
	}
	entry.closed = true
	entry.release()

	return clearHistory(ctx, entry.session)
}

// EvictIdle remove as sessões sem uso há mais que o TTL. Sessões com uma
// operação em andamento ficam para a próxima varredura.
func (r *SessionRegistry) EvictIdle(ctx context.Context) int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)

	var evicted []*sessionEntry
	r.mu.Lock()
	for id, entry := range r.sessions {
		if !entry.tryAcquire() {
			continue
		}
		if entry.lastUsed.Before(cutoff) {
			entry.closed = true
			delete(r.sessions, id)
			evicted = append(evicted, entry)
		}
		entry.release()
	}
	r.mu.Unlock()

	for _, entry := range evicted {
		if err := clearHistory(ctx, entry.session); err != nil && r.logger != nil {
			pkgApp.LogWarn(ctx, r.logger, "failed to clear history of evicted session", map[string]interface{}{
				"session_id": entry.session.ID(),
				"error":      err.Error(),
			})
		}
	}
	if len(evicted) > 0 && r.logger != nil {
		pkgApp.LogInfo(ctx, r.logger, "idle sessions evicted", map[string]interface{}{"count": len(evicted)})
	}
	return len(evicted)
}

// RunEvictor varre as sessões ociosas a cada interval até ctx acabar.
func (r *SessionRegistry) RunEvictor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.EvictIdle(ctx)
		}
	}
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func clearHistory(ctx context.Context, s *application.Session) error {
	if c, ok := s.History().(interface{ Clear(context.Context) error }); ok {
		return c.Clear(ctx)
	}
	return nil
}
