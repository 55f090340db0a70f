package infrastructure

import (
	"context"
	"fmt"
	"sync"

	"github.com/mateusmacedo/go-busfinder/pkg/application"
	"github.com/mateusmacedo/go-busfinder/pkg/domain"
)

type simpleQueryBus[Q domain.Query[D], D any, R any] struct {
	handlers map[string]application.QueryHandler[Q, D, R]
	mu       sync.RWMutex
	logger   application.AppLogger
}

func NewSimpleQueryBus[Q domain.Query[D], D any, R any](logger application.AppLogger) application.QueryBus[Q, D, R] {
	return &simpleQueryBus[Q, D, R]{
		handlers: make(map[string]application.QueryHandler[Q, D, R]),
		logger:   logger,
	}
}

func (bus *simpleQueryBus[Q, D, R]) RegisterHandler(queryName string, handler application.QueryHandler[Q, D, R]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[queryName] = handler
}

func (bus *simpleQueryBus[Q, D, R]) Dispatch(ctx context.Context, query Q) (R, error) {
	bus.mu.RLock()
	handler, found := bus.handlers[query.QueryName()]
	bus.mu.RUnlock()

	var zero R
	if !found {
		err := fmt.Errorf("%w: %s", ErrNoHandler, query.QueryName())
		application.LogError(ctx, bus.logger, "error dispatching query", err, nil)
		return zero, err
	}

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	result, err := handler.Handle(ctx, query)
	if err != nil {
		return zero, err
	}

	application.LogDebug(ctx, bus.logger, "query handled", map[string]interface{}{
		"query_name": query.QueryName(),
	})
	return result, nil
}
