package domain

import (
	"context"
	"time"
)

// HistoryDisplayLimit é quantas buscas a interface mostra.
const HistoryDisplayLimit = 10

type SearchEvent struct {
	Origin      string    `json:"from"`
	Destination string    `json:"to"`
	TravelDate  Date      `json:"date"`
	Timestamp   time.Time `json:"timestamp"`
}

// HistoryLog é o log de buscas de uma sessão. Cresce sem limite; só a leitura corta.
type HistoryLog interface {
	Record(ctx context.Context, event SearchEvent) error
	Recent(ctx context.Context, n int) ([]SearchEvent, error)
}

// MemoryHistory guarda o histórico no próprio processo.
type MemoryHistory struct {
	events []SearchEvent
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

func (h *MemoryHistory) Record(_ context.Context, event SearchEvent) error {
	h.events = append(h.events, event)
	return nil
}

func (h *MemoryHistory) Recent(_ context.Context, n int) ([]SearchEvent, error) {
	return NewestFirst(h.events, n), nil
}

// Len devolve o total gravado, sem o corte de exibição.
func (h *MemoryHistory) Len() int { return len(h.events) }

// NewestFirst pega os últimos n eventos em ordem cronológica inversa.
func NewestFirst(events []SearchEvent, n int) []SearchEvent {
	if n <= 0 || len(events) == 0 {
		return []SearchEvent{}
	}
	if n > len(events) {
		n = len(events)
	}

	recent := make([]SearchEvent, 0, n)
	for i := len(events) - 1; i >= len(events)-n; i-- {
		recent = append(recent, events[i])
	}
	return recent
}
