package application

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mateusmacedo/go-busfinder/internal/busfinder/domain"
)

type SortKey string

const (
	SortDateAsc    SortKey = "date_asc"
	SortDateDesc   SortKey = "date_desc"
	SortCarrierAsc SortKey = "carrier_asc"
)

var ErrInvalidSortKey = errors.New("invalid sort key")

// ParseSortKey aceita vazio como date_asc.
func ParseSortKey(s string) (SortKey, error) {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(s))); key {
	case "":
		return SortDateAsc, nil
	case SortDateAsc, SortDateDesc, SortCarrierAsc:
		return key, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSortKey, s)
	}
}

// Filter devolve as reservas com start <= data <= end, mantendo a ordem.
// Data zero em start ou end deixa aquele lado aberto.
func Filter(bookings []domain.Booking, start, end domain.Date) []domain.Booking {
	filtered := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if !start.IsZero() && b.TravelDate.Before(start) {
			continue
		}
		if !end.IsZero() && b.TravelDate.After(end) {
			continue
		}
		filtered = append(filtered, b)
	}
	return filtered
}

// Sort é estável e trabalha numa cópia.
func Sort(bookings []domain.Booking, key SortKey) []domain.Booking {
	sorted := append([]domain.Booking{}, bookings...)

	switch key {
	case SortDateDesc:
		slices.SortStableFunc(sorted, func(a, b domain.Booking) int {
			return b.TravelDate.Compare(a.TravelDate)
		})
	case SortCarrierAsc:
		slices.SortStableFunc(sorted, func(a, b domain.Booking) int {
			return strings.Compare(a.Carrier, b.Carrier)
		})
	default:
		slices.SortStableFunc(sorted, func(a, b domain.Booking) int {
			return a.TravelDate.Compare(b.TravelDate)
		})
	}
	return sorted
}
