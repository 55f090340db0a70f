package application

import (
	pkgDomain "github.com/mateusmacedo/go-busfinder/pkg/domain"
)

const (
	SearchRoutesQueryName      = "SearchRoutes"
	FindOwnerBookingsQueryName = "FindOwnerBookings"
)

type SearchRoutesData struct {
	Origin      string `json:"from"`
	Destination string `json:"to"`
}

type searchRoutesQuery struct {
	data SearchRoutesData
}

func (q searchRoutesQuery) QueryName() string { return SearchRoutesQueryName }

func (q searchRoutesQuery) Payload() SearchRoutesData { return q.data }

func NewSearchRoutesQuery(data SearchRoutesData) pkgDomain.Query[SearchRoutesData] {
	return searchRoutesQuery{data: data}
}

type FindOwnerBookingsData struct {
	Owner string `json:"owner"`
}

type findOwnerBookingsQuery struct {
	data FindOwnerBookingsData
}

func (q findOwnerBookingsQuery) QueryName() string { return FindOwnerBookingsQueryName }

func (q findOwnerBookingsQuery) Payload() FindOwnerBookingsData { return q.data }

func NewFindOwnerBookingsQuery(data FindOwnerBookingsData) pkgDomain.Query[FindOwnerBookingsData] {
	return findOwnerBookingsQuery{data: data}
}
