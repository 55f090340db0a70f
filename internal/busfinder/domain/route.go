package domain

import "strings"

// Route é uma viagem oferecida pelo catálogo. Não tem identidade além dos próprios campos.
type Route struct {
	Origin      string `json:"from"`
	Destination string `json:"to"`
	Carrier     string `json:"bus"`
	Departure   Clock  `json:"departure"`
	Arrival     Clock  `json:"arrival"`
}

// Catalog é a lista imutável de rotas disponíveis.
type Catalog struct {
	routes []Route
}

func NewCatalog(routes ...Route) *Catalog {
	return &Catalog{routes: append([]Route(nil), routes...)}
}

// DefaultCatalog devolve as rotas de referência da aplicação.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Route{Origin: "City A", Destination: "City B", Carrier: "Express 101", Departure: MustClock("09:00"), Arrival: MustClock("12:00")},
		Route{Origin: "City C", Destination: "City D", Carrier: "Rapid 202", Departure: MustClock("14:00"), Arrival: MustClock("18:00")},
		Route{Origin: "City E", Destination: "City F", Carrier: "Deluxe 303", Departure: MustClock("07:00"), Arrival: MustClock("11:00")},
		Route{Origin: "Mumbai", Destination: "Pune", Carrier: "Shivneri 404", Departure: MustClock("06:30"), Arrival: MustClock("09:45")},
		Route{Origin: "Mumbai", Destination: "Pune", Carrier: "Volvo Sleeper 505", Departure: MustClock("22:00"), Arrival: MustClock("01:30")},
		Route{Origin: "Pune", Destination: "Mumbai", Carrier: "Shivneri 405", Departure: MustClock("17:00"), Arrival: MustClock("20:15")},
		Route{Origin: "Mumbai", Destination: "Goa", Carrier: "Konkan Night 606", Departure: MustClock("19:30"), Arrival: MustClock("07:00")},
	)
}

func (c *Catalog) List() []Route {
	return append([]Route(nil), c.routes...)
}

// Find compara origem e destino sem diferenciar maiúsculas; nunca devolve nil.
func (c *Catalog) Find(origin, destination string) []Route {
	origin, destination = strings.TrimSpace(origin), strings.TrimSpace(destination)

	matches := make([]Route, 0)
	for _, r := range c.routes {
		if strings.EqualFold(r.Origin, origin) && strings.EqualFold(r.Destination, destination) {
			matches = append(matches, r)
		}
	}
	return matches
}

// Lookup resolve uma rota pelo trecho e pelo ônibus.
func (c *Catalog) Lookup(origin, destination, carrier string) (Route, bool) {
	carrier = strings.TrimSpace(carrier)
	for _, r := range c.Find(origin, destination) {
		if strings.EqualFold(r.Carrier, carrier) {
			return r, true
		}
	}
	return Route{}, false
}
