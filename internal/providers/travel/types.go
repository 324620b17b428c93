// internal/providers/travel/types.go
package travel

import "context"

// FlightOffer is the cheapest flight found for a route and date window.
type FlightOffer struct {
	Available bool    `json:"available"`
	Cost      float64 `json:"cost"`
	Airline   string  `json:"airline,omitempty"`
	Duration  string  `json:"duration,omitempty"`
}

// HotelOffer is the cheapest hotel found for a destination and stay window.
type HotelOffer struct {
	Available    bool    `json:"available"`
	CostPerNight float64 `json:"costPerNight"`
	HotelName    string  `json:"hotelName,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
}

// FlightProvider finds the cheapest round-trip offer for a route. Origin and
// destination are free-text city or airport names; implementations resolve
// them to airport codes.
type FlightProvider interface {
	CheapestOffer(ctx context.Context, origin, destination, departureDate, returnDate string) (FlightOffer, error)
}

// HotelProvider finds the cheapest hotel offer for a destination.
type HotelProvider interface {
	CheapestOffer(ctx context.Context, destination, checkIn, checkOut string) (HotelOffer, error)
}
