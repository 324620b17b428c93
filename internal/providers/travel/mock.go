// internal/providers/travel/mock.go
package travel

import (
	"context"
	"hash/fnv"
)

// mockFlight and mockHotel fixtures cover typical short-haul West Coast
// routes so demos and tests run without live credentials.
type mockFlight struct {
	airline  string
	duration string
	price    float64
}

type mockHotel struct {
	name          string
	pricePerNight float64
	rating        float64
}

var mockFlights = []mockFlight{
	{airline: "United Airlines", duration: "1h 30m", price: 250},
	{airline: "Alaska Airlines", duration: "2h 10m", price: 189},
	{airline: "Delta Air Lines", duration: "3h 05m", price: 315},
	{airline: "Southwest Airlines", duration: "1h 55m", price: 164},
}

var mockHotels = []mockHotel{
	{name: "Hotel del Coronado", pricePerNight: 350, rating: 4.5},
	{name: "The Ritz-Carlton, Laguna Niguel", pricePerNight: 475, rating: 4.8},
	{name: "Harbor View Inn", pricePerNight: 210, rating: 4.2},
	{name: "Cannery Row Lodge", pricePerNight: 155, rating: 4.0},
}

// MockProvider serves deterministic offers keyed off the destination name,
// so the same destination always yields the same offer. It implements both
// FlightProvider and HotelProvider.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func pick(seed string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(seed))
	return int(h.Sum32() % uint32(n))
}

func (m *MockProvider) CheapestOffer(ctx context.Context, origin, destination, departureDate, returnDate string) (FlightOffer, error) {
	f := mockFlights[pick(origin+destination, len(mockFlights))]
	return FlightOffer{
		Available: true,
		Cost:      f.price,
		Airline:   f.airline,
		Duration:  f.duration,
	}, nil
}

// HotelCheapestOffer returns the deterministic hotel offer for destination.
func (m *MockProvider) HotelCheapestOffer(ctx context.Context, destination, checkIn, checkOut string) (HotelOffer, error) {
	h := mockHotels[pick(destination, len(mockHotels))]
	return HotelOffer{
		Available:    true,
		CostPerNight: h.pricePerNight,
		HotelName:    h.name,
		Rating:       h.rating,
	}, nil
}

// MockHotelAdapter exposes the hotel side of MockProvider as a HotelProvider.
type MockHotelAdapter struct {
	Provider *MockProvider
}

func (a MockHotelAdapter) CheapestOffer(ctx context.Context, destination, checkIn, checkOut string) (HotelOffer, error) {
	return a.Provider.HotelCheapestOffer(ctx, destination, checkIn, checkOut)
}
