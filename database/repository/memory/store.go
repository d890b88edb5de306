// Package memory provides in-memory implementations of the repository
// interfaces. All repos created from one Store share a single mutex, so the
// acceptance transaction is atomic the same way the Mongo transaction is.
// Used by service tests; never wired in production.
package memory

import (
	"sync"

	"trimly/models"
)

// Store holds every collection behind one lock.
type Store struct {
	mu sync.Mutex

	requests  map[string]models.ServiceRequest
	responses map[string]models.BarberResponse
	pairs     map[string]string // requestID+"/"+barberID -> responseID
	messages  []models.NegotiationMessage
	msgIndex  map[string]int
	bookings  map[string]models.Booking
	byRequest map[string]string // requestID -> bookingID
	barbers   map[string]models.Barber
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		requests:  make(map[string]models.ServiceRequest),
		responses: make(map[string]models.BarberResponse),
		pairs:     make(map[string]string),
		msgIndex:  make(map[string]int),
		bookings:  make(map[string]models.Booking),
		byRequest: make(map[string]string),
		barbers:   make(map[string]models.Barber),
	}
}

func pairKey(requestID, barberID string) string {
	return requestID + "/" + barberID
}

// Requests returns a RequestRepository view of the store.
func (s *Store) Requests() *RequestRepo { return &RequestRepo{s: s} }

// Responses returns a ResponseRepository view of the store.
func (s *Store) Responses() *ResponseRepo { return &ResponseRepo{s: s} }

// Messages returns a MessageRepository view of the store.
func (s *Store) Messages() *MessageRepo { return &MessageRepo{s: s} }

// Bookings returns a BookingRepository view of the store.
func (s *Store) Bookings() *BookingRepo { return &BookingRepo{s: s} }

// Barbers returns a BarberRepository view of the store.
func (s *Store) Barbers() *BarberRepo { return &BarberRepo{s: s} }
