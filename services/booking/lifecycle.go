package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bookingRepo "trimly/database/repository/booking"
	"trimly/models"
	"trimly/services/notification"
	"trimly/utils"

	"go.uber.org/zap"
)

// LifecycleService walks a confirmed booking through fulfilment. Forward
// progression is barber-driven and strictly ordered; cancellation and
// dispute are available to either party while the booking is active.
type LifecycleService interface {
	MarkEnRoute(ctx context.Context, bookingID, barberID string) (*models.Booking, error)
	MarkArrived(ctx context.Context, bookingID, barberID string) (*models.Booking, error)
	MarkStarted(ctx context.Context, bookingID, barberID string) (*models.Booking, error)
	MarkCompleted(ctx context.Context, bookingID, barberID string) (*models.Booking, error)

	CancelBooking(ctx context.Context, bookingID, actorID, reason string) (*models.Booking, error)
	RaiseDispute(ctx context.Context, bookingID, actorID, reason string) (*models.Booking, error)

	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetBookingForRequest(ctx context.Context, requestID string) (*models.Booking, error)
	ListCustomerBookings(ctx context.Context, customerID string) ([]models.Booking, error)
	ListBarberBookings(ctx context.Context, barberID string) ([]models.Booking, error)
}

// DefaultLifecycleService implements LifecycleService.
type DefaultLifecycleService struct {
	Bookings bookingRepo.BookingRepository
	Notifier notification.Dispatcher

	Now func() time.Time
}

func (s *DefaultLifecycleService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// forwardFrom lists the statuses each barber-driven progression may start
// from. Skipping a step is not allowed.
var forwardFrom = map[models.BookingStatus][]models.BookingStatus{
	models.BookingEnRoute:    {models.BookingScheduled},
	models.BookingArrived:    {models.BookingEnRoute},
	models.BookingInProgress: {models.BookingArrived},
	models.BookingCompleted:  {models.BookingInProgress},
}

func (s *DefaultLifecycleService) get(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *DefaultLifecycleService) advance(ctx context.Context, bookingID, barberID string, to models.BookingStatus) (*models.Booking, error) {
	b, err := s.get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.BarberID != barberID {
		return nil, ErrNotAllowed
	}

	from := forwardFrom[to]
	ok, err := s.Bookings.Transition(ctx, bookingID, from, to, s.now(), "")
	if err != nil {
		return nil, fmt.Errorf("failed to transition booking %s to %s: %w", bookingID, to, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: booking %s is %s", ErrInvalidTransition, bookingID, b.Status)
	}
	return s.get(ctx, bookingID)
}

func (s *DefaultLifecycleService) MarkEnRoute(ctx context.Context, bookingID, barberID string) (*models.Booking, error) {
	return s.advance(ctx, bookingID, barberID, models.BookingEnRoute)
}

func (s *DefaultLifecycleService) MarkArrived(ctx context.Context, bookingID, barberID string) (*models.Booking, error) {
	return s.advance(ctx, bookingID, barberID, models.BookingArrived)
}

func (s *DefaultLifecycleService) MarkStarted(ctx context.Context, bookingID, barberID string) (*models.Booking, error) {
	return s.advance(ctx, bookingID, barberID, models.BookingInProgress)
}

// MarkCompleted closes the booking after the service is rendered.
func (s *DefaultLifecycleService) MarkCompleted(ctx context.Context, bookingID, barberID string) (*models.Booking, error) {
	b, err := s.advance(ctx, bookingID, barberID, models.BookingCompleted)
	if err != nil {
		return nil, err
	}
	if s.Notifier != nil {
		if err := s.Notifier.NotifyBookingCompleted(ctx, b); err != nil {
			utils.GetLogger().Warn("completion push failed", zap.String("bookingId", b.ID), zap.Error(err))
		}
	}
	return b, nil
}

// party verifies the actor is one side of the booking.
func party(b *models.Booking, actorID string) bool {
	return b.CustomerID == actorID || b.BarberID == actorID
}

// CancelBooking terminates an active booking. Completed bookings cannot be
// cancelled.
func (s *DefaultLifecycleService) CancelBooking(ctx context.Context, bookingID, actorID, reason string) (*models.Booking, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: cancellation reason is required", ErrValidation)
	}

	b, err := s.get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !party(b, actorID) {
		return nil, ErrNotAllowed
	}

	from := []models.BookingStatus{
		models.BookingScheduled,
		models.BookingEnRoute,
		models.BookingArrived,
		models.BookingInProgress,
	}
	ok, err := s.Bookings.Transition(ctx, bookingID, from, models.BookingCancelled, s.now(), reason)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking %s: %w", bookingID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: booking %s is %s", ErrInvalidTransition, bookingID, b.Status)
	}
	return s.get(ctx, bookingID)
}

// RaiseDispute flags the booking for manual review. Available to either
// party while the booking is still active; completed bookings cannot be
// disputed.
func (s *DefaultLifecycleService) RaiseDispute(ctx context.Context, bookingID, actorID, reason string) (*models.Booking, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: dispute reason is required", ErrValidation)
	}

	b, err := s.get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !party(b, actorID) {
		return nil, ErrNotAllowed
	}

	from := []models.BookingStatus{
		models.BookingScheduled,
		models.BookingEnRoute,
		models.BookingArrived,
		models.BookingInProgress,
	}
	ok, err := s.Bookings.Transition(ctx, bookingID, from, models.BookingDisputed, s.now(), reason)
	if err != nil {
		return nil, fmt.Errorf("failed to dispute booking %s: %w", bookingID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: booking %s is %s", ErrInvalidTransition, bookingID, b.Status)
	}
	return s.get(ctx, bookingID)
}

func (s *DefaultLifecycleService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.get(ctx, id)
}

func (s *DefaultLifecycleService) GetBookingForRequest(ctx context.Context, requestID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *DefaultLifecycleService) ListCustomerBookings(ctx context.Context, customerID string) ([]models.Booking, error) {
	return s.Bookings.ListByCustomer(ctx, customerID)
}

func (s *DefaultLifecycleService) ListBarberBookings(ctx context.Context, barberID string) ([]models.Booking, error) {
	return s.Bookings.ListByBarber(ctx, barberID)
}
