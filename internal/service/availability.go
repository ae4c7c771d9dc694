package service

import (
	"context"
	"fmt"

	"bookingapi/internal/domain"
	"bookingapi/pkg/metrics"
)

type EvictionPolicy int

const (
	// EvictNone leaves canceled bookings in the range untouched.
	EvictNone EvictionPolicy = iota
	// EvictCanceled deletes every canceled booking overlapping the range
	// once the conflict check has passed.
	EvictCanceled
)

// RangeReservation describes one "check then write" on a property's
// calendar.
type RangeReservation struct {
	PropertyID int64
	Dates      domain.DateRange
	// ExcludingID is the booking being changed. Zero excludes nothing.
	ExcludingID int64
	// Conflicting defaults to ACTIVE and BLOCKED.
	Conflicting []domain.BookingStatus
	Eviction    EvictionPolicy
	// ConflictErr is returned when the range is taken.
	ConflictErr error
}

// BookingReservation is the reservation a guest booking makes.
func BookingReservation(booking *domain.Booking) RangeReservation {
	return RangeReservation{
		PropertyID:  booking.PropertyID,
		Dates:       booking.Range(),
		ExcludingID: booking.ID,
		Eviction:    EvictNone,
		ConflictErr: domain.ErrRangeUnavailable,
	}
}

// BlockReservation is the reservation an administrative block makes.
func BlockReservation(block *domain.Booking) RangeReservation {
	return RangeReservation{
		PropertyID:  block.PropertyID,
		Dates:       block.Range(),
		ExcludingID: block.ID,
		Eviction:    EvictCanceled,
		ConflictErr: domain.ErrBlockOverlaps,
	}
}

type AvailabilityEngine struct {
	bookings domain.BookingRepository
}

func NewAvailabilityEngine(bookings domain.BookingRepository) *AvailabilityEngine {
	return &AvailabilityEngine{bookings: bookings}
}

func (e *AvailabilityEngine) FindOverlapping(ctx context.Context, propertyID int64, dates domain.DateRange, statuses []domain.BookingStatus) ([]*domain.Booking, error) {
	bookings, err := e.bookings.FindOverlapping(ctx, propertyID, dates, statuses)
	if err != nil {
		return nil, fmt.Errorf("availability of property %d could not be read: %w", propertyID, err)
	}
	return bookings, nil
}

// HasConflict reports whether an ACTIVE or BLOCKED booking other than
// excludingID overlaps dates.
func (e *AvailabilityEngine) HasConflict(ctx context.Context, propertyID int64, dates domain.DateRange, excludingID int64) (bool, error) {
	conflicts, err := e.conflicts(ctx, propertyID, dates, domain.OccupyingStatuses, excludingID)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}

// HasActiveOrBlockedConflict checks the block's range. A block that is
// already stored does not conflict with itself.
func (e *AvailabilityEngine) HasActiveOrBlockedConflict(ctx context.Context, block *domain.Booking) (bool, error) {
	return e.HasConflict(ctx, block.PropertyID, block.Range(), block.ID)
}

func (e *AvailabilityEngine) CollectCanceledInRange(ctx context.Context, block *domain.Booking) ([]*domain.Booking, error) {
	return e.FindOverlapping(ctx, block.PropertyID, block.Range(), []domain.BookingStatus{domain.BookingStatusCanceled})
}

// ReserveRange runs the conflict check, the eviction and then write. It must
// be called inside the property scope so that nothing commits in between.
// It returns the evicted bookings.
func (e *AvailabilityEngine) ReserveRange(ctx context.Context, r RangeReservation, write func(ctx context.Context) error) ([]*domain.Booking, error) {
	if !r.Dates.Valid() {
		return nil, domain.ErrInvalidDateRange
	}

	statuses := r.Conflicting
	if len(statuses) == 0 {
		statuses = domain.OccupyingStatuses
	}

	conflicts, err := e.conflicts(ctx, r.PropertyID, r.Dates, statuses, r.ExcludingID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		if r.ConflictErr != nil {
			return nil, r.ConflictErr
		}
		return nil, domain.ErrRangeUnavailable
	}

	var evicted []*domain.Booking
	if r.Eviction == EvictCanceled {
		evicted, err = e.FindOverlapping(ctx, r.PropertyID, r.Dates, []domain.BookingStatus{domain.BookingStatusCanceled})
		if err != nil {
			return nil, err
		}
		if err := e.bookings.DeleteAll(ctx, evicted); err != nil {
			return nil, fmt.Errorf("canceled bookings could not be evicted: %w", err)
		}
		metrics.RecordEvictions(len(evicted))
	}

	if err := write(ctx); err != nil {
		return nil, err
	}

	return evicted, nil
}

func (e *AvailabilityEngine) conflicts(ctx context.Context, propertyID int64, dates domain.DateRange, statuses []domain.BookingStatus, excludingID int64) ([]*domain.Booking, error) {
	overlapping, err := e.FindOverlapping(ctx, propertyID, dates, statuses)
	if err != nil {
		return nil, err
	}

	conflicts := overlapping[:0]
	for _, booking := range overlapping {
		if excludingID != 0 && booking.ID == excludingID {
			continue
		}
		conflicts = append(conflicts, booking)
	}
	return conflicts, nil
}
