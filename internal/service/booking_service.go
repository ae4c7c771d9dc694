package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bookingapi/internal/database"
	"bookingapi/internal/domain"
	"bookingapi/pkg/lock"
	"bookingapi/pkg/logger"
	"bookingapi/pkg/metrics"
	"bookingapi/pkg/tracing"
	"bookingapi/pkg/validator"
)

// BookingService is the booking lifecycle. Every mutation runs inside a
// property scope: the in-process lock of each touched property, one store
// transaction and the store's own property lock. Checks that depend on the
// stored booking are made on a copy re-read inside that scope.
type BookingService struct {
	bookings     domain.BookingRepository
	users        domain.UserDirectory
	properties   domain.PropertyDirectory
	availability *AvailabilityEngine
	guard        *AuthorizationGuard
	txManager    *database.TxManager
	locks        *lock.Keyed
	validator    *validator.Validator
	logger       logger.Logger
	now          func() time.Time
}

func NewBookingService(
	bookings domain.BookingRepository,
	users domain.UserDirectory,
	properties domain.PropertyDirectory,
	txManager *database.TxManager,
	locks *lock.Keyed,
	validator *validator.Validator,
	logger logger.Logger,
) *BookingService {
	return &BookingService{
		bookings:     bookings,
		users:        users,
		properties:   properties,
		availability: NewAvailabilityEngine(bookings),
		guard:        NewAuthorizationGuard(),
		txManager:    txManager,
		locks:        locks,
		validator:    validator,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*domain.BookingSnapshot, error) {
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, booking, nil)
}

func (s *BookingService) ListPropertyBookings(ctx context.Context, propertyID int64) ([]*domain.BookingSnapshot, error) {
	property, err := s.properties.FindPropertyByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.FindByProperty(ctx, property.ID)
	if err != nil {
		return nil, fmt.Errorf("bookings of property %d could not be listed: %w", property.ID, err)
	}

	snapshots := make([]*domain.BookingSnapshot, 0, len(bookings))
	for _, booking := range bookings {
		snapshot, err := s.snapshot(ctx, booking, property)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

func (s *BookingService) CheckAvailability(ctx context.Context, propertyID int64, dates domain.DateRange) (bool, error) {
	if !dates.Valid() {
		return false, domain.ErrInvalidDateRange
	}
	if _, err := s.properties.FindPropertyByID(ctx, propertyID); err != nil {
		return false, err
	}

	conflict, err := s.availability.HasConflict(ctx, propertyID, dates, 0)
	if err != nil {
		return false, err
	}
	return !conflict, nil
}

func (s *BookingService) CreateBooking(ctx context.Context, intent domain.CreateBookingIntent) (snapshot *domain.BookingSnapshot, err error) {
	ctx, span := s.startSpan(ctx, "create_booking",
		attribute.Int64("property.id", intent.PropertyID),
		attribute.Int64("user.id", intent.UserID),
	)
	defer func() { s.finish(ctx, span, "create_booking", err) }()

	if err := s.validateNewRange(intent); err != nil {
		return nil, err
	}

	user, err := s.users.FindUserByID(ctx, intent.UserID)
	if err != nil {
		return nil, err
	}
	property, err := s.properties.FindPropertyByID(ctx, intent.PropertyID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.RequireGuestRole(user); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		PropertyID: property.ID,
		UserID:     user.ID,
		StartDate:  intent.StartDate,
		EndDate:    intent.EndDate,
		Status:     domain.BookingStatusActive,
		Details:    intent.Details,
	}

	err = s.withinProperties(ctx, []int64{property.ID}, func(ctx context.Context) error {
		_, err := s.availability.ReserveRange(ctx, BookingReservation(booking), func(ctx context.Context) error {
			return s.bookings.Create(ctx, booking)
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Booking created", map[string]interface{}{
		"booking_id":  booking.ID,
		"property_id": booking.PropertyID,
		"range":       booking.Range().String(),
	})

	return newSnapshot(booking, property, user), nil
}

func (s *BookingService) UpdateBooking(ctx context.Context, intent domain.UpdateBookingIntent) (snapshot *domain.BookingSnapshot, err error) {
	ctx, span := s.startSpan(ctx, "update_booking",
		attribute.Int64("booking.id", intent.BookingID),
		attribute.Int64("user.id", intent.UserID),
	)
	defer func() { s.finish(ctx, span, "update_booking", err) }()

	if err := s.validator.Struct(intent); err != nil {
		return nil, err
	}

	current, err := s.loadBooking(ctx, intent.BookingID)
	if err != nil {
		return nil, err
	}

	targetPropertyID := current.PropertyID
	if intent.PropertyID != 0 {
		targetPropertyID = intent.PropertyID
	}

	err = s.withinProperties(ctx, []int64{current.PropertyID, targetPropertyID}, func(ctx context.Context) error {
		booking, err := s.reload(ctx, current)
		if err != nil {
			return err
		}

		if intent.Status == domain.BookingStatusBlocked && booking.Status != domain.BookingStatusBlocked {
			return domain.ErrStatusChangeToBlocked
		}
		if booking.IsBlock() {
			return domain.ErrBlockViaBookingPath
		}

		property, err := s.properties.FindPropertyByID(ctx, booking.PropertyID)
		if err != nil {
			return err
		}
		if err := s.guard.CanMutateBooking(intent.UserID, booking, property); err != nil {
			return err
		}

		target := property
		if targetPropertyID != property.ID {
			if target, err = s.properties.FindPropertyByID(ctx, targetPropertyID); err != nil {
				return err
			}
			if err := s.guard.CanMutateBooking(intent.UserID, booking, target); err != nil {
				return err
			}
		}

		guestID := booking.UserID
		if intent.GuestID != 0 {
			guestID = intent.GuestID
		}
		guest, err := s.users.FindUserByID(ctx, guestID)
		if err != nil {
			return err
		}
		if guest.ID != booking.UserID || target.ID != booking.PropertyID {
			if err := s.guard.RequireGuestRole(guest); err != nil {
				return err
			}
		}

		booking.PropertyID = target.ID
		booking.UserID = guest.ID
		booking.StartDate = intent.StartDate
		booking.EndDate = intent.EndDate
		if intent.Details != nil {
			booking.Details = *intent.Details
		}

		if _, err := s.availability.ReserveRange(ctx, BookingReservation(booking), func(ctx context.Context) error {
			return s.bookings.Update(ctx, booking)
		}); err != nil {
			return err
		}

		snapshot = newSnapshot(booking, target, guest)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Booking updated", map[string]interface{}{
		"booking_id":  snapshot.ID,
		"property_id": snapshot.PropertyID,
		"range":       domain.NewDateRange(snapshot.StartDate, snapshot.EndDate).String(),
	})

	return snapshot, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, intent domain.CancelIntent) (snapshot *domain.BookingSnapshot, err error) {
	ctx, span := s.startSpan(ctx, "cancel_booking",
		attribute.Int64("booking.id", intent.BookingID),
		attribute.Int64("user.id", intent.UserID),
	)
	defer func() { s.finish(ctx, span, "cancel_booking", err) }()

	if err := s.validator.Struct(intent); err != nil {
		return nil, err
	}

	current, err := s.loadBooking(ctx, intent.BookingID)
	if err != nil {
		return nil, err
	}

	err = s.withinProperties(ctx, []int64{current.PropertyID}, func(ctx context.Context) error {
		booking, err := s.reload(ctx, current)
		if err != nil {
			return err
		}

		if booking.Status == domain.BookingStatusCanceled {
			return domain.ErrAlreadyCanceled
		}
		if booking.IsBlock() {
			return domain.ErrBlockViaBookingPath
		}

		property, err := s.properties.FindPropertyByID(ctx, booking.PropertyID)
		if err != nil {
			return err
		}
		if err := s.guard.CanMutateBooking(intent.UserID, booking, property); err != nil {
			return err
		}

		booking.Status = domain.BookingStatusCanceled
		if err := s.bookings.Update(ctx, booking); err != nil {
			return err
		}

		snapshot, err = s.snapshot(ctx, booking, property)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Booking canceled", map[string]interface{}{
		"booking_id":  snapshot.ID,
		"property_id": snapshot.PropertyID,
	})

	return snapshot, nil
}

func (s *BookingService) RebookCanceledBooking(ctx context.Context, intent domain.RebookIntent) (snapshot *domain.BookingSnapshot, err error) {
	ctx, span := s.startSpan(ctx, "rebook_booking",
		attribute.Int64("booking.id", intent.BookingID),
		attribute.Int64("user.id", intent.UserID),
	)
	defer func() { s.finish(ctx, span, "rebook_booking", err) }()

	if err := s.validator.Struct(intent); err != nil {
		return nil, err
	}

	current, err := s.loadBooking(ctx, intent.BookingID)
	if err != nil {
		return nil, err
	}

	err = s.withinProperties(ctx, []int64{current.PropertyID}, func(ctx context.Context) error {
		booking, err := s.reload(ctx, current)
		if err != nil {
			return err
		}

		if booking.Status != domain.BookingStatusCanceled {
			return domain.ErrMustBeCanceledToRebook
		}

		property, err := s.properties.FindPropertyByID(ctx, booking.PropertyID)
		if err != nil {
			return err
		}
		if err := s.guard.CanMutateBooking(intent.UserID, booking, property); err != nil {
			return err
		}

		booking.Status = domain.BookingStatusActive
		booking.StartDate = intent.StartDate
		booking.EndDate = intent.EndDate
		booking.Details = intent.Details

		if _, err := s.availability.ReserveRange(ctx, BookingReservation(booking), func(ctx context.Context) error {
			return s.bookings.Update(ctx, booking)
		}); err != nil {
			return err
		}

		snapshot, err = s.snapshot(ctx, booking, property)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Booking rebooked", map[string]interface{}{
		"booking_id":  snapshot.ID,
		"property_id": snapshot.PropertyID,
		"range":       domain.NewDateRange(snapshot.StartDate, snapshot.EndDate).String(),
	})

	return snapshot, nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, intent domain.DeleteIntent) (err error) {
	ctx, span := s.startSpan(ctx, "delete_booking",
		attribute.Int64("booking.id", intent.BookingID),
		attribute.Int64("user.id", intent.UserID),
	)
	defer func() { s.finish(ctx, span, "delete_booking", err) }()

	if err := s.validator.Struct(intent); err != nil {
		return err
	}

	current, err := s.loadBooking(ctx, intent.BookingID)
	if err != nil {
		return err
	}

	err = s.withinProperties(ctx, []int64{current.PropertyID}, func(ctx context.Context) error {
		booking, err := s.reload(ctx, current)
		if err != nil {
			return err
		}

		property, err := s.properties.FindPropertyByID(ctx, booking.PropertyID)
		if err != nil {
			return err
		}
		if err := s.guard.CanMutateBooking(intent.UserID, booking, property); err != nil {
			return err
		}

		return s.bookings.Delete(ctx, booking.ID)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Booking deleted", map[string]interface{}{
		"booking_id":  current.ID,
		"property_id": current.PropertyID,
	})

	return nil
}

func (s *BookingService) CreateBlock(ctx context.Context, intent domain.CreateBlockIntent) (snapshot *domain.BookingSnapshot, err error) {
	ctx, span := s.startSpan(ctx, "create_block",
		attribute.Int64("property.id", intent.PropertyID),
		attribute.Int64("user.id", intent.UserID),
	)
	defer func() { s.finish(ctx, span, "create_block", err) }()

	if err := s.validateNewRange(intent); err != nil {
		return nil, err
	}

	user, err := s.users.FindUserByID(ctx, intent.UserID)
	if err != nil {
		return nil, err
	}
	property, err := s.properties.FindPropertyByID(ctx, intent.PropertyID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CanManageBlock(user, property); err != nil {
		return nil, err
	}

	block := &domain.Booking{
		PropertyID: property.ID,
		UserID:     user.ID,
		StartDate:  intent.StartDate,
		EndDate:    intent.EndDate,
		Status:     domain.BookingStatusBlocked,
		Details:    intent.Details,
	}

	var evicted []*domain.Booking
	err = s.withinProperties(ctx, []int64{property.ID}, func(ctx context.Context) error {
		var err error
		evicted, err = s.availability.ReserveRange(ctx, BlockReservation(block), func(ctx context.Context) error {
			return s.bookings.Create(ctx, block)
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Block created", map[string]interface{}{
		"booking_id":  block.ID,
		"property_id": block.PropertyID,
		"range":       block.Range().String(),
		"evicted":     bookingIDs(evicted),
	})

	return newSnapshot(block, property, user), nil
}

func (s *BookingService) UpdateBlock(ctx context.Context, intent domain.UpdateBlockIntent) (snapshot *domain.BookingSnapshot, err error) {
	ctx, span := s.startSpan(ctx, "update_block",
		attribute.Int64("booking.id", intent.BookingID),
		attribute.Int64("user.id", intent.UserID),
	)
	defer func() { s.finish(ctx, span, "update_block", err) }()

	if err := s.validator.Struct(intent); err != nil {
		return nil, err
	}

	current, err := s.loadBooking(ctx, intent.BookingID)
	if err != nil {
		return nil, err
	}

	var evicted []*domain.Booking
	err = s.withinProperties(ctx, []int64{current.PropertyID}, func(ctx context.Context) error {
		block, err := s.reload(ctx, current)
		if err != nil {
			return err
		}
		if !block.IsBlock() {
			return domain.ErrNotABlock
		}

		user, err := s.users.FindUserByID(ctx, intent.UserID)
		if err != nil {
			return err
		}
		property, err := s.properties.FindPropertyByID(ctx, block.PropertyID)
		if err != nil {
			return err
		}
		if err := s.guard.CanManageBlock(user, property); err != nil {
			return err
		}

		block.StartDate = intent.StartDate
		block.EndDate = intent.EndDate
		block.Details = intent.Details

		evicted, err = s.availability.ReserveRange(ctx, BlockReservation(block), func(ctx context.Context) error {
			return s.bookings.Update(ctx, block)
		})
		if err != nil {
			return err
		}

		snapshot, err = s.snapshot(ctx, block, property)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Block updated", map[string]interface{}{
		"booking_id":  snapshot.ID,
		"property_id": snapshot.PropertyID,
		"range":       domain.NewDateRange(snapshot.StartDate, snapshot.EndDate).String(),
		"evicted":     bookingIDs(evicted),
	})

	return snapshot, nil
}

func (s *BookingService) DeleteBlock(ctx context.Context, intent domain.DeleteBlockIntent) (err error) {
	ctx, span := s.startSpan(ctx, "delete_block",
		attribute.Int64("booking.id", intent.BookingID),
		attribute.Int64("user.id", intent.UserID),
	)
	defer func() { s.finish(ctx, span, "delete_block", err) }()

	if err := s.validator.Struct(intent); err != nil {
		return err
	}

	current, err := s.loadBooking(ctx, intent.BookingID)
	if err != nil {
		return err
	}

	err = s.withinProperties(ctx, []int64{current.PropertyID}, func(ctx context.Context) error {
		block, err := s.reload(ctx, current)
		if err != nil {
			return err
		}

		user, err := s.users.FindUserByID(ctx, intent.UserID)
		if err != nil {
			return err
		}
		property, err := s.properties.FindPropertyByID(ctx, block.PropertyID)
		if err != nil {
			return err
		}
		if err := s.guard.CanManageBlock(user, property); err != nil {
			return err
		}
		if !block.IsBlock() {
			return domain.ErrNotABlock
		}

		return s.bookings.Delete(ctx, block.ID)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Block deleted", map[string]interface{}{
		"booking_id":  current.ID,
		"property_id": current.PropertyID,
	})

	return nil
}

// validateNewRange checks the intent rules plus the creation only rule that
// a range may not start before today.
func (s *BookingService) validateNewRange(intent interface{ Dates() domain.DateRange }) error {
	if err := s.validator.Struct(intent); err != nil {
		return err
	}
	today := domain.DateOf(s.now().UTC())
	if intent.Dates().Start.Before(today.Time) {
		return domain.ErrStartDateInPast
	}
	return nil
}

func (s *BookingService) loadBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("booking %d could not be loaded: %w", id, err)
	}
	if booking == nil {
		return nil, domain.ErrBookingNotFound
	}
	return booking, nil
}

// reload reads the booking again inside the property scope. A booking that
// moved to another property in the meantime is outside the locks we hold.
func (s *BookingService) reload(ctx context.Context, current *domain.Booking) (*domain.Booking, error) {
	booking, err := s.loadBooking(ctx, current.ID)
	if err != nil {
		return nil, err
	}
	if booking.PropertyID != current.PropertyID {
		return nil, domain.ErrConcurrentModification
	}
	return booking, nil
}

func (s *BookingService) withinProperties(ctx context.Context, propertyIDs []int64, fn func(ctx context.Context) error) error {
	ids := slices.Clone(propertyIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	waitStart := time.Now()
	unlock := s.locks.LockAll(ids...)
	defer unlock()
	metrics.RecordPropertyLockWait(time.Since(waitStart))

	return s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		for _, id := range ids {
			if err := s.bookings.LockProperty(ctx, id); err != nil {
				return err
			}
		}
		return fn(ctx)
	})
}

// snapshot resolves the property (unless given) and the guest of booking.
func (s *BookingService) snapshot(ctx context.Context, booking *domain.Booking, property *domain.Property) (*domain.BookingSnapshot, error) {
	if property == nil || property.ID != booking.PropertyID {
		var err error
		if property, err = s.properties.FindPropertyByID(ctx, booking.PropertyID); err != nil {
			return nil, err
		}
	}

	guest, err := s.users.FindUserByID(ctx, booking.UserID)
	if err != nil {
		return nil, err
	}

	return newSnapshot(booking, property, guest), nil
}

func newSnapshot(booking *domain.Booking, property *domain.Property, guest *domain.User) *domain.BookingSnapshot {
	return &domain.BookingSnapshot{
		ID:                  booking.ID,
		PropertyID:          booking.PropertyID,
		PropertyDescription: property.Description,
		GuestEmail:          guest.Email,
		StartDate:           booking.StartDate,
		EndDate:             booking.EndDate,
		Status:              booking.Status,
		Details:             booking.Details,
	}
}

func (s *BookingService) startSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracing.StartSpan(ctx, "BookingService."+operation, trace.WithAttributes(attrs...))
}

func (s *BookingService) finish(ctx context.Context, span trace.Span, operation string, err error) {
	defer span.End()

	if err == nil {
		metrics.RecordBookingOperation(operation, "success")
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	fields := map[string]interface{}{
		"operation": operation,
		"error":     err.Error(),
	}

	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		metrics.RecordBookingOperation(operation, string(domainErr.Kind))
		fields["kind"] = domainErr.Kind
		s.logger.WarnContext(ctx, "Booking operation rejected", fields)
		return
	}

	metrics.RecordBookingOperation(operation, "error")
	s.logger.ErrorContext(ctx, "Booking operation failed", fields)
}

func bookingIDs(bookings []*domain.Booking) []int64 {
	ids := make([]int64, len(bookings))
	for i, booking := range bookings {
		ids[i] = booking.ID
	}
	return ids
}
