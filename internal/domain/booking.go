package domain

import (
	"context"
	"time"
)

type BookingStatus string

const (
	BookingStatusActive   BookingStatus = "ACTIVE"
	BookingStatusBlocked  BookingStatus = "BLOCKED"
	BookingStatusCanceled BookingStatus = "CANCELED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusActive, BookingStatusBlocked, BookingStatusCanceled:
		return true
	}
	return false
}

// OccupyingStatuses are the statuses that hold a date range.
var OccupyingStatuses = []BookingStatus{BookingStatusActive, BookingStatusBlocked}

type Booking struct {
	ID         int64         `json:"id"`
	PropertyID int64         `json:"property_id"`
	UserID     int64         `json:"user_id"`
	StartDate  Date          `json:"start_date"`
	EndDate    Date          `json:"end_date"`
	Status     BookingStatus `json:"status"`
	Details    string        `json:"details,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (b *Booking) Range() DateRange {
	return NewDateRange(b.StartDate, b.EndDate)
}

func (b *Booking) IsBlock() bool {
	return b.Status == BookingStatusBlocked
}

// BookingSnapshot is what the core hands back to the transport layer.
type BookingSnapshot struct {
	ID                  int64         `json:"id"`
	PropertyID          int64         `json:"property_id"`
	PropertyDescription string        `json:"property_description"`
	GuestEmail          string        `json:"email_guest"`
	StartDate           Date          `json:"start_date"`
	EndDate             Date          `json:"end_date"`
	Status              BookingStatus `json:"status"`
	Details             string        `json:"details,omitempty"`
}

type BookingRepository interface {
	FindByID(ctx context.Context, id int64) (*Booking, error)
	FindByProperty(ctx context.Context, propertyID int64) ([]*Booking, error)
	FindOverlapping(ctx context.Context, propertyID int64, dates DateRange, statuses []BookingStatus) ([]*Booking, error)
	CountByPropertyAndStatus(ctx context.Context, propertyID int64, status BookingStatus) (int64, error)
	Create(ctx context.Context, booking *Booking) error
	Update(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context, bookings []*Booking) error

	// LockProperty serializes writers of one property for the rest of the
	// surrounding transaction. It is a no-op on stores without row-level
	// concurrency.
	LockProperty(ctx context.Context, propertyID int64) error
}

type BookingService interface {
	GetBooking(ctx context.Context, id int64) (*BookingSnapshot, error)
	ListPropertyBookings(ctx context.Context, propertyID int64) ([]*BookingSnapshot, error)
	// CheckAvailability reports whether no ACTIVE or BLOCKED booking of the
	// property overlaps dates.
	CheckAvailability(ctx context.Context, propertyID int64, dates DateRange) (bool, error)

	CreateBooking(ctx context.Context, intent CreateBookingIntent) (*BookingSnapshot, error)
	UpdateBooking(ctx context.Context, intent UpdateBookingIntent) (*BookingSnapshot, error)
	CancelBooking(ctx context.Context, intent CancelIntent) (*BookingSnapshot, error)
	RebookCanceledBooking(ctx context.Context, intent RebookIntent) (*BookingSnapshot, error)
	DeleteBooking(ctx context.Context, intent DeleteIntent) error

	CreateBlock(ctx context.Context, intent CreateBlockIntent) (*BookingSnapshot, error)
	UpdateBlock(ctx context.Context, intent UpdateBlockIntent) (*BookingSnapshot, error)
	DeleteBlock(ctx context.Context, intent DeleteBlockIntent) error
}
