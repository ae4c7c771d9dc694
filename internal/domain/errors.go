package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindConflict   ErrorKind = "conflict"
	KindPermission ErrorKind = "permission"
	KindNotFound   ErrorKind = "not_found"
)

// Error is the typed failure raised by the booking core. The transport layer
// maps Kind to a protocol status.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets the kind sentinels (ErrValidation, ErrConflict, ...) match every
// error of their kind. Message-bearing errors only match themselves.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Message != "" {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrPermission = &Error{Kind: KindPermission}
	ErrNotFound   = &Error{Kind: KindNotFound}
)

var (
	ErrUserNotFound           = NewNotFoundError("User not found")
	ErrPropertyNotFound       = NewNotFoundError("Property not found")
	ErrBookingNotFound        = NewNotFoundError("Booking not found")
	ErrInvalidDateRange       = NewValidationError("StartDate must be before EndDate")
	ErrStartDateInPast        = NewValidationError("StartDate must not be in the past")
	ErrOnlyGuestsCanBook      = NewValidationError("Only users of type GUEST can request a booking!")
	ErrStatusChangeToBlocked  = NewValidationError("It's not possible to Block this booking")
	ErrBlockViaBookingPath    = NewValidationError("Blocks must be changed through the block endpoints")
	ErrNotABlock              = NewValidationError("The booking must be with status Blocked to perform this action")
	ErrAlreadyCanceled        = NewConflictError("The Booking is already canceled")
	ErrMustBeCanceledToRebook = NewConflictError("The booking must be canceled to rebook")
	ErrRangeUnavailable       = NewConflictError("Booking not available for this property in this date.")
	ErrBlockOverlaps          = NewConflictError("The property has active bookings or blocks between these dates")
	ErrConcurrentModification = NewConflictError("The booking was modified concurrently, retry the request")
	ErrCannotMutateBooking    = NewPermissionError("User not able to change this booking")
	ErrCannotManageBlock      = NewPermissionError("This user is not able to create/update a block for this property")
)

func NewValidationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NewPermissionError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindPermission, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "" for
// infrastructure failures.
func KindOf(err error) ErrorKind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return ""
}
