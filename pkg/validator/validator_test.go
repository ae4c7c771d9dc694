package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingapi/internal/domain"
)

func TestStructAcceptsValidIntent(t *testing.T) {
	v := New()

	err := v.Struct(domain.CreateBookingIntent{
		PropertyID: 1,
		UserID:     1,
		StartDate:  domain.NewDate(2099, time.December, 1),
		EndDate:    domain.NewDate(2099, time.December, 1),
	})
	assert.NoError(t, err)
}

func TestStructReportsFieldErrors(t *testing.T) {
	v := New()

	err := v.Struct(domain.CreateBookingIntent{
		UserID:    1,
		StartDate: domain.NewDate(2099, time.December, 1),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "property_id")
	assert.Contains(t, err.Error(), "end_date")
}

func TestStructRejectsReversedRange(t *testing.T) {
	v := New()

	err := v.Struct(domain.CreateBlockIntent{
		PropertyID: 1,
		UserID:     2,
		StartDate:  domain.NewDate(2099, time.December, 5),
		EndDate:    domain.NewDate(2099, time.December, 1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestStructCustomRules(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(domain.CreateUserIntent{Email: "guest@example.com", UserType: domain.UserTypeGuest}))
	assert.ErrorIs(t, v.Struct(domain.CreateUserIntent{Email: "guest@example.com", UserType: "ADMIN"}), domain.ErrValidation)
	assert.ErrorIs(t, v.Struct(domain.CreateUserIntent{Email: "not-an-email", UserType: domain.UserTypeOwner}), domain.ErrValidation)

	update := domain.UpdateBookingIntent{
		BookingID: 1,
		UserID:    1,
		StartDate: domain.NewDate(2099, time.December, 1),
		EndDate:   domain.NewDate(2099, time.December, 2),
		Status:    "PENDING",
	}
	assert.ErrorIs(t, v.Struct(update), domain.ErrValidation)

	update.Status = domain.BookingStatusBlocked
	assert.NoError(t, v.Struct(update))
}
