package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bookingapi/internal/domain"
)

func TestAuthorizationGuard(t *testing.T) {
	g := NewAuthorizationGuard()

	guest := &domain.User{ID: 1, UserType: domain.UserTypeGuest}
	manager := &domain.User{ID: 2, UserType: domain.UserTypeManager}
	owner := &domain.User{ID: 3, UserType: domain.UserTypeOwner}
	outsider := &domain.User{ID: 4, UserType: domain.UserTypeManager}
	property := &domain.Property{ID: 10, ManagerID: manager.ID, OwnerID: owner.ID}
	booking := &domain.Booking{ID: 100, PropertyID: property.ID, UserID: guest.ID}

	t.Run("manage block", func(t *testing.T) {
		assert.NoError(t, g.CanManageBlock(manager, property))
		assert.NoError(t, g.CanManageBlock(owner, property))
		assert.ErrorIs(t, g.CanManageBlock(guest, property), domain.ErrCannotManageBlock)
		assert.ErrorIs(t, g.CanManageBlock(outsider, property), domain.ErrCannotManageBlock)
		assert.ErrorIs(t, g.CanManageBlock(nil, property), domain.ErrCannotManageBlock)
	})

	t.Run("mutate booking", func(t *testing.T) {
		for _, u := range []*domain.User{guest, manager, owner} {
			assert.NoError(t, g.CanMutateBooking(u.ID, booking, property))
		}
		assert.ErrorIs(t, g.CanMutateBooking(outsider.ID, booking, property), domain.ErrCannotMutateBooking)
		assert.ErrorIs(t, g.CanMutateBooking(guest.ID, booking, nil), domain.ErrCannotMutateBooking)
	})

	t.Run("guest role", func(t *testing.T) {
		assert.NoError(t, g.RequireGuestRole(guest))
		assert.ErrorIs(t, g.RequireGuestRole(manager), domain.ErrOnlyGuestsCanBook)
		assert.ErrorIs(t, g.RequireGuestRole(owner), domain.ErrValidation)
	})
}
