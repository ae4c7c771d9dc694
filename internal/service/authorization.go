package service

import "bookingapi/internal/domain"

// AuthorizationGuard holds the pure permission rules of the lifecycle. Every
// check returns a typed error instead of a bool.
type AuthorizationGuard struct{}

func NewAuthorizationGuard() *AuthorizationGuard {
	return &AuthorizationGuard{}
}

// CanManageBlock allows the property's manager and owner.
func (g *AuthorizationGuard) CanManageBlock(user *domain.User, property *domain.Property) error {
	if user == nil || property == nil || !property.IsAdministeredBy(user.ID) {
		return domain.ErrCannotManageBlock
	}
	return nil
}

// CanMutateBooking allows the booking's guest and the manager and owner of
// property.
func (g *AuthorizationGuard) CanMutateBooking(userID int64, booking *domain.Booking, property *domain.Property) error {
	if booking == nil || property == nil {
		return domain.ErrCannotMutateBooking
	}
	if userID == booking.UserID || property.IsAdministeredBy(userID) {
		return nil
	}
	return domain.ErrCannotMutateBooking
}

func (g *AuthorizationGuard) RequireGuestRole(user *domain.User) error {
	if user == nil || user.UserType != domain.UserTypeGuest {
		return domain.ErrOnlyGuestsCanBook
	}
	return nil
}
