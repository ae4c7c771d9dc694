package domain

import (
	"context"
	"time"
)

type Property struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	ManagerID   int64     `json:"manager_id"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsAdministeredBy reports whether userID is the manager or the owner.
func (p *Property) IsAdministeredBy(userID int64) bool {
	return userID == p.ManagerID || userID == p.OwnerID
}

type PropertySummary struct {
	ID             int64  `json:"id"`
	Description    string `json:"description"`
	ManagerEmail   string `json:"manager_email"`
	OwnerEmail     string `json:"owner_email"`
	ActiveBookings int64  `json:"active_bookings"`
}

type PropertyRepository interface {
	FindByID(ctx context.Context, id int64) (*Property, error)
	FindAll(ctx context.Context) ([]*Property, error)
	Create(ctx context.Context, property *Property) error
}

// PropertyDirectory fails with ErrPropertyNotFound when the id is unknown.
type PropertyDirectory interface {
	FindPropertyByID(ctx context.Context, id int64) (*Property, error)
}

type PropertyService interface {
	PropertyDirectory
	GetProperty(ctx context.Context, id int64) (*PropertySummary, error)
	CreateProperty(ctx context.Context, intent CreatePropertyIntent) (*PropertySummary, error)
	ListProperties(ctx context.Context) ([]*PropertySummary, error)
}
