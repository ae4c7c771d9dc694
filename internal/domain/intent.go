package domain

// Each lifecycle operation takes its own intent type with its own rules,
// instead of one shared payload with conditional groups.

type CreateBookingIntent struct {
	PropertyID int64  `json:"property_id" validate:"required,gt=0"`
	UserID     int64  `json:"user_id" validate:"required,gt=0"`
	StartDate  Date   `json:"start_date" validate:"required"`
	EndDate    Date   `json:"end_date" validate:"required"`
	Details    string `json:"details" validate:"max=1000"`
}

func (i CreateBookingIntent) Dates() DateRange { return DateRange{Start: i.StartDate, End: i.EndDate} }

// UpdateBookingIntent changes an ordinary reservation. UserID is the acting
// user; GuestID and PropertyID move the booking when set. Status is accepted
// only so that an attempt to turn the booking into a block can be refused.
type UpdateBookingIntent struct {
	BookingID  int64         `json:"-" validate:"required,gt=0"`
	UserID     int64         `json:"user_id" validate:"required,gt=0"`
	GuestID    int64         `json:"guest_id" validate:"omitempty,gt=0"`
	PropertyID int64         `json:"property_id" validate:"omitempty,gt=0"`
	StartDate  Date          `json:"start_date" validate:"required"`
	EndDate    Date          `json:"end_date" validate:"required"`
	Status     BookingStatus `json:"status" validate:"omitempty,bookingstatus"`
	Details    *string       `json:"details" validate:"omitempty,max=1000"`
}

func (i UpdateBookingIntent) Dates() DateRange { return DateRange{Start: i.StartDate, End: i.EndDate} }

type CancelIntent struct {
	BookingID int64 `json:"booking_id" validate:"required,gt=0"`
	UserID    int64 `json:"user_id" validate:"required,gt=0"`
}

type RebookIntent struct {
	BookingID int64  `json:"-" validate:"required,gt=0"`
	UserID    int64  `json:"user_id" validate:"required,gt=0"`
	StartDate Date   `json:"start_date" validate:"required"`
	EndDate   Date   `json:"end_date" validate:"required"`
	Details   string `json:"details" validate:"max=1000"`
}

func (i RebookIntent) Dates() DateRange { return DateRange{Start: i.StartDate, End: i.EndDate} }

type DeleteIntent struct {
	BookingID int64 `json:"booking_id" validate:"required,gt=0"`
	UserID    int64 `json:"user_id" validate:"required,gt=0"`
}

type CreateBlockIntent struct {
	PropertyID int64  `json:"property_id" validate:"required,gt=0"`
	UserID     int64  `json:"user_id" validate:"required,gt=0"`
	StartDate  Date   `json:"start_date" validate:"required"`
	EndDate    Date   `json:"end_date" validate:"required"`
	Details    string `json:"details" validate:"max=1000"`
}

func (i CreateBlockIntent) Dates() DateRange { return DateRange{Start: i.StartDate, End: i.EndDate} }

type UpdateBlockIntent struct {
	BookingID int64  `json:"-" validate:"required,gt=0"`
	UserID    int64  `json:"user_id" validate:"required,gt=0"`
	StartDate Date   `json:"start_date" validate:"required"`
	EndDate   Date   `json:"end_date" validate:"required"`
	Details   string `json:"details" validate:"max=1000"`
}

func (i UpdateBlockIntent) Dates() DateRange { return DateRange{Start: i.StartDate, End: i.EndDate} }

type DeleteBlockIntent struct {
	BookingID int64 `json:"booking_id" validate:"required,gt=0"`
	UserID    int64 `json:"user_id" validate:"required,gt=0"`
}

type CreateUserIntent struct {
	Email    string   `json:"email" validate:"required,email"`
	UserType UserType `json:"user_type" validate:"required,usertype"`
}

type CreatePropertyIntent struct {
	Description string `json:"description" validate:"required,max=500"`
	ManagerID   int64  `json:"manager_id" validate:"required,gt=0"`
	OwnerID     int64  `json:"owner_id" validate:"required,gt=0"`
}
