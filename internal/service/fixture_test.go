package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bookingapi/internal/database"
	"bookingapi/internal/domain"
	"bookingapi/internal/repository"
	"bookingapi/internal/testutil"
	"bookingapi/pkg/lock"
	"bookingapi/pkg/logger"
	"bookingapi/pkg/validator"
)

// fixture is the worked example household: a property managed by user 2
// and owned by user 3, with guests 1 and 4.
type fixture struct {
	db          *sql.DB
	bookingRepo domain.BookingRepository
	users       domain.UserService
	properties  domain.PropertyService
	svc         *BookingService

	guest    *domain.User
	manager  *domain.User
	owner    *domain.User
	stranger *domain.User
	property *domain.Property
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, dialect := testutil.NewSQLiteDB(t)
	log := logger.Nop()
	v := validator.New()

	userRepo := repository.NewUserRepository(db, log)
	propertyRepo := repository.NewPropertyRepository(db, log)
	bookingRepo := repository.NewBookingRepository(db, dialect, log)

	users := NewUserService(userRepo, v, log)
	properties := NewPropertyService(propertyRepo, bookingRepo, users, v, log)
	svc := NewBookingService(bookingRepo, users, properties, database.NewTxManager(db, log), lock.NewKeyed(), v, log)
	svc.now = func() time.Time { return time.Date(2099, time.November, 1, 12, 0, 0, 0, time.UTC) }

	f := &fixture{
		db:          db,
		bookingRepo: bookingRepo,
		users:       users,
		properties:  properties,
		svc:         svc,
	}

	ctx := context.Background()
	f.guest = f.createUser(t, "guest@example.com", domain.UserTypeGuest)
	f.manager = f.createUser(t, "manager@example.com", domain.UserTypeManager)
	f.owner = f.createUser(t, "owner@example.com", domain.UserTypeOwner)
	f.stranger = f.createUser(t, "stranger@example.com", domain.UserTypeGuest)

	summary, err := properties.CreateProperty(ctx, domain.CreatePropertyIntent{
		Description: "Seaside loft",
		ManagerID:   f.manager.ID,
		OwnerID:     f.owner.ID,
	})
	require.NoError(t, err)
	f.property, err = properties.FindPropertyByID(ctx, summary.ID)
	require.NoError(t, err)

	return f
}

func (f *fixture) createUser(t *testing.T, email string, userType domain.UserType) *domain.User {
	t.Helper()
	user, err := f.users.CreateUser(context.Background(), domain.CreateUserIntent{Email: email, UserType: userType})
	require.NoError(t, err)
	return user
}

func (f *fixture) addProperty(t *testing.T, description string) *domain.Property {
	t.Helper()
	ctx := context.Background()
	summary, err := f.properties.CreateProperty(ctx, domain.CreatePropertyIntent{
		Description: description,
		ManagerID:   f.manager.ID,
		OwnerID:     f.owner.ID,
	})
	require.NoError(t, err)
	property, err := f.properties.FindPropertyByID(ctx, summary.ID)
	require.NoError(t, err)
	return property
}

func (f *fixture) book(t *testing.T, start, end int) *domain.BookingSnapshot {
	t.Helper()
	snapshot, err := f.svc.CreateBooking(context.Background(), domain.CreateBookingIntent{
		PropertyID: f.property.ID,
		UserID:     f.guest.ID,
		StartDate:  dec(start),
		EndDate:    dec(end),
	})
	require.NoError(t, err)
	return snapshot
}

func (f *fixture) block(t *testing.T, start, end int) *domain.BookingSnapshot {
	t.Helper()
	snapshot, err := f.svc.CreateBlock(context.Background(), domain.CreateBlockIntent{
		PropertyID: f.property.ID,
		UserID:     f.manager.ID,
		StartDate:  dec(start),
		EndDate:    dec(end),
	})
	require.NoError(t, err)
	return snapshot
}

// stored reads the booking straight from the store; nil when absent.
func (f *fixture) stored(t *testing.T, id int64) *domain.Booking {
	t.Helper()
	booking, err := f.bookingRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return booking
}

func dec(d int) domain.Date {
	return domain.NewDate(2099, time.December, d)
}

func ptr[T any](v T) *T {
	return &v
}
