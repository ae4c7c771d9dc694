package domain

import (
	"context"
	"time"
)

type UserType string

const (
	UserTypeGuest   UserType = "GUEST"
	UserTypeManager UserType = "MANAGER"
	UserTypeOwner   UserType = "OWNER"
)

func (t UserType) Valid() bool {
	switch t {
	case UserTypeGuest, UserTypeManager, UserTypeOwner:
		return true
	}
	return false
}

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	UserType  UserType  `json:"user_type"`
	CreatedAt time.Time `json:"created_at"`
}

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context) ([]*User, error)
	Create(ctx context.Context, user *User) error
}

// UserDirectory is the lookup the booking core needs. FindUserByID fails with
// ErrUserNotFound when the id is unknown.
type UserDirectory interface {
	FindUserByID(ctx context.Context, id int64) (*User, error)
}

type UserService interface {
	UserDirectory
	CreateUser(ctx context.Context, intent CreateUserIntent) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
}
