package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bookingapi/internal/database"
	"bookingapi/internal/domain"
	"bookingapi/pkg/logger"
	"bookingapi/pkg/metrics"
)

const userColumns = `id, email, user_type, created_at`

type UserRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewUserRepository(db *sql.DB, logger logger.Logger) domain.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

func scanUser(row interface{ Scan(...interface{}) error }) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.UserType,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID returns nil, nil when no user has the id.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	defer observe("find_by_id", "user", time.Now())

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(database.Executor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.ErrorContext(ctx, "User lookup by id failed", map[string]interface{}{"id": id, "error": err.Error()})
		return nil, fmt.Errorf("user could not be read: %w", err)
	}

	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	defer observe("find_by_email", "user", time.Now())

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(database.Executor(ctx, r.db).QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.ErrorContext(ctx, "User lookup by email failed", map[string]interface{}{"email": email, "error": err.Error()})
		return nil, fmt.Errorf("user could not be read: %w", err)
	}

	return user, nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]*domain.User, error) {
	defer observe("find_all", "user", time.Now())

	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	rows, err := database.Executor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Users could not be listed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("users could not be listed: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("user row could not be read: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users could not be listed: %w", err)
	}

	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	defer observe("create", "user", time.Now())

	query := `
		INSERT INTO users (email, user_type, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	user.CreatedAt = time.Now().UTC()

	err := database.Executor(ctx, r.db).QueryRowContext(
		ctx,
		query,
		user.Email,
		user.UserType,
		user.CreatedAt,
	).Scan(&user.ID)

	if err != nil {
		r.logger.ErrorContext(ctx, "User could not be created", map[string]interface{}{"email": user.Email, "error": err.Error()})
		return fmt.Errorf("user could not be created: %w", err)
	}

	return nil
}

func observe(operation, entity string, start time.Time) {
	metrics.RecordDatabaseOperation(operation, entity, time.Since(start))
}
