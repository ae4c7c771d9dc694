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
)

const propertyColumns = `id, description, manager_id, owner_id, created_at`

type PropertyRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPropertyRepository(db *sql.DB, logger logger.Logger) domain.PropertyRepository {
	return &PropertyRepository{
		db:     db,
		logger: logger,
	}
}

func scanProperty(row interface{ Scan(...interface{}) error }) (*domain.Property, error) {
	var property domain.Property
	err := row.Scan(
		&property.ID,
		&property.Description,
		&property.ManagerID,
		&property.OwnerID,
		&property.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// FindByID returns nil, nil when no property has the id.
func (r *PropertyRepository) FindByID(ctx context.Context, id int64) (*domain.Property, error) {
	defer observe("find_by_id", "property", time.Now())

	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	property, err := scanProperty(database.Executor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.ErrorContext(ctx, "Property lookup failed", map[string]interface{}{"id": id, "error": err.Error()})
		return nil, fmt.Errorf("property could not be read: %w", err)
	}

	return property, nil
}

func (r *PropertyRepository) FindAll(ctx context.Context) ([]*domain.Property, error) {
	defer observe("find_all", "property", time.Now())

	query := `SELECT ` + propertyColumns + ` FROM properties ORDER BY id`

	rows, err := database.Executor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Properties could not be listed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("properties could not be listed: %w", err)
	}
	defer rows.Close()

	properties := make([]*domain.Property, 0)
	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("property row could not be read: %w", err)
		}
		properties = append(properties, property)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("properties could not be listed: %w", err)
	}

	return properties, nil
}

func (r *PropertyRepository) Create(ctx context.Context, property *domain.Property) error {
	defer observe("create", "property", time.Now())

	query := `
		INSERT INTO properties (description, manager_id, owner_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	property.CreatedAt = time.Now().UTC()

	err := database.Executor(ctx, r.db).QueryRowContext(
		ctx,
		query,
		property.Description,
		property.ManagerID,
		property.OwnerID,
		property.CreatedAt,
	).Scan(&property.ID)

	if err != nil {
		r.logger.ErrorContext(ctx, "Property could not be created", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("property could not be created: %w", err)
	}

	return nil
}
