package repository

import (
	"context"
	"database/sql"
	"fmt"

	"daveenci/internal/db"
)

type EventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) Create(ctx context.Context, reg *db.EventRegistration) error {
	query := `
		INSERT INTO event_request (full_name, email, event_name, event_description, event_dt_utc)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := r.DB.QueryRowContext(ctx, query,
		reg.FullName, reg.Email, reg.EventName, reg.EventDescription, reg.EventTime.UTC(),
	).Scan(&reg.ID, &reg.CreatedAt)
	if err != nil {
		return fmt.Errorf("error registering for event: %w", err)
	}
	return nil
}

func (r *EventRepository) List(ctx context.Context, limit int) ([]db.EventRegistration, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, full_name, email, event_name, event_description, event_dt_utc, created_at
		FROM event_request
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing event registrations: %w", err)
	}
	defer rows.Close()

	regs := []db.EventRegistration{}
	for rows.Next() {
		var reg db.EventRegistration
		if err := rows.Scan(&reg.ID, &reg.FullName, &reg.Email, &reg.EventName, &reg.EventDescription,
			&reg.EventTime, &reg.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning event registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
