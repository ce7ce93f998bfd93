package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"daveenci/internal/db"
	"daveenci/internal/entities"
)

// ConsultationTx is an open insert of a single booking.
type ConsultationTx interface {
	Insert(ctx context.Context, c *db.Consultation) error
	SetCalendarEventID(ctx context.Context, id int, eventID string) error
	Commit() error
	Rollback() error
}

type ConsultationRepository struct {
	DB *sql.DB
}

func NewConsultationRepository(db *sql.DB) *ConsultationRepository {
	return &ConsultationRepository{DB: db}
}

func (r *ConsultationRepository) Exists(ctx context.Context, email string, start time.Time) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM consultation_request WHERE email = $1 AND start_time = $2)`,
		email, start.UTC(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking existing consultation: %w", err)
	}
	return exists, nil
}

// BookedSlots returns the meeting windows of bookings overlapping [start, end].
func (r *ConsultationRepository) BookedSlots(ctx context.Context, start, end time.Time) ([]entities.BusySlot, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT start_time, end_time
		FROM consultation_request
		WHERE start_time < $2 AND end_time > $1
		ORDER BY start_time`, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("error querying booked slots: %w", err)
	}
	defer rows.Close()

	slots := []entities.BusySlot{}
	for rows.Next() {
		var s entities.BusySlot
		if err := rows.Scan(&s.Start, &s.End); err != nil {
			return nil, fmt.Errorf("error scanning booked slot: %w", err)
		}
		s.Start, s.End = s.Start.UTC(), s.End.UTC()
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating booked slots: %w", err)
	}
	return slots, nil
}

func (r *ConsultationRepository) List(ctx context.Context, limit int) ([]db.Consultation, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, email, company, phone, reason, notes, booking_type,
			start_time, end_time, calendar_event_id, created_at
		FROM consultation_request
		ORDER BY start_time DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing consultations: %w", err)
	}
	defer rows.Close()

	consultations := []db.Consultation{}
	for rows.Next() {
		var c db.Consultation
		err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Company, &c.Phone, &c.Reason, &c.Notes, &c.BookingType,
			&c.StartTime, &c.EndTime, &c.CalendarEventID, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning consultation: %w", err)
		}
		consultations = append(consultations, c)
	}
	return consultations, rows.Err()
}

func (r *ConsultationRepository) Begin(ctx context.Context) (ConsultationTx, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting consultation transaction: %w", err)
	}
	return &consultationTx{tx: tx}, nil
}

type consultationTx struct {
	tx *sql.Tx
}

func (t *consultationTx) Insert(ctx context.Context, c *db.Consultation) error {
	query := `
		INSERT INTO consultation_request
		(name, email, company, phone, reason, notes, booking_type, start_time, end_time, calendar_event_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`
	err := t.tx.QueryRowContext(ctx, query,
		c.Name,
		c.Email,
		c.Company,
		c.Phone,
		c.Reason,
		c.Notes,
		c.BookingType,
		c.StartTime.UTC(),
		c.EndTime.UTC(),
		c.CalendarEventID,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting consultation: %w", err)
	}
	return nil
}

func (t *consultationTx) SetCalendarEventID(ctx context.Context, id int, eventID string) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE consultation_request SET calendar_event_id = $2 WHERE id = $1`, id, eventID)
	if err != nil {
		return fmt.Errorf("error linking calendar event to consultation %d: %w", id, err)
	}
	return nil
}

func (t *consultationTx) Commit() error {
	return t.tx.Commit()
}

func (t *consultationTx) Rollback() error {
	return t.tx.Rollback()
}
