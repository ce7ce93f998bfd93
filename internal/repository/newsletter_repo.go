package repository

import (
	"context"
	"database/sql"
	"fmt"

	"daveenci/internal/db"
)

type NewsletterRepository struct {
	DB *sql.DB
}

func NewNewsletterRepository(db *sql.DB) *NewsletterRepository {
	return &NewsletterRepository{DB: db}
}

func (r *NewsletterRepository) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM newsletter_request WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking newsletter subscription: %w", err)
	}
	return exists, nil
}

func (r *NewsletterRepository) Create(ctx context.Context, sub *db.NewsletterSubscription) error {
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO newsletter_request (email) VALUES ($1) RETURNING id, created_at`, sub.Email,
	).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("error subscribing to newsletter: %w", err)
	}
	return nil
}

func (r *NewsletterRepository) List(ctx context.Context, limit int) ([]db.NewsletterSubscription, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, email, created_at FROM newsletter_request ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing newsletter subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []db.NewsletterSubscription{}
	for rows.Next() {
		var s db.NewsletterSubscription
		if err := rows.Scan(&s.ID, &s.Email, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning newsletter subscription: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
