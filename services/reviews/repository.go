package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	foreignKeyViolation = "23503"
	reviewItemFK        = "reviews_item_id_fkey"
)

// ReviewRepository is the persistence port of the reviews service.
type ReviewRepository interface {
	GetReview(ctx context.Context, reviewID int64) (*Review, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]Review, error)
	ListByItem(ctx context.Context, itemID int64) ([]Review, error)
	CreateReview(ctx context.Context, review *Review) (int64, error)
	UpdateReview(ctx context.Context, review *Review) error
	DeleteReview(ctx context.Context, reviewID int64) error
	SetStatus(ctx context.Context, reviewID int64, status string) error
}

type PostgresReviewRepository struct {
	db *pgxpool.Pool
}

func NewReviewRepository(db *pgxpool.Pool) *PostgresReviewRepository {
	return &PostgresReviewRepository{db: db}
}

const reviewSelect = `
	SELECT r.id, r.customer_id, c.username, r.item_id, r.rating, r.comment, r.status, r.created_at, r.updated_at
	FROM reviews r
	JOIN customers c ON c.id = r.customer_id`

func scanReview(row pgx.Row) (Review, error) {
	var r Review
	err := row.Scan(&r.ID, &r.CustomerID, &r.CustomerUsername, &r.ItemID, &r.Rating,
		&r.Comment, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (r *PostgresReviewRepository) GetReview(ctx context.Context, reviewID int64) (*Review, error) {
	review, err := scanReview(r.db.QueryRow(ctx, reviewSelect+` WHERE r.id = $1`, reviewID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

func (r *PostgresReviewRepository) ListByCustomer(ctx context.Context, customerID int64) ([]Review, error) {
	return r.list(ctx, reviewSelect+` WHERE r.customer_id = $1 ORDER BY r.created_at DESC, r.id DESC`, customerID)
}

func (r *PostgresReviewRepository) ListByItem(ctx context.Context, itemID int64) ([]Review, error) {
	return r.list(ctx, reviewSelect+` WHERE r.item_id = $1 ORDER BY r.created_at DESC, r.id DESC`, itemID)
}

func (r *PostgresReviewRepository) list(ctx context.Context, query string, arg int64) ([]Review, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}

	reviews, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Review, error) {
		return scanReview(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan reviews: %w", err)
	}
	return reviews, nil
}

func (r *PostgresReviewRepository) CreateReview(ctx context.Context, review *Review) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO reviews (customer_id, item_id, rating, comment, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, review.CustomerID, review.ItemID, review.Rating, review.Comment, review.Status,
		review.CreatedAt, review.UpdatedAt).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			if pgErr.ConstraintName == reviewItemFK {
				return 0, ErrItemNotFound
			}
			return 0, ErrCustomerNotFound
		}
		return 0, fmt.Errorf("failed to insert review: %w", err)
	}
	return id, nil
}

// UpdateReview writes the owner-editable fields only.
func (r *PostgresReviewRepository) UpdateReview(ctx context.Context, review *Review) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE reviews
		SET rating = $2, comment = $3, updated_at = $4
		WHERE id = $1
	`, review.ID, review.Rating, review.Comment, review.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *PostgresReviewRepository) DeleteReview(ctx context.Context, reviewID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, reviewID)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *PostgresReviewRepository) SetStatus(ctx context.Context, reviewID int64, status string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE reviews
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, reviewID, status)
	if err != nil {
		return fmt.Errorf("failed to update review status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}
