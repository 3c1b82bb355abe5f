package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrReviewNotFound       = errors.New("review not found")
	ErrItemNotFound         = errors.New("item not found")
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrInvalidReview        = errors.New("invalid review")
	ErrNotReviewOwner       = errors.New("review belongs to another customer")
	ErrCustomersUnavailable = errors.New("customers service unavailable")
)

const (
	StatusApproved = "approved"
	StatusNormal   = "normal"
	StatusFlagged  = "flagged"
)

var validStatuses = []string{StatusApproved, StatusNormal, StatusFlagged}

const maxCommentLength = 400

// Review is a customer's rating of an inventory item. CustomerUsername is
// read from the customers table and is never written by this service.
type Review struct {
	ID               int64     `json:"id" db:"id"`
	CustomerID       int64     `json:"customer_id" db:"customer_id"`
	CustomerUsername string    `json:"customer_username" db:"customer_username"`
	ItemID           int64     `json:"item_id" db:"item_id"`
	Rating           int       `json:"rating" db:"rating"`
	Comment          *string   `json:"comment" db:"comment"`
	Status           string    `json:"status" db:"status"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// NewReview builds a validated review. New reviews are visible right away
// and can be flagged by a moderator afterwards.
func NewReview(customer *Customer, itemID int64, req SubmitReviewRequest) (*Review, error) {
	now := time.Now().UTC()
	review := &Review{
		CustomerID:       customer.ID,
		CustomerUsername: customer.Username,
		ItemID:           itemID,
		Rating:           req.Rating,
		Comment:          normalizeComment(req.Comment),
		Status:           StatusApproved,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := review.Validate(); err != nil {
		return nil, err
	}
	return review, nil
}

func (r *Review) Validate() error {
	switch {
	case r.Rating < 1 || r.Rating > 5:
		return fmt.Errorf("%w: rating must be an integer between 1 and 5", ErrInvalidReview)
	case r.Comment != nil && utf8.RuneCountInString(*r.Comment) > maxCommentLength:
		return fmt.Errorf("%w: comment must be at most %d characters", ErrInvalidReview, maxCommentLength)
	case !slices.Contains(validStatuses, r.Status):
		return fmt.Errorf("%w: status must be one of %s", ErrInvalidReview, strings.Join(validStatuses, ", "))
	}
	return nil
}

type SubmitReviewRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

// ReviewUpdate lists the only fields an owner may change. Status is left to
// moderators. Nil means unchanged.
type ReviewUpdate struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// Apply merges u into a copy of review and validates the result.
func (u ReviewUpdate) Apply(review Review) (*Review, error) {
	if u.Rating != nil {
		review.Rating = *u.Rating
	}
	if u.Comment != nil {
		review.Comment = normalizeComment(u.Comment)
	}

	if err := review.Validate(); err != nil {
		return nil, err
	}
	review.UpdatedAt = time.Now().UTC()
	return &review, nil
}

// normalizeComment trims the comment and maps a blank one to nil.
func normalizeComment(comment *string) *string {
	if comment == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*comment)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Customer is the part of a customers service account reviews rely on.
type Customer struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}
