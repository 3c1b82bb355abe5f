package main

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/matheusmosca/ecommerce-services/internal/authn"
	"github.com/matheusmosca/ecommerce-services/internal/logging"
)

// moderators may delete any review besides flagging and approving.
var moderators = []string{authn.RoleAdmin, authn.RoleProductManager}

// ReviewUseCase holds the review and moderation rules.
type ReviewUseCase struct {
	repository  ReviewRepository
	customers   CustomerDirectory
	tracer      trace.Tracer
	moderations metric.Int64Counter
}

func NewReviewUseCase(repository ReviewRepository, customers CustomerDirectory, tracer trace.Tracer, meter metric.Meter) (*ReviewUseCase, error) {
	moderations, err := meter.Int64Counter("reviews.moderations",
		metric.WithDescription("Review status changes by target status"))
	if err != nil {
		return nil, fmt.Errorf("failed to create moderation counter: %w", err)
	}

	return &ReviewUseCase{
		repository:  repository,
		customers:   customers,
		tracer:      tracer,
		moderations: moderations,
	}, nil
}

func (uc *ReviewUseCase) GetReview(ctx context.Context, reviewID int64) (*Review, error) {
	return uc.repository.GetReview(ctx, reviewID)
}

func (uc *ReviewUseCase) ListItemReviews(ctx context.Context, itemID int64) ([]Review, error) {
	return uc.repository.ListByItem(ctx, itemID)
}

// ListOwnReviews lists the reviews written by the caller.
func (uc *ReviewUseCase) ListOwnReviews(ctx context.Context, identity authn.Identity, token string) ([]Review, error) {
	customer, err := uc.resolveCaller(ctx, identity, token)
	if err != nil {
		return nil, err
	}
	return uc.repository.ListByCustomer(ctx, customer.ID)
}

func (uc *ReviewUseCase) SubmitReview(ctx context.Context, identity authn.Identity, token string, itemID int64, req SubmitReviewRequest) (int64, error) {
	customer, err := uc.resolveCaller(ctx, identity, token)
	if err != nil {
		return 0, err
	}

	review, err := NewReview(customer, itemID, req)
	if err != nil {
		return 0, err
	}

	id, err := uc.repository.CreateReview(ctx, review)
	if err != nil {
		return 0, err
	}

	logging.FromContext(ctx).Info("✅ [REVIEW] submitted",
		zap.Int64("review_id", id),
		zap.Int64("item_id", itemID),
		zap.String("customer", customer.Username),
		zap.Int("rating", review.Rating))
	return id, nil
}

// UpdateReview is reserved to the author of the review.
func (uc *ReviewUseCase) UpdateReview(ctx context.Context, identity authn.Identity, reviewID int64, update ReviewUpdate) (*Review, error) {
	current, err := uc.repository.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !authn.IsSelfOr(identity, current.CustomerUsername) {
		return nil, ErrNotReviewOwner
	}

	updated, err := update.Apply(*current)
	if err != nil {
		return nil, err
	}

	if err := uc.repository.UpdateReview(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (uc *ReviewUseCase) DeleteReview(ctx context.Context, identity authn.Identity, reviewID int64) error {
	current, err := uc.repository.GetReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if !authn.IsSelfOr(identity, current.CustomerUsername, moderators...) {
		return ErrNotReviewOwner
	}

	if err := uc.repository.DeleteReview(ctx, reviewID); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("🗑️ [REVIEW] deleted",
		zap.Int64("review_id", reviewID),
		zap.String("actor", identity.Username))
	return nil
}

func (uc *ReviewUseCase) FlagReview(ctx context.Context, reviewID int64, actor string) error {
	return uc.moderate(ctx, reviewID, StatusFlagged, actor)
}

func (uc *ReviewUseCase) ApproveReview(ctx context.Context, reviewID int64, actor string) error {
	return uc.moderate(ctx, reviewID, StatusApproved, actor)
}

func (uc *ReviewUseCase) moderate(ctx context.Context, reviewID int64, status, actor string) error {
	ctx, span := uc.tracer.Start(ctx, "reviews.moderate", trace.WithAttributes(
		attribute.Int64("review_id", reviewID),
		attribute.String("status", status),
	))
	defer span.End()

	if err := uc.repository.SetStatus(ctx, reviewID, status); err != nil {
		span.RecordError(err)
		return err
	}

	uc.moderations.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	logging.FromContext(ctx).Info("🛡️ [REVIEW] moderated",
		zap.Int64("review_id", reviewID),
		zap.String("status", status),
		zap.String("actor", actor))
	return nil
}

func (uc *ReviewUseCase) resolveCaller(ctx context.Context, identity authn.Identity, token string) (*Customer, error) {
	ctx, span := uc.tracer.Start(ctx, "customers.get_customer")
	defer span.End()

	customer, err := uc.customers.GetCustomer(ctx, token, identity.Username)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return customer, nil
}
