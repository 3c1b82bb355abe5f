package main

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) GetReview(ctx context.Context, reviewID int64) (*Review, error) {
	args := m.Called(ctx, reviewID)
	review, _ := args.Get(0).(*Review)
	return review, args.Error(1)
}

func (m *MockReviewRepository) ListByCustomer(ctx context.Context, customerID int64) ([]Review, error) {
	args := m.Called(ctx, customerID)
	reviews, _ := args.Get(0).([]Review)
	return reviews, args.Error(1)
}

func (m *MockReviewRepository) ListByItem(ctx context.Context, itemID int64) ([]Review, error) {
	args := m.Called(ctx, itemID)
	reviews, _ := args.Get(0).([]Review)
	return reviews, args.Error(1)
}

func (m *MockReviewRepository) CreateReview(ctx context.Context, review *Review) (int64, error) {
	args := m.Called(ctx, review)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewRepository) UpdateReview(ctx context.Context, review *Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) DeleteReview(ctx context.Context, reviewID int64) error {
	args := m.Called(ctx, reviewID)
	return args.Error(0)
}

func (m *MockReviewRepository) SetStatus(ctx context.Context, reviewID int64, status string) error {
	args := m.Called(ctx, reviewID, status)
	return args.Error(0)
}

type MockCustomerDirectory struct {
	mock.Mock
}

func (m *MockCustomerDirectory) GetCustomer(ctx context.Context, token, username string) (*Customer, error) {
	args := m.Called(ctx, token, username)
	customer, _ := args.Get(0).(*Customer)
	return customer, args.Error(1)
}
