package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReview(t *testing.T) {
	comment := "  Solid build  "
	longComment := strings.Repeat("a", maxCommentLength+1)
	blank := "   "

	tests := []struct {
		name        string
		req         SubmitReviewRequest
		wantErr     bool
		wantComment *string
	}{
		{name: "lowest rating", req: SubmitReviewRequest{Rating: 1}},
		{name: "highest rating with comment", req: SubmitReviewRequest{Rating: 5, Comment: &comment}, wantComment: ptr("Solid build")},
		{name: "blank comment dropped", req: SubmitReviewRequest{Rating: 3, Comment: &blank}},
		{name: "zero rating", req: SubmitReviewRequest{Rating: 0}, wantErr: true},
		{name: "rating above five", req: SubmitReviewRequest{Rating: 6}, wantErr: true},
		{name: "comment too long", req: SubmitReviewRequest{Rating: 4, Comment: &longComment}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			review, err := NewReview(&Customer{ID: 7, Username: "eve"}, 1, tt.req)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidReview)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusApproved, review.Status)
			assert.Equal(t, int64(7), review.CustomerID)
			assert.Equal(t, tt.wantComment, review.Comment)
		})
	}
}

func TestReviewValidate_StatusAllowList(t *testing.T) {
	for _, status := range []string{StatusApproved, StatusNormal, StatusFlagged} {
		review := Review{Rating: 3, Status: status}
		assert.NoError(t, review.Validate(), status)
	}

	review := Review{Rating: 3, Status: "deleted"}
	assert.ErrorIs(t, review.Validate(), ErrInvalidReview)
}

func TestReviewUpdate_Apply(t *testing.T) {
	// Arrange
	current := Review{ID: 1, CustomerID: 7, Rating: 2, Comment: ptr("meh"), Status: StatusFlagged}
	rating := 4

	// Act
	updated, err := ReviewUpdate{Rating: &rating}.Apply(current)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)
	assert.Equal(t, ptr("meh"), updated.Comment)
	assert.Equal(t, StatusFlagged, updated.Status)
	assert.Equal(t, 2, current.Rating)
}

func TestReviewUpdate_ApplyRejectsBadRating(t *testing.T) {
	rating := 9

	_, err := ReviewUpdate{Rating: &rating}.Apply(Review{Rating: 2, Status: StatusApproved})

	assert.ErrorIs(t, err, ErrInvalidReview)
}

func ptr(s string) *string {
	return &s
}
