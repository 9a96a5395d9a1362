package controller

import (
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	walks "github.com/goliatone/go-walks"
	"github.com/stretchr/testify/assert"
)

func TestStatusFromCategory(t *testing.T) {
	tests := []struct {
		category goerrors.Category
		want     int
	}{
		{goerrors.CategoryAuth, router.StatusUnauthorized},
		{goerrors.CategoryAuthz, router.StatusForbidden},
		{goerrors.CategoryNotFound, router.StatusNotFound},
		{goerrors.CategoryConflict, router.StatusConflict},
		{goerrors.CategoryValidation, router.StatusBadRequest},
		{goerrors.CategoryBadInput, router.StatusBadRequest},
		{goerrors.CategoryInternal, router.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFromCategory(tt.category))
		})
	}
}

func TestWalkDTOs(t *testing.T) {
	when := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	walk := &walks.Walk{
		ID:          7,
		Title:       "Morning loop",
		DateTime:    &when,
		Location:    "Riverside",
		Duration:    45,
		Description: "Easy pace, all dogs welcome",
		IsActive:    true,
		UserID:      42,
		User:        &walks.User{ID: 42, Username: "walker"},
	}

	t.Run("summary exposes the organizer name only", func(t *testing.T) {
		summary := NewWalkSummary(walk)
		assert.Equal(t, "walker", summary.Organizer)
		assert.Equal(t, "Morning loop", summary.Title)
	})

	t.Run("detail includes the description and owner id", func(t *testing.T) {
		detail := NewWalkDetail(walk)
		assert.Equal(t, "Easy pace, all dogs welcome", detail.Description)
		assert.Equal(t, int64(42), detail.UserID)
	})

	t.Run("summary tolerates a missing user relation", func(t *testing.T) {
		bare := *walk
		bare.User = nil
		summary := NewWalkSummary(&bare)
		assert.Empty(t, summary.Organizer)
	})
}

func TestUserResponse(t *testing.T) {
	user := &walks.User{
		ID:           9,
		Username:     "walker",
		Email:        "walker@example.com",
		PasswordHash: "$2a$14$secret",
		Role:         walks.RoleUser,
		IsActive:     true,
	}

	out := NewUserResponse(user)

	assert.Equal(t, int64(9), out.ID)
	assert.Equal(t, walks.RoleUser, out.Role)
	assert.Empty(t, out.PublicRef)
}

func TestPageOf(t *testing.T) {
	src := walks.Page[*walks.Walk]{
		Items:      []*walks.Walk{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}},
		Total:      12,
		Page:       1,
		Size:       2,
		TotalPages: 6,
	}

	out := pageOf(src, NewWalkSummary)

	assert.Len(t, out.Items, 2)
	assert.Equal(t, "a", out.Items[0].Title)
	assert.Equal(t, 12, out.Total)
	assert.Equal(t, 6, out.TotalPages)
}

func TestWalkMessage_Validate(t *testing.T) {
	t.Run("requires title and location", func(t *testing.T) {
		err := WalkMessage{}.Validate()
		assert.NotNil(t, err)
	})

	t.Run("accepts a complete payload", func(t *testing.T) {
		err := WalkMessage{Title: "Morning loop", Location: "Riverside", Duration: 30}.Validate()
		assert.Nil(t, err)
	})

	t.Run("rejects negative durations", func(t *testing.T) {
		err := WalkMessage{Title: "x", Location: "y", Duration: -5}.Validate()
		assert.NotNil(t, err)
	})
}
