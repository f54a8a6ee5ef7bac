package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcode-github/dealdirect/backend/models"
	"github.com/dcode-github/dealdirect/backend/services"
)

func TestAddListing(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	price := 95.5
	in := e.input("Lake view")
	in.Price = &price
	in.Amenities = []string{"Gym", "Pool"}

	p, err := e.listings.Add(ctx, in, []string{"1-a.jpg", "1-b.jpg"}, "acc-1")
	require.NoError(t, err)
	assert.False(t, p.IsApproved)
	assert.Equal(t, models.DefaultPriceUnit, p.PriceUnit)
	assert.Equal(t, "acc-1", p.CreatedBy)
	assert.Equal(t, []string{"1-a.jpg", "1-b.jpg"}, p.Images)

	view, err := e.listings.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lake view", view.Title)
	assert.Equal(t, 95.5, view.Price)
	assert.Equal(t, []string{"Gym", "Pool"}, view.Amenities)
	require.NotNil(t, view.PropertyType)
	assert.Equal(t, "Apartment", view.PropertyType.Name)
}

func TestAddListingRequiredFields(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	tests := []struct {
		name  string
		strip func(in *models.ListingInput)
	}{
		{"propertyType", func(in *models.ListingInput) { in.PropertyType = nil }},
		{"category", func(in *models.ListingInput) { in.Category = nil }},
		{"subcategory", func(in *models.ListingInput) { in.SubCategory = nil }},
		{"title", func(in *models.ListingInput) { in.Title = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := e.input("Lake view")
			tt.strip(in)
			_, err := e.listings.Add(ctx, in, nil, "")
			require.ErrorIs(t, err, models.ErrValidation)
			assert.Contains(t, err.Error(), tt.name)
		})
	}

	_, err := e.listings.Add(ctx, nil, nil, "")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestApprovalIsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p, err := e.listings.Add(ctx, e.input("Lake view"), nil, "")
	require.NoError(t, err)

	got, err := e.listings.Approve(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsApproved)

	got, err = e.listings.Approve(ctx, p.ID)
	require.NoError(t, err, "re-approving is a no-op success")
	assert.True(t, got.IsApproved)

	got, err = e.listings.Disapprove(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsApproved)

	got, err = e.listings.Approve(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsApproved)

	_, err = e.listings.Approve(ctx, missingID())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateListing(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p, err := e.listings.Add(ctx, e.input("Lake view"), []string{"old.jpg"}, "")
	require.NoError(t, err)
	_, err = e.listings.Approve(ctx, p.ID)
	require.NoError(t, err)

	title := "Lake view, renovated"
	updated, err := e.listings.Update(ctx, p.ID, &models.ListingInput{Title: &title}, nil)
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, []string{"old.jpg"}, updated.Images, "no new files keeps the image list")
	assert.True(t, updated.IsApproved, "edits do not touch approval")

	updated, err = e.listings.Update(ctx, p.ID, nil, []string{"new-1.jpg", "new-2.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"new-1.jpg", "new-2.jpg"}, updated.Images)
	assert.Empty(t, e.cleaner.files, "replaced images are not removed")

	empty := ""
	_, err = e.listings.Update(ctx, p.ID, &models.ListingInput{Title: &empty}, nil)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = e.listings.Update(ctx, missingID(), &models.ListingInput{Title: &title}, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteListingSchedulesCleanup(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p, err := e.listings.Add(ctx, e.input("Lake view"), []string{"a.jpg", "b.jpg", "c.jpg"}, "")
	require.NoError(t, err)

	require.NoError(t, e.listings.Delete(ctx, p.ID))
	assert.Equal(t, [][]string{{"a.jpg", "b.jpg", "c.jpg"}}, e.cleaner.files)

	_, err = e.listings.Get(ctx, p.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, e.listings.Delete(ctx, p.ID), models.ErrNotFound)
	assert.Len(t, e.cleaner.files, 1)
}

func TestDeleteListingSurvivesCleanupFailure(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.cleaner.err = errQueueDown
	p, err := e.listings.Add(ctx, e.input("Lake view"), []string{"a.jpg"}, "")
	require.NoError(t, err)

	require.NoError(t, e.listings.Delete(ctx, p.ID))
	_, err = e.listings.Get(ctx, p.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteWithoutCleaner(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	listings := services.NewListingService(e.store, nil)
	p, err := listings.Add(ctx, e.input("Lake view"), []string{"a.jpg"}, "")
	require.NoError(t, err)
	assert.NoError(t, listings.Delete(ctx, p.ID))
}
