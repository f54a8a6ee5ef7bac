package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/dealdirect/backend/models"
)

type fixture struct {
	store    *Store
	flat     models.PropertyType
	resident models.Category
	bhk      models.SubCategory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := New()
	f := &fixture{store: s}

	f.flat = models.PropertyType{Name: "Flat"}
	require.NoError(t, s.CreatePropertyType(ctx, &f.flat))
	f.resident = models.Category{Name: "Residential", PropertyType: f.flat.ID}
	require.NoError(t, s.CreateCategory(ctx, &f.resident))
	f.bhk = models.SubCategory{Name: "2 BHK", Category: f.resident.ID, PropertyType: f.flat.ID}
	require.NoError(t, s.CreateSubCategory(ctx, &f.bhk))
	return f
}

func (f *fixture) listing(t *testing.T, title, city string, price float64, approved bool, at time.Time) models.Property {
	t.Helper()
	p := models.Property{
		PropertyType: f.flat.ID,
		Category:     f.resident.ID,
		SubCategory:  f.bhk.ID,
		ListingFields: models.ListingFields{
			Title:      title,
			Price:      price,
			Address:    models.Address{City: city},
			IsApproved: approved,
			Images:     []string{title + ".jpg"},
			CreatedAt:  at,
			UpdatedAt:  at,
		},
	}
	require.NoError(t, f.store.Insert(context.Background(), &p))
	return p
}

func TestTaxonomyUniqueness(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.store.CreatePropertyType(ctx, &models.PropertyType{Name: "Flat"})
	assert.ErrorIs(t, err, models.ErrDuplicate)

	err = f.store.CreateCategory(ctx, &models.Category{Name: "Residential", PropertyType: f.flat.ID})
	assert.ErrorIs(t, err, models.ErrDuplicate)

	other := primitive.NewObjectID()
	require.NoError(t, f.store.CreateCategory(ctx, &models.Category{Name: "Residential", PropertyType: other}))

	renamed := "2 BHK"
	sub := models.SubCategory{Name: "3 BHK", Category: f.resident.ID, PropertyType: f.flat.ID}
	require.NoError(t, f.store.CreateSubCategory(ctx, &sub))
	_, err = f.store.UpdateSubCategory(ctx, sub.ID, models.TaxonomyUpdate{Name: &renamed})
	assert.ErrorIs(t, err, models.ErrDuplicate)

	stored, err := f.store.GetSubCategory(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "3 BHK", stored.Name)
}

func TestTaxonomyDeleteAndDependents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.listing(t, "Sunrise", "Pune", 10, true, time.Now())

	n, err := f.store.CountDependents(ctx, models.KindCategory, f.resident.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = f.store.CountDependents(ctx, models.KindPropertyType, f.flat.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	require.NoError(t, f.store.DeleteCategory(ctx, f.resident.ID))
	assert.ErrorIs(t, f.store.DeleteCategory(ctx, f.resident.ID), models.ErrNotFound)

	subs, err := f.store.ListSubCategories(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Nil(t, subs[0].Category)
	require.NotNil(t, subs[0].PropertyType)
	assert.Equal(t, "Flat", subs[0].PropertyType.Name)
}

func TestFindSearchCriteria(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	f.listing(t, "Sea view", "Mumbai", 120, true, base)
	f.listing(t, "Garden villa", "Pune", 80, true, base.Add(time.Hour))
	f.listing(t, "Hidden", "Mumbai", 90, false, base.Add(2*time.Hour))

	tests := []struct {
		name   string
		c      models.ListingCriteria
		titles []string
	}{
		{"approved only newest first", models.ListingCriteria{ApprovedOnly: true}, []string{"Garden villa", "Sea view"}},
		{"all listings", models.ListingCriteria{}, []string{"Hidden", "Garden villa", "Sea view"}},
		{"city is whole value and case-insensitive", models.ListingCriteria{ApprovedOnly: true, City: "mumbai"}, []string{"Sea view"}},
		{"city prefix does not match", models.ListingCriteria{ApprovedOnly: true, City: "Mum"}, nil},
		{"price range inclusive", models.ListingCriteria{ApprovedOnly: true, PriceFrom: ptr(80.0), PriceTo: ptr(120.0), Sort: models.SortPriceAsc}, []string{"Garden villa", "Sea view"}},
		{"price ceiling", models.ListingCriteria{PriceTo: ptr(90.0), Sort: models.SortPriceDesc}, []string{"Hidden", "Garden villa"}},
		{"text over city", models.ListingCriteria{ApprovedOnly: true, Text: "PUNE"}, []string{"Garden villa"}},
		{"text ignores taxonomy names without cross entity", models.ListingCriteria{ApprovedOnly: true, Text: "bhk"}, nil},
		{"cross entity text matches taxonomy names", models.ListingCriteria{ApprovedOnly: true, Text: "bhk", CrossEntityText: true}, []string{"Garden villa", "Sea view"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.store.Find(ctx, tt.c)
			require.NoError(t, err)
			var titles []string
			for _, v := range page.Data {
				titles = append(titles, v.Title)
			}
			assert.Equal(t, tt.titles, titles)
			assert.Equal(t, int64(len(tt.titles)), page.Total)
		})
	}
}

func TestFindPagination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		f.listing(t, string(rune('a'+i)), "Pune", float64(i), true, base.Add(time.Duration(i)*time.Minute))
	}

	page, err := f.store.Find(ctx, models.ListingCriteria{ApprovedOnly: true, Sort: models.SortPriceAsc, Skip: 5, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(12), page.Total)
	require.Len(t, page.Data, 5)
	assert.Equal(t, 5.0, page.Data[0].Price)
	assert.Equal(t, 9.0, page.Data[4].Price)

	page, err = f.store.Find(ctx, models.ListingCriteria{ApprovedOnly: true, Skip: 20, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(12), page.Total)
}

func TestListingMutationsReturnCopies(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.listing(t, "Sea view", "Mumbai", 120, false, time.Now())

	got, err := f.store.SetApproval(ctx, p.ID, true, time.Now())
	require.NoError(t, err)
	got.Images[0] = "tampered.jpg"

	view, err := f.store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, view.IsApproved)
	assert.Equal(t, []string{"Sea view.jpg"}, view.Images)
	require.NotNil(t, view.SubCategory)
	assert.Equal(t, "2 BHK", view.SubCategory.Name)

	deleted, err := f.store.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, deleted.ID)

	_, err = f.store.Get(ctx, p.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.store.Delete(ctx, p.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpsertAdminByEmail(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.UpsertAdminByEmail(ctx, &models.Admin{Email: "agent@example.com", Name: "Agent", Password: "h1", Role: models.RoleAgent})
	require.NoError(t, err)

	second, err := s.UpsertAdminByEmail(ctx, &models.Admin{Email: "agent@example.com", Name: "Agent 2", Password: "h2", Role: models.RoleAgent})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "h2", second.Password)

	found, err := s.FindAdminByEmail(ctx, "agent@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Agent 2", found.Name)

	err = s.CreateAdmin(ctx, &models.Admin{Email: "agent@example.com"})
	assert.ErrorIs(t, err, models.ErrDuplicate)
}

func ptr[T any](v T) *T { return &v }
