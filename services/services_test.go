package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/dealdirect/backend/models"
	"github.com/dcode-github/dealdirect/backend/services"
	"github.com/dcode-github/dealdirect/backend/store"
	"github.com/dcode-github/dealdirect/backend/store/memstore"
)

var (
	_ services.TaxonomyStore = (*memstore.Store)(nil)
	_ services.ListingStore  = (*memstore.Store)(nil)
	_ services.AccountStore  = (*memstore.Store)(nil)
	_ services.UserStore     = (*memstore.Store)(nil)

	_ services.TaxonomyStore = (*store.Store)(nil)
	_ services.ListingStore  = (*store.Store)(nil)
	_ services.AccountStore  = (*store.Store)(nil)
	_ services.UserStore     = (*store.Store)(nil)
)

type recordingCleaner struct {
	mu    sync.Mutex
	files [][]string
	err   error
}

func (c *recordingCleaner) Enqueue(_ context.Context, files []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.files = append(c.files, files)
	return nil
}

type env struct {
	store    *memstore.Store
	taxonomy *services.TaxonomyService
	listings *services.ListingService
	query    *services.QueryEngine
	cleaner  *recordingCleaner

	propertyType *models.PropertyType
	category     *models.Category
	subCategory  *models.SubCategory
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	s := memstore.New()
	e := &env{
		store:    s,
		taxonomy: services.NewTaxonomyService(s),
		cleaner:  &recordingCleaner{},
		query:    services.NewQueryEngine(s),
	}
	e.listings = services.NewListingService(s, e.cleaner)

	var err error
	e.propertyType, err = e.taxonomy.CreatePropertyType(ctx, "Apartment")
	require.NoError(t, err)
	e.category, err = e.taxonomy.CreateCategory(ctx, "Residential", e.propertyType.ID)
	require.NoError(t, err)
	e.subCategory, err = e.taxonomy.CreateSubCategory(ctx, "Penthouse", e.category.ID, e.propertyType.ID)
	require.NoError(t, err)
	return e
}

func (e *env) input(title string) *models.ListingInput {
	pt, cat, sub := e.propertyType.ID, e.category.ID, e.subCategory.ID
	return &models.ListingInput{
		PropertyType: &pt,
		Category:     &cat,
		SubCategory:  &sub,
		Title:        &title,
	}
}

// addApproved creates a listing with the given city and price and approves it.
func (e *env) addApproved(t *testing.T, title, city string, price float64) *models.Property {
	t.Helper()
	ctx := context.Background()
	in := e.input(title)
	in.Price = &price
	in.Address = &models.Address{City: city}
	p, err := e.listings.Add(ctx, in, nil, "")
	require.NoError(t, err)
	p, err = e.listings.Approve(ctx, p.ID)
	require.NoError(t, err)
	return p
}

var errQueueDown = errors.New("queue down")

func missingID() primitive.ObjectID { return primitive.NewObjectID() }
