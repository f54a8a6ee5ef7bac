package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/dealdirect/backend/logging"
	"github.com/dcode-github/dealdirect/backend/models"
)

// ListingService owns the listing lifecycle: creation (always unapproved),
// edits, approval toggling and deletion with deferred file cleanup.
type ListingService struct {
	store   ListingStore
	cleaner FileCleaner
	now     func() time.Time
}

func NewListingService(store ListingStore, cleaner FileCleaner) *ListingService {
	return &ListingService{store: store, cleaner: cleaner, now: time.Now}
}

// Add persists a new listing. images are stored file names of the uploads
// that came with the request.
func (s *ListingService) Add(ctx context.Context, in *models.ListingInput, images []string, createdBy string) (*models.Property, error) {
	if in == nil {
		return nil, models.ValidationError("listing payload is required")
	}
	switch {
	case in.PropertyType == nil:
		return nil, models.ValidationError("propertyType is required")
	case in.Category == nil:
		return nil, models.ValidationError("category is required")
	case in.SubCategory == nil:
		return nil, models.ValidationError("subcategory is required")
	case in.Title == nil || *in.Title == "":
		return nil, models.ValidationError("title is required")
	}

	now := s.now().UTC()
	p := &models.Property{
		ID:           primitive.NewObjectID(),
		PropertyType: *in.PropertyType,
		Category:     *in.Category,
		SubCategory:  *in.SubCategory,
		ListingFields: models.ListingFields{
			Title:      *in.Title,
			PriceUnit:  models.DefaultPriceUnit,
			Amenities:  []string{},
			Images:     []string{},
			IsApproved: false,
			CreatedBy:  createdBy,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}
	applyInput(&p.ListingFields, in)
	if len(images) > 0 {
		p.Images = images
	}

	if err := s.store.Insert(ctx, p); err != nil {
		return nil, err
	}
	logging.FromContext(ctx).WithField("property", p.ID.Hex()).WithField("images", len(p.Images)).
		Info("Listing created")
	return p, nil
}

// applyInput copies the supplied scalar and nested fields of in onto f.
func applyInput(f *models.ListingFields, in *models.ListingInput) {
	if in.Description != nil {
		f.Description = *in.Description
	}
	if in.Price != nil {
		f.Price = *in.Price
	}
	if in.PriceUnit != nil {
		f.PriceUnit = *in.PriceUnit
	}
	if in.Negotiable != nil {
		f.Negotiable = *in.Negotiable
	}
	if in.Area != nil {
		f.Area = *in.Area
	}
	if in.Amenities != nil {
		f.Amenities = in.Amenities
	}
	if in.Flooring != nil {
		f.Flooring = in.Flooring
	}
	if in.Parking != nil {
		f.Parking = *in.Parking
	}
	if in.Address != nil {
		f.Address = *in.Address
	}
}

// Update applies a partial edit. A non-empty images slice replaces the stored
// list entirely; the previous files stay on disk.
func (s *ListingService) Update(ctx context.Context, id primitive.ObjectID, in *models.ListingInput, images []string) (*models.Property, error) {
	if in == nil {
		in = &models.ListingInput{}
	}
	if in.Title != nil && *in.Title == "" {
		return nil, models.ValidationError("title cannot be empty")
	}

	changes := models.ListingChanges{Input: *in, UpdatedAt: s.now().UTC()}
	if len(images) > 0 {
		changes.Images = images
	}

	updated, err := s.store.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	if len(images) > 0 {
		logging.FromContext(ctx).WithField("property", id.Hex()).WithField("images", len(images)).
			Info("Listing images replaced")
	}
	return updated, nil
}

func (s *ListingService) Get(ctx context.Context, id primitive.ObjectID) (*models.PropertyView, error) {
	return s.store.Get(ctx, id)
}

func (s *ListingService) Approve(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	return s.setApproval(ctx, id, true)
}

func (s *ListingService) Disapprove(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	return s.setApproval(ctx, id, false)
}

func (s *ListingService) setApproval(ctx context.Context, id primitive.ObjectID, approved bool) (*models.Property, error) {
	p, err := s.store.SetApproval(ctx, id, approved, s.now().UTC())
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).WithField("property", id.Hex()).WithField("approved", approved).
		Info("Listing approval changed")
	return p, nil
}

// Delete removes the record and then hands its images to the cleaner. A
// failure to schedule cleanup is logged and does not fail the delete.
func (s *ListingService) Delete(ctx context.Context, id primitive.ObjectID) error {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}

	logger := logging.FromContext(ctx).WithField("property", id.Hex())
	if len(removed.Images) == 0 || s.cleaner == nil {
		logger.Info("Listing deleted")
		return nil
	}
	if err := s.cleaner.Enqueue(ctx, removed.Images); err != nil {
		logger.WithError(err).WithField("files", removed.Images).
			Error("Listing deleted but its images could not be scheduled for removal")
		return nil
	}
	logger.WithField("images", len(removed.Images)).Info("Listing deleted, image cleanup scheduled")
	return nil
}
