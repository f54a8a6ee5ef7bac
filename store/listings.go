package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dcode-github/dealdirect/backend/models"
)

func (s *Store) Insert(ctx context.Context, p *models.Property) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := s.properties.InsertOne(ctx, p)
	return mapErr(err, "property")
}

func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (*models.PropertyView, error) {
	pipeline := append(
		[]bson.D{{{Key: "$match", Value: bson.M{"_id": id}}}},
		populateStages(listingRefs())...,
	)
	views, err := aggregateAll[models.PropertyView](ctx, s.properties, pipeline, "property")
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, models.NotFoundError("property not found")
	}
	return &views[0], nil
}

// changeSet turns the supplied fields of an edit into a $set document.
func changeSet(changes models.ListingChanges) bson.M {
	in := changes.Input
	set := bson.M{"updatedAt": changes.UpdatedAt}

	if in.PropertyType != nil {
		set["propertyType"] = *in.PropertyType
	}
	if in.Category != nil {
		set["category"] = *in.Category
	}
	if in.SubCategory != nil {
		set["subcategory"] = *in.SubCategory
	}
	if in.Title != nil {
		set["title"] = *in.Title
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Price != nil {
		set["price"] = *in.Price
	}
	if in.PriceUnit != nil {
		set["priceUnit"] = *in.PriceUnit
	}
	if in.Negotiable != nil {
		set["negotiable"] = *in.Negotiable
	}
	if in.Area != nil {
		set["area"] = *in.Area
	}
	if in.Amenities != nil {
		set["amenities"] = in.Amenities
	}
	if in.Flooring != nil {
		set["flooring"] = in.Flooring
	}
	if in.Parking != nil {
		set["parking"] = *in.Parking
	}
	if in.Address != nil {
		set["address"] = *in.Address
	}
	if changes.Images != nil {
		set["images"] = changes.Images
	}
	return set
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, changes models.ListingChanges) (*models.Property, error) {
	if changes.UpdatedAt.IsZero() {
		changes.UpdatedAt = s.now()
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	res := s.properties.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": changeSet(changes)}, opts)

	var p models.Property
	if err := mapErr(res.Decode(&p), "property"); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) SetApproval(ctx context.Context, id primitive.ObjectID, approved bool, at time.Time) (*models.Property, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"isApproved": approved, "updatedAt": at}}
	res := s.properties.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts)

	var p models.Property
	if err := mapErr(res.Decode(&p), "property"); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	var p models.Property
	if err := mapErr(s.properties.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&p), "property"); err != nil {
		return nil, err
	}
	return &p, nil
}

type facetResult struct {
	Data  []models.PropertyView `bson:"data"`
	Total []struct {
		N int64 `bson:"n"`
	} `bson:"total"`
}

func (s *Store) Find(ctx context.Context, c models.ListingCriteria) (*models.ListingPage, error) {
	pipeline := ListingPipeline(c)

	if c.Limit <= 0 {
		views, err := aggregateAll[models.PropertyView](ctx, s.properties, pipeline, "properties")
		if err != nil {
			return nil, err
		}
		return &models.ListingPage{Data: views, Total: int64(len(views))}, nil
	}

	facets, err := aggregateAll[facetResult](ctx, s.properties, pipeline, "properties")
	if err != nil {
		return nil, err
	}
	page := &models.ListingPage{Data: []models.PropertyView{}}
	if len(facets) == 0 {
		return page, nil
	}
	if facets[0].Data != nil {
		page.Data = facets[0].Data
	}
	if len(facets[0].Total) > 0 {
		page.Total = facets[0].Total[0].N
	}
	return page, nil
}
