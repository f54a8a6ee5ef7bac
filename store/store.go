// Package store is the MongoDB implementation of the taxonomy, listing and
// account stores.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dcode-github/dealdirect/backend/models"
)

const (
	PropertyTypesCollection = "propertytypes"
	CategoriesCollection    = "categories"
	SubCategoriesCollection = "subcategories"
	PropertiesCollection    = "properties"
	AdminsCollection        = "admins"
	UsersCollection         = "users"
)

type Store struct {
	propertyTypes *mongo.Collection
	categories    *mongo.Collection
	subCategories *mongo.Collection
	properties    *mongo.Collection
	admins        *mongo.Collection
	users         *mongo.Collection
	now           func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{
		propertyTypes: db.Collection(PropertyTypesCollection),
		categories:    db.Collection(CategoriesCollection),
		subCategories: db.Collection(SubCategoriesCollection),
		properties:    db.Collection(PropertiesCollection),
		admins:        db.Collection(AdminsCollection),
		users:         db.Collection(UsersCollection),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes creates the unique keys the taxonomy and accounts rely on and
// the indexes behind the listing queries. It is safe to run on every start.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	specs := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{s.propertyTypes, []mongo.IndexModel{
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		}},
		{s.categories, []mongo.IndexModel{
			{Keys: bson.D{{Key: "name", Value: 1}, {Key: "propertyType", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "propertyType", Value: 1}}},
		}},
		{s.subCategories, []mongo.IndexModel{
			{Keys: bson.D{{Key: "name", Value: 1}, {Key: "category", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		}},
		{s.properties, []mongo.IndexModel{
			{Keys: bson.D{{Key: "isApproved", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "isApproved", Value: 1}, {Key: "price", Value: 1}}},
			{Keys: bson.D{{Key: "propertyType", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "subcategory", Value: 1}}},
			{Keys: bson.D{{Key: "address.city", Value: 1}}},
		}},
		{s.admins, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		}},
		{s.users, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		}},
	}

	for _, spec := range specs {
		if _, err := spec.coll.Indexes().CreateMany(ctx, spec.models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", spec.coll.Name(), err)
		}
	}
	return nil
}

// mapErr translates driver errors into the typed errors services expect.
func mapErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.NotFoundError("%s not found", what)
	case mongo.IsDuplicateKeyError(err):
		return models.DuplicateError("%s already exists", what)
	}
	return models.StorageError(err, "%s: storage failure", what)
}
