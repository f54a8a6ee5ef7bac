package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dcode-github/dealdirect/backend/models"
)

func (s *Store) CreateAdmin(ctx context.Context, a *models.Admin) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	_, err := s.admins.InsertOne(ctx, a)
	return mapErr(err, "account")
}

func (s *Store) GetAdmin(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	var a models.Admin
	if err := s.findOne(ctx, s.admins, bson.M{"_id": id}, "account", &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) FindAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	if err := s.findOne(ctx, s.admins, bson.M{"email": email}, "account", &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) UpsertAdminByEmail(ctx context.Context, a *models.Admin) (*models.Admin, error) {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	updatedAt := a.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now()
	}

	update := bson.M{
		"$set": bson.M{
			"name":      a.Name,
			"password":  a.Password,
			"role":      a.Role,
			"updatedAt": updatedAt,
		},
		"$setOnInsert": bson.M{"createdAt": createdAt},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var out models.Admin
	res := s.admins.FindOneAndUpdate(ctx, bson.M{"email": a.Email}, update, opts)
	if err := mapErr(res.Decode(&out), "account"); err != nil {
		return nil, err
	}
	return &out, nil
}
