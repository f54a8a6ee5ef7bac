package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dcode-github/dealdirect/backend/models"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func (s *Store) findOne(ctx context.Context, coll *mongo.Collection, filter bson.M, what string, dst any) error {
	return mapErr(coll.FindOne(ctx, filter).Decode(dst), what)
}

func (s *Store) updateOne(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, set bson.M, what string, dst any) error {
	set["updatedAt"] = s.now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	res := coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts)
	return mapErr(res.Decode(dst), what)
}

func (s *Store) deleteOne(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, what string) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(err, what)
	}
	if res.DeletedCount == 0 {
		return models.NotFoundError("%s not found", what)
	}
	return nil
}

func updateSet(upd models.TaxonomyUpdate) bson.M {
	set := bson.M{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.PropertyType != nil {
		set["propertyType"] = *upd.PropertyType
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	return set
}

func aggregateAll[T any](ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, what string) ([]T, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapErr(err, what)
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, mapErr(err, what)
	}
	return out, nil
}

// PropertyType

func (s *Store) CreatePropertyType(ctx context.Context, pt *models.PropertyType) error {
	if pt.ID.IsZero() {
		pt.ID = primitive.NewObjectID()
	}
	_, err := s.propertyTypes.InsertOne(ctx, pt)
	return mapErr(err, "property type")
}

func (s *Store) GetPropertyType(ctx context.Context, id primitive.ObjectID) (*models.PropertyType, error) {
	var pt models.PropertyType
	if err := s.findOne(ctx, s.propertyTypes, bson.M{"_id": id}, "property type", &pt); err != nil {
		return nil, err
	}
	return &pt, nil
}

func (s *Store) ListPropertyTypes(ctx context.Context) ([]models.PropertyType, error) {
	cursor, err := s.propertyTypes.Find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, mapErr(err, "property types")
	}
	defer cursor.Close(ctx)

	out := []models.PropertyType{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, mapErr(err, "property types")
	}
	return out, nil
}

func (s *Store) FindPropertyTypeByName(ctx context.Context, name string) (*models.PropertyType, error) {
	var pt models.PropertyType
	if err := s.findOne(ctx, s.propertyTypes, bson.M{"name": name}, "property type", &pt); err != nil {
		return nil, err
	}
	return &pt, nil
}

func (s *Store) UpdatePropertyType(ctx context.Context, id primitive.ObjectID, upd models.TaxonomyUpdate) (*models.PropertyType, error) {
	upd.PropertyType, upd.Category = nil, nil
	var pt models.PropertyType
	if err := s.updateOne(ctx, s.propertyTypes, id, updateSet(upd), "property type", &pt); err != nil {
		return nil, err
	}
	return &pt, nil
}

func (s *Store) DeletePropertyType(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteOne(ctx, s.propertyTypes, id, "property type")
}

// Category

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := s.categories.InsertOne(ctx, c)
	return mapErr(err, "category")
}

func (s *Store) GetCategory(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var c models.Category
	if err := s.findOne(ctx, s.categories, bson.M{"_id": id}, "category", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]models.CategoryView, error) {
	pipeline := mongo.Pipeline{bson.D{{Key: "$sort", Value: newestFirst}}}
	pipeline = append(pipeline, populateStages(map[string]string{"propertyType": PropertyTypesCollection})...)
	return aggregateAll[models.CategoryView](ctx, s.categories, pipeline, "categories")
}

func (s *Store) FindCategory(ctx context.Context, name string, propertyType primitive.ObjectID) (*models.Category, error) {
	var c models.Category
	filter := bson.M{"name": name, "propertyType": propertyType}
	if err := s.findOne(ctx, s.categories, filter, "category", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, id primitive.ObjectID, upd models.TaxonomyUpdate) (*models.Category, error) {
	upd.Category = nil
	var c models.Category
	if err := s.updateOne(ctx, s.categories, id, updateSet(upd), "category", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteOne(ctx, s.categories, id, "category")
}

// SubCategory

func (s *Store) CreateSubCategory(ctx context.Context, sub *models.SubCategory) error {
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	_, err := s.subCategories.InsertOne(ctx, sub)
	return mapErr(err, "subcategory")
}

func (s *Store) GetSubCategory(ctx context.Context, id primitive.ObjectID) (*models.SubCategory, error) {
	var sub models.SubCategory
	if err := s.findOne(ctx, s.subCategories, bson.M{"_id": id}, "subcategory", &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *Store) ListSubCategories(ctx context.Context) ([]models.SubCategoryView, error) {
	pipeline := mongo.Pipeline{bson.D{{Key: "$sort", Value: newestFirst}}}
	pipeline = append(pipeline, populateStages(map[string]string{
		"category":     CategoriesCollection,
		"propertyType": PropertyTypesCollection,
	})...)
	return aggregateAll[models.SubCategoryView](ctx, s.subCategories, pipeline, "subcategories")
}

func (s *Store) ListSubCategoriesByCategory(ctx context.Context, category primitive.ObjectID) ([]models.SubCategory, error) {
	cursor, err := s.subCategories.Find(ctx, bson.M{"category": category}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, mapErr(err, "subcategories")
	}
	defer cursor.Close(ctx)

	out := []models.SubCategory{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, mapErr(err, "subcategories")
	}
	return out, nil
}

func (s *Store) FindSubCategory(ctx context.Context, name string, category primitive.ObjectID) (*models.SubCategory, error) {
	var sub models.SubCategory
	filter := bson.M{"name": name, "category": category}
	if err := s.findOne(ctx, s.subCategories, filter, "subcategory", &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *Store) UpdateSubCategory(ctx context.Context, id primitive.ObjectID, upd models.TaxonomyUpdate) (*models.SubCategory, error) {
	var sub models.SubCategory
	if err := s.updateOne(ctx, s.subCategories, id, updateSet(upd), "subcategory", &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *Store) DeleteSubCategory(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteOne(ctx, s.subCategories, id, "subcategory")
}

// CountDependents counts the records of lower levels still pointing at id.
func (s *Store) CountDependents(ctx context.Context, kind models.TaxonomyKind, id primitive.ObjectID) (int64, error) {
	var colls []*mongo.Collection
	switch kind {
	case models.KindPropertyType:
		colls = []*mongo.Collection{s.categories, s.subCategories, s.properties}
	case models.KindCategory:
		colls = []*mongo.Collection{s.subCategories, s.properties}
	case models.KindSubCategory:
		colls = []*mongo.Collection{s.properties}
	default:
		return 0, models.ValidationError("unknown taxonomy kind %q", kind)
	}

	filter := bson.M{string(kind): id}
	var total int64
	for _, coll := range colls {
		n, err := coll.CountDocuments(ctx, filter)
		if err != nil {
			return 0, mapErr(err, "dependents")
		}
		total += n
	}
	return total, nil
}
