package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaxonomyKind names a level of the PropertyType -> Category -> SubCategory
// hierarchy. The value doubles as the field name dependents use to reference it.
type TaxonomyKind string

const (
	KindPropertyType TaxonomyKind = "propertyType"
	KindCategory     TaxonomyKind = "category"
	KindSubCategory  TaxonomyKind = "subcategory"
)

type PropertyType struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Category struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	PropertyType primitive.ObjectID `bson:"propertyType" json:"propertyType"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type SubCategory struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Category     primitive.ObjectID `bson:"category" json:"category"`
	PropertyType primitive.ObjectID `bson:"propertyType" json:"propertyType"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TaxonomyRef is a resolved parent reference. A nil *TaxonomyRef in a view
// means the referenced record no longer exists.
type TaxonomyRef struct {
	ID   primitive.ObjectID `bson:"_id" json:"_id"`
	Name string             `bson:"name" json:"name"`
}

type CategoryView struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	PropertyType *TaxonomyRef       `bson:"propertyType,omitempty" json:"propertyType"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type SubCategoryView struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Category     *TaxonomyRef       `bson:"category,omitempty" json:"category"`
	PropertyType *TaxonomyRef       `bson:"propertyType,omitempty" json:"propertyType"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TaxonomyUpdate is a partial update; nil fields are left untouched.
type TaxonomyUpdate struct {
	Name         *string
	PropertyType *primitive.ObjectID
	Category     *primitive.ObjectID
}

func (u TaxonomyUpdate) Empty() bool {
	return u.Name == nil && u.PropertyType == nil && u.Category == nil
}
