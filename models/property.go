package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultPriceUnit = "Lac"

type Area struct {
	TotalSqft    float64 `bson:"totalSqft" json:"totalSqft"`
	CarpetSqft   float64 `bson:"carpetSqft" json:"carpetSqft"`
	BuiltUpSqft  float64 `bson:"builtUpSqft" json:"builtUpSqft"`
	PricePerSqft float64 `bson:"pricePerSqft" json:"pricePerSqft"`
}

type Parking struct {
	Covered string `bson:"covered" json:"covered"`
	Open    string `bson:"open" json:"open"`
}

type Address struct {
	Line      string   `bson:"line" json:"line"`
	Area      string   `bson:"area" json:"area"`
	City      string   `bson:"city" json:"city"`
	State     string   `bson:"state" json:"state"`
	Pincode   string   `bson:"pincode" json:"pincode"`
	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
}

// ListingFields holds everything a listing stores besides its taxonomy
// references, so the raw record and the populated view share one shape.
type ListingFields struct {
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Price       float64   `bson:"price" json:"price"`
	PriceUnit   string    `bson:"priceUnit" json:"priceUnit"`
	Negotiable  bool      `bson:"negotiable" json:"negotiable"`
	Area        Area      `bson:"area" json:"area"`
	Amenities   []string  `bson:"amenities" json:"amenities"`
	Flooring    []string  `bson:"flooring,omitempty" json:"flooring,omitempty"`
	Parking     Parking   `bson:"parking" json:"parking"`
	Address     Address   `bson:"address" json:"address"`
	Images      []string  `bson:"images" json:"images"`
	IsApproved  bool      `bson:"isApproved" json:"isApproved"`
	CreatedBy   string    `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Property is a listing as persisted.
type Property struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	PropertyType  primitive.ObjectID `bson:"propertyType" json:"propertyType"`
	Category      primitive.ObjectID `bson:"category" json:"category"`
	SubCategory   primitive.ObjectID `bson:"subcategory" json:"subcategory"`
	ListingFields `bson:",inline"`
}

// PropertyView is a listing with its taxonomy references resolved.
type PropertyView struct {
	ID            primitive.ObjectID `bson:"_id" json:"_id"`
	PropertyType  *TaxonomyRef       `bson:"propertyType,omitempty" json:"propertyType"`
	Category      *TaxonomyRef       `bson:"category,omitempty" json:"category"`
	SubCategory   *TaxonomyRef       `bson:"subcategory,omitempty" json:"subcategory"`
	ListingFields `bson:",inline"`
}

// ListingInput is a validated create/edit payload. Nil means "not supplied".
type ListingInput struct {
	PropertyType *primitive.ObjectID
	Category     *primitive.ObjectID
	SubCategory  *primitive.ObjectID
	Title        *string
	Description  *string
	Price        *float64
	PriceUnit    *string
	Negotiable   *bool
	Area         *Area
	Amenities    []string
	Flooring     []string
	Parking      *Parking
	Address      *Address
}

// ListingChanges is what an edit writes: the supplied input plus, when new
// files were uploaded, the replacement image list.
type ListingChanges struct {
	Input     ListingInput
	Images    []string
	UpdatedAt time.Time
}
