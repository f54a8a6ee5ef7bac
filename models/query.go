package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortPriceAsc  SortOrder = "priceAsc"
	SortPriceDesc SortOrder = "priceDesc"
)

// ParseSortOrder falls back to SortNewest for anything it does not know.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortPriceAsc:
		return SortPriceAsc
	case SortPriceDesc:
		return SortPriceDesc
	}
	return SortNewest
}

// ListingCriteria is the single query description the listing stores execute.
type ListingCriteria struct {
	ApprovedOnly bool
	PropertyType *primitive.ObjectID
	Category     *primitive.ObjectID
	SubCategory  *primitive.ObjectID
	City         string
	PriceFrom    *float64
	PriceTo      *float64
	Text         string
	// CrossEntityText widens Text matching to the resolved taxonomy names and
	// narrows the listing fields to title and city.
	CrossEntityText bool
	Sort            SortOrder
	Skip            int64
	// Limit of zero returns every match.
	Limit int64
}

type ListingPage struct {
	Data  []PropertyView
	Total int64
}
